package blogfront

import (
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gosimple/slug"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
)

func ValidPostStatus(s PostStatus) bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post is a blog article as served by the remote API.
// A post always has exactly one category and its tags never repeat.
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`

	Category *Category `json:"category"`
	Tags     []*Tag    `json:"tags"`
	Author   *Author   `json:"author"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ReadingTime int        `json:"reading_time"`
	Status      PostStatus `json:"status"`
}

// Slug is only cosmetic, posts are always looked up by ID
func (p *Post) Slug() string {
	if p == nil {
		return ""
	}
	return slug.Make(p.Title)
}

func (p *Post) HasTag(id string) bool {
	if p == nil {
		return false
	}
	for _, tag := range p.Tags {
		if tag.ID == id {
			return true
		}
	}
	return false
}

func (p *Post) TagIDs() []string {
	if p == nil {
		return nil
	}
	ids := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

func (p *Post) LogValue() slog.Value {
	if p == nil {
		return slog.Value{}
	}
	return slog.GroupValue(slog.String("id", p.ID), slog.String("title", p.Title))
}

// PostFilter narrows a post listing. Empty fields mean "no filter".
type PostFilter struct {
	CategoryID string `json:"categoryId"`
	TagID      string `json:"tagId"`
}

// PostInput is the shape sent on both creation and update
type PostInput struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	CategoryID string     `json:"category_id"`
	TagIDs     []string   `json:"tag_ids"`
	Status     PostStatus `json:"status"`
}

// Validate checks the input before it is sent anywhere.
// Errors are validation.Errors keyed by the json field names.
func (in PostInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(0, 200)),
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.CategoryID, validation.Required),
		validation.Field(&in.Status, validation.Required, validation.In(PostStatusDraft, PostStatusPublished)),
	)
}

// InputFromPost prefills an edit form with an existing post
func InputFromPost(p *Post) PostInput {
	if p == nil {
		return PostInput{Status: PostStatusDraft}
	}
	in := PostInput{
		Title:   p.Title,
		Content: p.Content,
		TagIDs:  p.TagIDs(),
		Status:  p.Status,
	}
	if p.Category != nil {
		in.CategoryID = p.Category.ID
	}
	return in
}
