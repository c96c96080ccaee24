package blogapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KiloProjects/blogfront"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Wire shapes of the remote API. They are validated on arrival and only then
// converted to the root package's records.

// apiTime accepts both zoned timestamps and the zone-less local date-times
// the API's serializer emits. Zone-less values are taken as UTC.
type apiTime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range apiTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unknown timestamp format %q", s)
}

type authorDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

func (a authorDTO) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
	)
}

type categoryDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"postCount"`
}

func (c categoryDTO) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required, is.UUID),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.PostCount, validation.Min(0)),
	)
}

func (c categoryDTO) toCategory() *blogfront.Category {
	return &blogfront.Category{ID: c.ID, Name: c.Name, PostCount: c.PostCount}
}

type tagDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"postCount"`
}

func (t tagDTO) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required, is.UUID),
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.PostCount, validation.Min(0)),
	)
}

func (t tagDTO) toTag() *blogfront.Tag {
	return &blogfront.Tag{ID: t.ID, Name: t.Name, PostCount: t.PostCount}
}

type postDTO struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Author      *authorDTO   `json:"author"`
	Category    *categoryDTO `json:"category"`
	Tags        []tagDTO     `json:"tags"`
	ReadingTime int          `json:"readingTime"`
	CreatedAt   apiTime      `json:"createdAt"`
	UpdatedAt   apiTime      `json:"updatedAt"`
	Status      string       `json:"status"`
}

func (p postDTO) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required, is.UUID),
		validation.Field(&p.Title, validation.Required),
		// A post belongs to exactly one category
		validation.Field(&p.Category, validation.Required),
		validation.Field(&p.Author),
		validation.Field(&p.Tags),
		validation.Field(&p.ReadingTime, validation.Min(0)),
		validation.Field(&p.Status, validation.Required, validation.In(string(blogfront.PostStatusDraft), string(blogfront.PostStatusPublished))),
	)
}

func (p postDTO) toPost() *blogfront.Post {
	post := &blogfront.Post{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Category:    p.Category.toCategory(),
		ReadingTime: p.ReadingTime,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
		Status:      blogfront.PostStatus(p.Status),
	}
	if p.Author != nil {
		post.Author = &blogfront.Author{ID: p.Author.ID, Name: p.Author.Name, Avatar: p.Author.Avatar}
	}
	tags := make([]*blogfront.Tag, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, t.toTag())
	}
	post.Tags = blogfront.UniqueTags(tags)
	return post
}

type postList []postDTO

func (l postList) Validate() error { return validateEach(l) }

type categoryList []categoryDTO

func (l categoryList) Validate() error { return validateEach(l) }

type tagList []tagDTO

func (l tagList) Validate() error { return validateEach(l) }

func validateEach[T validation.Validatable](items []T) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// postRequest is the body of both create and update calls
type postRequest struct {
	ID         string   `json:"id,omitempty"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID string   `json:"categoryId"`
	TagIDs     []string `json:"tagIds"`
	Status     string   `json:"status"`
}

func newPostRequest(id string, in blogfront.PostInput) (*postRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req := &postRequest{
		ID:         id,
		Title:      in.Title,
		Content:    in.Content,
		CategoryID: in.CategoryID,
		TagIDs:     blogfront.UniqueIDs(in.TagIDs),
		Status:     string(in.Status),
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.CategoryID, is.UUID),
		validation.Field(&req.TagIDs, validation.Each(is.UUID)),
	); err != nil {
		return nil, err
	}
	return req, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

func (a *authResponse) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Token, validation.Required),
		validation.Field(&a.ExpiresIn, validation.Min(0)),
	)
}

type categoryRequest struct {
	Name string `json:"name"`
}
