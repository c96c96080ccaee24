package web

import (
	"html/template"
	"io/fs"
	"net/url"
	"strconv"
	"time"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/internal/controller"
	"github.com/KiloProjects/blogfront/internal/sanitize"
	"github.com/KiloProjects/blogfront/internal/session"
	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
)

type ListingParams struct {
	Listing *controller.Listing
	Drafts  bool
}

func (p *ListingParams) basePath() string {
	if p.Drafts {
		return "/drafts"
	}
	return "/"
}

func (p *ListingParams) link(deps controller.ListingDeps) string {
	q := url.Values{}
	if deps.Page > 1 {
		q.Set("page", strconv.Itoa(deps.Page))
	}
	if deps.Sort != "" && deps.Sort != controller.DefaultSort {
		q.Set("sort", deps.Sort)
	}
	if deps.CategoryID != "" {
		q.Set("category", deps.CategoryID)
	}
	if deps.TagID != "" {
		q.Set("tag", deps.TagID)
	}
	if len(q) == 0 {
		return p.basePath()
	}
	return p.basePath() + "?" + q.Encode()
}

// CategoryURL links to the listing filtered by id. AllCategories clears the filter.
func (p *ListingParams) CategoryURL(id string) string {
	deps := p.Listing.Deps()
	if id == controller.AllCategories {
		id = ""
	}
	deps.CategoryID, deps.Page = id, 1
	return p.link(deps)
}

// TagURL toggles the tag filter, like clicking a tag chip does
func (p *ListingParams) TagURL(id string) string {
	deps := p.Listing.Deps()
	if deps.TagID == id {
		deps.TagID = ""
	} else {
		deps.TagID = id
	}
	deps.Page = 1
	return p.link(deps)
}

func (p *ListingParams) PageURL(page int) string {
	deps := p.Listing.Deps()
	deps.Page = page
	return p.link(deps)
}

func (p *ListingParams) SortURL(sort string) string {
	deps := p.Listing.Deps()
	deps.Sort, deps.Page = sort, 1
	return p.link(deps)
}

func (p *ListingParams) Pages() []int {
	pages := make([]int, p.Listing.NumPages())
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// SkeletonCards is the number of placeholders shown while loading
func (p *ListingParams) SkeletonCards() []int {
	return []int{1, 2, 3}
}

type TaxonomyParams struct {
	Taxonomy *controller.Taxonomy
	// FormErr is the outcome of a failed create or delete
	FormErr string
	Name    string
}

type DetailParams struct {
	Detail *controller.Detail

	// Prompt is set when deletion still waits for confirmation
	Prompt string
	// Copied is the link the share fallback put on the "clipboard"
	Copied string
}

// ShareText is the excerpt handed to the browser's native share
func (p *DetailParams) ShareText() string {
	post := p.Detail.Post()
	if post == nil {
		return ""
	}
	return sanitize.ShareText(post.Content, controller.ShareTextLength)
}

type ShareParams struct {
	Post *blogfront.Post
	Data controller.ShareData
}

// MailtoURL and TwitterURL are the share targets offered on the share page
func (p *ShareParams) MailtoURL() string {
	return "mailto:?subject=" + url.PathEscape(p.Data.Title) + "&body=" + url.PathEscape(p.Data.Text+"\n\n"+p.Data.URL)
}

func (p *ShareParams) TwitterURL() string {
	q := url.Values{}
	q.Set("text", p.Data.Title)
	q.Set("url", p.Data.URL)
	return "https://twitter.com/intent/tweet?" + q.Encode()
}

type EditParams struct {
	Editor *controller.Editor

	Action string
}

func (p *EditParams) Statuses() []blogfront.PostStatus {
	return []blogfront.PostStatus{blogfront.PostStatusDraft, blogfront.PostStatusPublished}
}

func (p *EditParams) TagSelected(id string) bool {
	for _, tid := range p.Editor.Form().TagIDs {
		if tid == id {
			return true
		}
	}
	return false
}

type LoginParams struct {
	Login *controller.Login
}

type StatusParams struct {
	Code    int
	Message string
}

// LayoutParams are handed to layout.html, which embeds Content as a component
type LayoutParams struct {
	Title   string
	Path    string
	Session *session.Session
	Content templ.Component
}

var baseFuncs = template.FuncMap{
	"hashed": func(name string) string {
		return "/static/" + fsys.HashName(name)
	},
	"humanizeTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return humanize.Time(t)
	},
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	},
	"postURL": func(p *blogfront.Post) string {
		if p == nil {
			return "/"
		}
		if slug := p.Slug(); slug != "" {
			return "/posts/" + p.ID + "/" + slug
		}
		return "/posts/" + p.ID
	},
	"sortLabel": func(sort string) string {
		switch sort {
		case controller.SortOldest:
			return "Oldest"
		case controller.SortTitle:
			return "Title"
		default:
			return "Newest"
		}
	},
	"sortOptions": func() []string {
		return controller.SortOptions
	},
	"int64": func(n int) int64 {
		return int64(n)
	},
	"deletePrompt": func() string {
		return controller.DeletePrompt
	},
	"plural": func(n int64, word string) string {
		if n == 1 {
			return "1 " + word
		}
		return humanize.Comma(n) + " " + word + "s"
	},

	// Request-specific, replaced in runTemplate
	"authed": func() bool {
		return false
	},
	"reqPath": func() string {
		return "/"
	},
	"renderComponent": func(templ.Component) (template.HTML, error) {
		return "", nil
	},
}

func parse(files ...string) *template.Template {
	templs, err := fs.Sub(templateDir, "templ")
	if err != nil {
		panic(err)
	}
	t := template.New(files[0]).Funcs(baseFuncs)
	return template.Must(t.ParseFS(templs, files...))
}

var (
	layoutTempl = parse("layout.html", "util/navbar.html")

	indexTempl      = parse("index.html", "util/cards.html", "util/filters.html")
	categoriesTempl = parse("categories.html")
	tagsTempl       = parse("tags.html")
	postTempl       = parse("post.html")
	shareTempl      = parse("share.html")
	editTempl       = parse("edit.html")
	loginTempl      = parse("login.html")
	statusTempl     = parse("status.html")
)
