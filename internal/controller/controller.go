// Package controller holds the per-page state machines of the blog frontend.
//
// A controller is created for a page, gets its dependencies (route
// parameters, filters, selections) set, and is mounted. Mounting and every
// later dependency change fetch whatever the page needs from the API in one
// joined batch. Views only ever read controller state.
package controller

import (
	"context"
	"errors"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/internal/session"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// User-facing messages
const (
	MsgListingFailed = "Failed to load content. Please try again later."
	MsgPostFailed    = "Failed to load the post. Please try again later."
	MsgDeleteFailed  = "Failed to delete the post. Please try again later."
	MsgEditorFailed  = "Failed to load necessary data. Please try again later."
	MsgSaveFailed    = "Failed to save the post. Please try again."
	MsgLoginFailed   = "Failed to login. Please try again."

	DeletePrompt = "Are you sure you want to delete this post?"
)

var ErrSubmitPending = blogfront.Statusf(409, "A submission is already in progress")

type PostLister interface {
	ListPosts(ctx context.Context, filter blogfront.PostFilter) ([]*blogfront.Post, error)
	Drafts(ctx context.Context, token string) ([]*blogfront.Post, error)
}

type TaxonomyLister interface {
	Categories(ctx context.Context) ([]*blogfront.Category, error)
	Tags(ctx context.Context) ([]*blogfront.Tag, error)
}

type ListingAPI interface {
	PostLister
	TaxonomyLister
}

type DetailAPI interface {
	Post(ctx context.Context, id string) (*blogfront.Post, error)
	DeletePost(ctx context.Context, token string, id string) error
}

type EditorAPI interface {
	TaxonomyLister
	Post(ctx context.Context, id string) (*blogfront.Post, error)
	CreatePost(ctx context.Context, token string, in blogfront.PostInput) (*blogfront.Post, error)
	UpdatePost(ctx context.Context, token string, id string, in blogfront.PostInput) (*blogfront.Post, error)
}

type LoginAPI interface {
	Login(ctx context.Context, email, password string) (*blogfront.AuthResponse, error)
}

// SessionStarter is satisfied by *session.Manager
type SessionStarter interface {
	Start(ctx context.Context, email string, auth *blogfront.AuthResponse) (*session.Session, error)
}

// Navigator moves the user to another page
type Navigator interface {
	Navigate(path string)
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

type ShareData struct {
	Title string
	Text  string
	URL   string
}

var ErrShareUnsupported = errors.New("sharing is not supported")

// Sharer hands a post to a native share target
type Sharer interface {
	Share(ctx context.Context, data ShareData) error
}

type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// fieldErrors flattens validation errors for display next to form fields
func fieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		out[field] = ferr.Error()
	}
	return out
}
