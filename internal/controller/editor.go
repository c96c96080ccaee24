package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/KiloProjects/blogfront"
	"golang.org/x/sync/errgroup"
)

type EditorMode int

const (
	ModeCreate EditorMode = iota
	ModeEdit
)

type EditorDeps struct {
	ID string
}

type Editor struct {
	api    EditorAPI
	nav    Navigator
	token  string
	effect *Effect[EditorDeps]

	mu         sync.RWMutex
	loading    bool
	saving     bool
	loaded     bool
	err        string
	fieldErrs  map[string]string
	post       *blogfront.Post
	categories []*blogfront.Category
	tags       []*blogfront.Tag
	form       blogfront.PostInput
}

// NewEditor creates the editor for post id, or for a new post if id is empty
func NewEditor(api EditorAPI, nav Navigator, token string, id string) *Editor {
	return &Editor{
		api:    api,
		nav:    nav,
		token:  token,
		effect: NewEffect(EditorDeps{ID: id}),
		form:   blogfront.InputFromPost(nil),
	}
}

func (c *Editor) Mount(ctx context.Context) error {
	c.effect.Mount()
	return c.fetch(ctx)
}

func (c *Editor) Unmount() {
	c.effect.Unmount()
}

func (c *Editor) SetID(ctx context.Context, id string) error {
	if c.effect.Update(func(d *EditorDeps) { d.ID = id }) && c.effect.Mounted() {
		c.mu.Lock()
		c.loaded = false
		c.mu.Unlock()
		return c.fetch(ctx)
	}
	return nil
}

func (c *Editor) fetch(ctx context.Context) error {
	t, deps := c.effect.Begin()
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	var (
		post *blogfront.Post
		cats []*blogfront.Category
		tags []*blogfront.Tag
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cats, err = c.api.Categories(gctx)
		return
	})
	g.Go(func() (err error) {
		tags, err = c.api.Tags(gctx)
		return
	})
	if deps.ID != "" {
		g.Go(func() (err error) {
			post, err = c.api.Post(gctx, deps.ID)
			return
		})
	}
	err := g.Wait()

	c.effect.Apply(t, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.loading = false
		if err != nil {
			slog.WarnContext(ctx, "Couldn't load editor data", slog.String("id", deps.ID), slog.Any("err", err))
			c.err = MsgEditorFailed
			return
		}
		c.categories, c.tags, c.post = cats, tags, post
		// Values typed in before a reload are kept
		if !c.loaded {
			c.form = blogfront.InputFromPost(post)
			c.loaded = true
		}
		c.err = ""
	})
	return blogfront.WrapError(err, MsgEditorFailed)
}

// Submit validates in and saves it. Invalid input never reaches the API.
// On success the user is sent back to the listing.
func (c *Editor) Submit(ctx context.Context, in blogfront.PostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.TagIDs = blogfront.UniqueIDs(in.TagIDs)

	c.mu.Lock()
	c.form = in
	c.loaded = true
	if c.saving {
		c.mu.Unlock()
		return ErrSubmitPending
	}
	if c.token == "" {
		c.mu.Unlock()
		return blogfront.ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		c.fieldErrs = fieldErrors(err)
		c.mu.Unlock()
		return err
	}
	c.fieldErrs = nil
	c.saving = true
	c.mu.Unlock()

	id := c.effect.Deps().ID
	var (
		post *blogfront.Post
		err  error
	)
	if id != "" {
		post, err = c.api.UpdatePost(ctx, c.token, id, in)
	} else {
		post, err = c.api.CreatePost(ctx, c.token, in)
	}

	c.mu.Lock()
	c.saving = false
	if err != nil {
		c.err = MsgSaveFailed
		if fe := fieldErrors(err); fe != nil {
			c.fieldErrs = fe
		}
		c.mu.Unlock()
		slog.WarnContext(ctx, "Couldn't save post", slog.String("id", id), slog.Any("err", err))
		return blogfront.WrapError(err, MsgSaveFailed)
	}
	c.err = ""
	c.mu.Unlock()

	slog.InfoContext(ctx, "Saved post", slog.Any("post", post))
	c.nav.Navigate("/")
	return nil
}

// Cancel leaves the editor without saving
func (c *Editor) Cancel() {
	c.nav.Navigate(c.CancelPath())
}

// CancelPath is the post page when editing and the listing when creating
func (c *Editor) CancelPath() string {
	if id := c.effect.Deps().ID; id != "" {
		return "/posts/" + id
	}
	return "/"
}

func (c *Editor) Mode() EditorMode {
	if c.effect.Deps().ID != "" {
		return ModeEdit
	}
	return ModeCreate
}

func (c *Editor) Deps() EditorDeps {
	return c.effect.Deps()
}

func (c *Editor) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Editor) Saving() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.saving
}

func (c *Editor) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// FieldErrors maps form field names to their validation message
func (c *Editor) FieldErrors() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fieldErrs
}

func (c *Editor) Form() blogfront.PostInput {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.form
}

func (c *Editor) Post() *blogfront.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.post
}

func (c *Editor) Categories() []*blogfront.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categories
}

func (c *Editor) Tags() []*blogfront.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tags
}
