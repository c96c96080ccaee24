package controller

import (
	"context"
	"html/template"
	"log/slog"
	"sync"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/internal/sanitize"
)

// ShareTextLength is how much of the content goes into a share
const ShareTextLength = 100

type DetailDeps struct {
	ID string
}

type Detail struct {
	api    DetailAPI
	nav    Navigator
	token  string
	effect *Effect[DetailDeps]

	mu       sync.RWMutex
	loading  bool
	deleting bool
	err      string
	post     *blogfront.Post
}

// NewDetail creates the controller for the post with the given id.
// token may be empty, in which case deletion is refused.
func NewDetail(api DetailAPI, nav Navigator, token string, id string) *Detail {
	return &Detail{
		api:    api,
		nav:    nav,
		token:  token,
		effect: NewEffect(DetailDeps{ID: id}),
	}
}

func (c *Detail) Mount(ctx context.Context) error {
	c.effect.Mount()
	return c.fetch(ctx)
}

func (c *Detail) Unmount() {
	c.effect.Unmount()
}

func (c *Detail) SetID(ctx context.Context, id string) error {
	if c.effect.Update(func(d *DetailDeps) { d.ID = id }) && c.effect.Mounted() {
		return c.fetch(ctx)
	}
	return nil
}

func (c *Detail) fetch(ctx context.Context) error {
	t, deps := c.effect.Begin()
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	var (
		post *blogfront.Post
		err  error
	)
	if deps.ID == "" {
		err = blogfront.Statusf(400, "Post ID is required")
	} else {
		post, err = c.api.Post(ctx, deps.ID)
	}

	c.effect.Apply(t, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.loading = false
		c.post = post
		if err != nil {
			slog.WarnContext(ctx, "Couldn't load post", slog.String("id", deps.ID), slog.Any("err", err))
			c.err = MsgPostFailed
			return
		}
		c.err = ""
	})
	return blogfront.WrapError(err, MsgPostFailed)
}

// Delete removes the post after the user confirms it.
// A declined confirmation is not an error and makes no call.
func (c *Detail) Delete(ctx context.Context, confirm Confirmer) error {
	post := c.Post()
	if post == nil {
		return nil
	}
	if c.token == "" {
		return blogfront.ErrUnauthorized
	}
	if !confirm.Confirm(DeletePrompt) {
		return nil
	}

	c.mu.Lock()
	if c.deleting {
		c.mu.Unlock()
		return ErrSubmitPending
	}
	c.deleting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.deleting = false
		c.mu.Unlock()
	}()

	if err := c.api.DeletePost(ctx, c.token, post.ID); err != nil {
		slog.WarnContext(ctx, "Couldn't delete post", slog.Any("post", post), slog.Any("err", err))
		c.mu.Lock()
		c.err = MsgDeleteFailed
		c.mu.Unlock()
		return blogfront.WrapError(err, MsgDeleteFailed)
	}
	slog.InfoContext(ctx, "Deleted post", slog.Any("post", post))
	c.nav.Navigate("/")
	return nil
}

// Share tries the native share target and silently copies url to the clipboard
// if that isn't possible. It reports whether the native share went through.
func (c *Detail) Share(ctx context.Context, sharer Sharer, clip Clipboard, url string) bool {
	post := c.Post()
	if post == nil {
		return false
	}
	data := ShareData{
		Title: post.Title,
		Text:  sanitize.ShareText(post.Content, ShareTextLength),
		URL:   url,
	}
	err := ErrShareUnsupported
	if sharer != nil {
		err = sharer.Share(ctx, data)
	}
	if err == nil {
		return true
	}
	slog.DebugContext(ctx, "Native share unavailable, copying link", slog.Any("err", err))
	if err := clip.WriteText(ctx, url); err != nil {
		slog.DebugContext(ctx, "Couldn't copy link", slog.Any("err", err))
	}
	return false
}

func (c *Detail) Deps() DetailDeps {
	return c.effect.Deps()
}

func (c *Detail) Post() *blogfront.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.post
}

func (c *Detail) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Detail) Deleting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deleting
}

func (c *Detail) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// RenderedContent is the post body with only basic formatting kept
func (c *Detail) RenderedContent() template.HTML {
	post := c.Post()
	if post == nil {
		return ""
	}
	return sanitize.Render(post.Content)
}
