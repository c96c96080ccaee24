package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KiloProjects/blogfront"
	"golang.org/x/sync/errgroup"
)

// Taxonomy backs the category and tag overview pages.
// Unlike Listing it never asks for posts.
type Taxonomy struct {
	api TaxonomyLister

	mu         sync.RWMutex
	loading    bool
	err        string
	categories []*blogfront.Category
	tags       []*blogfront.Tag
}

func NewTaxonomy(api TaxonomyLister) *Taxonomy {
	return &Taxonomy{api: api, loading: true}
}

// Mount fetches categories and tags together. Either failing fails both.
func (c *Taxonomy) Mount(ctx context.Context) error {
	var (
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
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		slog.WarnContext(ctx, "Couldn't load taxonomy", slog.Any("err", err))
		c.err = MsgListingFailed
		c.categories, c.tags = nil, nil
		return blogfront.WrapError(err, MsgListingFailed)
	}
	c.categories, c.tags = cats, tags
	c.err = ""
	return nil
}

func (c *Taxonomy) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Taxonomy) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Taxonomy) Categories() []*blogfront.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categories
}

func (c *Taxonomy) Tags() []*blogfront.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tags
}
