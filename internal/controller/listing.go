package controller

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/internal/sanitize"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllCategories is the synthetic category that clears the filter
const AllCategories = "all"

const (
	SortNewest = "createdAt,desc"
	SortOldest = "createdAt,asc"
	SortTitle  = "title,asc"

	DefaultSort = SortNewest
)

var SortOptions = []string{SortNewest, SortOldest, SortTitle}

type ListingMode int

const (
	ModePublished ListingMode = iota
	ModeDrafts
)

type ListingDeps struct {
	Mode       ListingMode
	Page       int
	Sort       string
	CategoryID string
	TagID      string
}

// Card is a post prepared for a listing
type Card struct {
	Post    *blogfront.Post
	Excerpt string
	Date    time.Time
}

type ListingOptions struct {
	Mode ListingMode
	// Token is required in drafts mode
	Token   string
	PerPage int
}

type Listing struct {
	api     ListingAPI
	token   string
	perPage int
	effect  *Effect[ListingDeps]

	mu         sync.RWMutex
	loading    bool
	err        string
	posts      []*blogfront.Post
	categories []*blogfront.Category
	tags       []*blogfront.Tag
}

func NewListing(api ListingAPI, opts ListingOptions) *Listing {
	if opts.PerPage <= 0 {
		opts.PerPage = 9
	}
	return &Listing{
		api:     api,
		token:   opts.Token,
		perPage: opts.PerPage,
		effect:  NewEffect(ListingDeps{Mode: opts.Mode, Page: 1, Sort: DefaultSort}),
	}
}

// Mount fetches the listing for the current dependencies
func (c *Listing) Mount(ctx context.Context) error {
	c.effect.Mount()
	return c.fetch(ctx)
}

func (c *Listing) Unmount() {
	c.effect.Unmount()
}

// SelectCategory filters by category. AllCategories or "" clear the filter.
func (c *Listing) SelectCategory(ctx context.Context, id string) error {
	if id == AllCategories {
		id = ""
	}
	return c.change(ctx, func(d *ListingDeps) {
		if d.CategoryID != id {
			d.CategoryID = id
			d.Page = 1
		}
	})
}

// SelectTag filters by tag. Selecting the active tag again turns the filter off.
func (c *Listing) SelectTag(ctx context.Context, id string) error {
	return c.change(ctx, func(d *ListingDeps) {
		if d.TagID == id {
			d.TagID = ""
		} else {
			d.TagID = id
		}
		d.Page = 1
	})
}

func (c *Listing) SetPage(ctx context.Context, page int) error {
	return c.change(ctx, func(d *ListingDeps) {
		d.Page = max(page, 1)
	})
}

// SetSort switches the order. Unknown orders fall back to DefaultSort.
func (c *Listing) SetSort(ctx context.Context, sort string) error {
	if !slices.Contains(SortOptions, sort) {
		sort = DefaultSort
	}
	return c.change(ctx, func(d *ListingDeps) {
		d.Sort = sort
	})
}

func (c *Listing) change(ctx context.Context, fn func(*ListingDeps)) error {
	if c.effect.Update(fn) && c.effect.Mounted() {
		return c.fetch(ctx)
	}
	return nil
}

func (c *Listing) fetch(ctx context.Context) error {
	t, deps := c.effect.Begin()
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	var (
		posts []*blogfront.Post
		cats  []*blogfront.Category
		tags  []*blogfront.Tag
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		filter := blogfront.PostFilter{CategoryID: deps.CategoryID, TagID: deps.TagID}
		if deps.Mode == ModeDrafts {
			posts, err = c.api.Drafts(gctx, c.token)
			posts = filterPosts(posts, filter)
			return
		}
		posts, err = c.api.ListPosts(gctx, filter)
		return
	})
	g.Go(func() (err error) {
		cats, err = c.api.Categories(gctx)
		return
	})
	g.Go(func() (err error) {
		tags, err = c.api.Tags(gctx)
		return
	})
	err := g.Wait()

	c.effect.Apply(t, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.loading = false
		if err != nil {
			slog.WarnContext(ctx, "Couldn't load listing", slog.Any("err", err))
			c.err = MsgListingFailed
			return
		}
		c.posts, c.categories, c.tags = posts, cats, tags
		c.err = ""
	})
	return blogfront.WrapError(err, MsgListingFailed)
}

// filterPosts narrows the drafts list, which the API can't filter
func filterPosts(posts []*blogfront.Post, filter blogfront.PostFilter) []*blogfront.Post {
	if filter.CategoryID == "" && filter.TagID == "" {
		return posts
	}
	return slices.DeleteFunc(slices.Clone(posts), func(p *blogfront.Post) bool {
		if filter.CategoryID != "" && (p.Category == nil || p.Category.ID != filter.CategoryID) {
			return true
		}
		return filter.TagID != "" && !p.HasTag(filter.TagID)
	})
}

func (c *Listing) Deps() ListingDeps {
	return c.effect.Deps()
}

func (c *Listing) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err is the message to show instead of the cards, if any
func (c *Listing) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Listing) Categories() []*blogfront.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categories
}

func (c *Listing) Tags() []*blogfront.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tags
}

// Total is the number of fetched posts across all pages
func (c *Listing) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.posts)
}

func (c *Listing) NumPages() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return max((len(c.posts)+c.perPage-1)/c.perPage, 1)
}

// Cards returns the current page of posts. Nothing is returned while an error is shown.
func (c *Listing) Cards() []Card {
	deps := c.effect.Deps()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != "" {
		return nil
	}

	posts := sortPosts(c.posts, deps.Sort)
	start := (deps.Page - 1) * c.perPage
	if start >= len(posts) {
		return []Card{}
	}
	end := min(start+c.perPage, len(posts))

	cards := make([]Card, 0, end-start)
	for _, p := range posts[start:end] {
		cards = append(cards, Card{Post: p, Excerpt: sanitize.Excerpt(p.Content), Date: p.CreatedAt})
	}
	return cards
}

func sortPosts(posts []*blogfront.Post, order string) []*blogfront.Post {
	sorted := slices.Clone(posts)
	switch order {
	case SortOldest:
		slices.SortStableFunc(sorted, func(a, b *blogfront.Post) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case SortTitle:
		// Collators keep state, so each sort gets its own
		col := collate.New(language.Und, collate.IgnoreCase, collate.Loose)
		slices.SortStableFunc(sorted, func(a, b *blogfront.Post) int {
			return col.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(sorted, func(a, b *blogfront.Post) int { return b.CreatedAt.Compare(a.CreatedAt) })
	}
	return sorted
}
