package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/internal/session"
)

var errBoom = errors.New("boom")

// fakeAPI implements every API interface the controllers use.
// Nil hooks return empty results.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	filters  []blogfront.PostFilter
	tokens   []string
	updateID string
	inputs   []blogfront.PostInput

	listPosts  func(ctx context.Context, filter blogfront.PostFilter) ([]*blogfront.Post, error)
	drafts     func(ctx context.Context, token string) ([]*blogfront.Post, error)
	post       func(ctx context.Context, id string) (*blogfront.Post, error)
	createPost func(ctx context.Context, in blogfront.PostInput) (*blogfront.Post, error)
	updatePost func(ctx context.Context, id string, in blogfront.PostInput) (*blogfront.Post, error)
	deletePost func(ctx context.Context, id string) error
	categories func(ctx context.Context) ([]*blogfront.Category, error)
	tags       func(ctx context.Context) ([]*blogfront.Tag, error)
	login      func(ctx context.Context, email, password string) (*blogfront.AuthResponse, error)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) lastFilter() blogfront.PostFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.filters) == 0 {
		return blogfront.PostFilter{}
	}
	return f.filters[len(f.filters)-1]
}

func (f *fakeAPI) ListPosts(ctx context.Context, filter blogfront.PostFilter) ([]*blogfront.Post, error) {
	f.record("ListPosts")
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	if f.listPosts == nil {
		return nil, nil
	}
	return f.listPosts(ctx, filter)
}

func (f *fakeAPI) Drafts(ctx context.Context, token string) ([]*blogfront.Post, error) {
	f.record("Drafts")
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	if f.drafts == nil {
		return nil, nil
	}
	return f.drafts(ctx, token)
}

func (f *fakeAPI) Post(ctx context.Context, id string) (*blogfront.Post, error) {
	f.record("Post")
	if f.post == nil {
		return &blogfront.Post{ID: id, Title: "Post " + id}, nil
	}
	return f.post(ctx, id)
}

func (f *fakeAPI) CreatePost(ctx context.Context, token string, in blogfront.PostInput) (*blogfront.Post, error) {
	f.record("CreatePost")
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()
	if f.createPost == nil {
		return &blogfront.Post{ID: "new", Title: in.Title}, nil
	}
	return f.createPost(ctx, in)
}

func (f *fakeAPI) UpdatePost(ctx context.Context, token string, id string, in blogfront.PostInput) (*blogfront.Post, error) {
	f.record("UpdatePost")
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.updateID = id
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()
	if f.updatePost == nil {
		return &blogfront.Post{ID: id, Title: in.Title}, nil
	}
	return f.updatePost(ctx, id, in)
}

func (f *fakeAPI) DeletePost(ctx context.Context, token string, id string) error {
	f.record("DeletePost")
	if f.deletePost == nil {
		return nil
	}
	return f.deletePost(ctx, id)
}

func (f *fakeAPI) Categories(ctx context.Context) ([]*blogfront.Category, error) {
	f.record("Categories")
	if f.categories == nil {
		return []*blogfront.Category{{ID: "c1", Name: "Go"}}, nil
	}
	return f.categories(ctx)
}

func (f *fakeAPI) Tags(ctx context.Context) ([]*blogfront.Tag, error) {
	f.record("Tags")
	if f.tags == nil {
		return []*blogfront.Tag{{ID: "t1", Name: "web"}}, nil
	}
	return f.tags(ctx)
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*blogfront.AuthResponse, error) {
	f.record("Login")
	if f.login == nil {
		return &blogfront.AuthResponse{Token: "jwt", ExpiresIn: 3600}, nil
	}
	return f.login(ctx, email, password)
}

type navRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (n *navRecorder) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *navRecorder) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

type fakeSessions struct {
	mu      sync.Mutex
	started []string
	err     error
}

func (s *fakeSessions) Start(ctx context.Context, email string, auth *blogfront.AuthResponse) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.started = append(s.started, email)
	now := time.Now()
	return &session.Session{ID: "s1", Email: email, Token: auth.Token, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}, nil
}

func makePosts(n int) []*blogfront.Post {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]*blogfront.Post, 0, n)
	for i := range n {
		posts = append(posts, &blogfront.Post{
			ID:        string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Title:     string(rune('z' - i%26)),
			Content:   "<p>Content</p>",
			Category:  &blogfront.Category{ID: "c1", Name: "Go"},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Status:    blogfront.PostStatusPublished,
		})
	}
	return posts
}
