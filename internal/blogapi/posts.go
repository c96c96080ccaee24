package blogapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/KiloProjects/blogfront"
)

// ListPosts returns the published posts matching filter
func (c *Client) ListPosts(ctx context.Context, filter blogfront.PostFilter) ([]*blogfront.Post, error) {
	q := url.Values{}
	if filter.CategoryID != "" {
		q.Set("categoryId", filter.CategoryID)
	}
	if filter.TagID != "" {
		q.Set("tagId", filter.TagID)
	}
	var posts postList
	if err := c.do(ctx, call{method: http.MethodGet, path: "/posts", query: q, endpoint: "/posts"}, &posts); err != nil {
		return nil, err
	}
	return convertPosts(posts), nil
}

// Drafts returns the drafts of the user owning token
func (c *Client) Drafts(ctx context.Context, token string) ([]*blogfront.Post, error) {
	if token == "" {
		return nil, blogfront.ErrUnauthorized
	}
	var posts postList
	if err := c.do(ctx, call{method: http.MethodGet, path: "/posts/drafts", token: token, endpoint: "/posts/drafts"}, &posts); err != nil {
		return nil, err
	}
	return convertPosts(posts), nil
}

func (c *Client) Post(ctx context.Context, id string) (*blogfront.Post, error) {
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}
	var post postDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/posts/" + pid, endpoint: "/posts/{id}"}, &post); err != nil {
		return nil, err
	}
	return post.toPost(), nil
}

func (c *Client) CreatePost(ctx context.Context, token string, in blogfront.PostInput) (*blogfront.Post, error) {
	if token == "" {
		return nil, blogfront.ErrUnauthorized
	}
	body, err := newPostRequest("", in)
	if err != nil {
		return nil, err
	}
	var post postDTO
	if err := c.do(ctx, call{method: http.MethodPost, path: "/posts", token: token, body: body, endpoint: "/posts"}, &post); err != nil {
		return nil, err
	}
	return post.toPost(), nil
}

// UpdatePost replaces the post with the given id. The id is sent both in the path and the body.
func (c *Client) UpdatePost(ctx context.Context, token string, id string, in blogfront.PostInput) (*blogfront.Post, error) {
	if token == "" {
		return nil, blogfront.ErrUnauthorized
	}
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}
	body, err := newPostRequest(id, in)
	if err != nil {
		return nil, err
	}
	var post postDTO
	if err := c.do(ctx, call{method: http.MethodPut, path: "/posts/" + pid, token: token, body: body, endpoint: "/posts/{id}"}, &post); err != nil {
		return nil, err
	}
	return post.toPost(), nil
}

func (c *Client) DeletePost(ctx context.Context, token string, id string) error {
	if token == "" {
		return blogfront.ErrUnauthorized
	}
	pid, err := pathID(id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{method: http.MethodDelete, path: "/posts/" + pid, token: token, endpoint: "/posts/{id}"}, nil)
}

func convertPosts(list postList) []*blogfront.Post {
	posts := make([]*blogfront.Post, 0, len(list))
	for _, p := range list {
		posts = append(posts, p.toPost())
	}
	return posts
}
