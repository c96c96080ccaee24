package blogapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/KiloProjects/blogfront"
)

func (c *Client) Categories(ctx context.Context) ([]*blogfront.Category, error) {
	var list categoryList
	if err := c.do(ctx, call{method: http.MethodGet, path: "/categories", endpoint: "/categories"}, &list); err != nil {
		return nil, err
	}
	cats := make([]*blogfront.Category, 0, len(list))
	for _, cat := range list {
		cats = append(cats, cat.toCategory())
	}
	return cats, nil
}

func (c *Client) CreateCategory(ctx context.Context, token string, name string) (*blogfront.Category, error) {
	if token == "" {
		return nil, blogfront.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, blogfront.Statusf(400, "Category name cannot be empty")
	}
	var cat categoryDTO
	if err := c.do(ctx, call{method: http.MethodPost, path: "/categories", token: token, body: categoryRequest{Name: name}, endpoint: "/categories"}, &cat); err != nil {
		return nil, err
	}
	return cat.toCategory(), nil
}

// DeleteCategory fails with a 4xx status error if the category still has posts
func (c *Client) DeleteCategory(ctx context.Context, token string, id string) error {
	if token == "" {
		return blogfront.ErrUnauthorized
	}
	cid, err := pathID(id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{method: http.MethodDelete, path: "/categories/" + cid, token: token, endpoint: "/categories/{id}"}, nil)
}

func (c *Client) Tags(ctx context.Context) ([]*blogfront.Tag, error) {
	var list tagList
	if err := c.do(ctx, call{method: http.MethodGet, path: "/tags", endpoint: "/tags"}, &list); err != nil {
		return nil, err
	}
	tags := make([]*blogfront.Tag, 0, len(list))
	for _, tag := range list {
		tags = append(tags, tag.toTag())
	}
	return tags, nil
}
