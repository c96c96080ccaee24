package blogapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/KiloProjects/blogfront"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*blogfront.AuthResponse, error) {
	req := loginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required),
	); err != nil {
		return nil, err
	}
	var resp authResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: req, endpoint: "/auth/login"}, &resp); err != nil {
		return nil, err
	}
	return &blogfront.AuthResponse{Token: resp.Token, ExpiresIn: resp.ExpiresIn}, nil
}
