package controller

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/internal/session"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f loginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
		validation.Field(&f.Password, validation.Required),
	)
}

type Login struct {
	api      LoginAPI
	sessions SessionStarter
	nav      Navigator
	back     string

	mu        sync.RWMutex
	pending   bool
	email     string
	err       string
	fieldErrs map[string]string
}

// NewLogin creates the login controller. After logging in, the user is sent
// to back if it is a local path, otherwise to the listing.
func NewLogin(api LoginAPI, sessions SessionStarter, nav Navigator, back string) *Login {
	return &Login{api: api, sessions: sessions, nav: nav, back: SafeBack(back)}
}

// SafeBack only lets through same-site absolute paths
func SafeBack(back string) string {
	if back == "" || !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") || strings.HasPrefix(back, "/\\") {
		return "/"
	}
	u, err := url.Parse(back)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return back
}

// Submit logs in. At most one submission runs at a time, others get ErrSubmitPending.
func (c *Login) Submit(ctx context.Context, email, password string) (*session.Session, error) {
	form := loginForm{Email: strings.TrimSpace(email), Password: password}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return nil, ErrSubmitPending
	}
	c.email = form.Email
	if err := form.Validate(); err != nil {
		c.fieldErrs = fieldErrors(err)
		c.mu.Unlock()
		return nil, err
	}
	c.fieldErrs = nil
	c.err = ""
	c.pending = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
	}()

	auth, err := c.api.Login(ctx, form.Email, form.Password)
	if err != nil {
		slog.InfoContext(ctx, "Login failed", slog.String("email", form.Email), slog.Any("err", err))
		c.setErr(loginErrorText(err))
		return nil, err
	}
	sess, err := c.sessions.Start(ctx, form.Email, auth)
	if err != nil {
		slog.WarnContext(ctx, "Couldn't start session", slog.Any("err", err))
		c.setErr(MsgLoginFailed)
		return nil, err
	}

	c.nav.Navigate(c.back)
	return sess, nil
}

// loginErrorText shows what the API said for client errors and a generic message otherwise
func loginErrorText(err error) string {
	if code := blogfront.ErrorCode(err); code >= 400 && code < 500 {
		return blogfront.ErrorText(err, MsgLoginFailed)
	}
	return MsgLoginFailed
}

func (c *Login) setErr(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = msg
}

func (c *Login) Pending() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending
}

func (c *Login) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

func (c *Login) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Login) FieldErrors() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fieldErrs
}

func (c *Login) Back() string {
	return c.back
}
