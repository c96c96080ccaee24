package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/KiloProjects/blogfront"
)

func TestLoginValidation(t *testing.T) {
	var cases = map[string]struct {
		Email    string
		Password string
		Field    string
	}{
		"emptyPassword": {"ana@example.com", "", "password"},
		"emptyEmail":    {"", "secret", "email"},
		"badEmail":      {"ana", "secret", "email"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			api := &fakeAPI{}
			sessions := &fakeSessions{}
			nav := &navRecorder{}
			c := NewLogin(api, sessions, nav, "")
			if _, err := c.Submit(context.Background(), tc.Email, tc.Password); err == nil {
				t.Fatal("Expected a validation error")
			}
			if api.count("Login") != 0 {
				t.Fatal("Invalid credentials must not reach the API")
			}
			if _, ok := c.FieldErrors()[tc.Field]; !ok {
				t.Fatalf("Expected an error for %q, got %v", tc.Field, c.FieldErrors())
			}
			if len(sessions.started) != 0 || nav.last() != "" || c.Pending() {
				t.Fatal("Unexpected side effects")
			}
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{}
	sessions := &fakeSessions{}
	nav := &navRecorder{}
	c := NewLogin(api, sessions, nav, "")
	sess, err := c.Submit(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sess.Token != "jwt" || len(sessions.started) != 1 {
		t.Fatalf("Expected the session to be stored, got %#v", sess)
	}
	if nav.last() != "/" {
		t.Fatalf("Expected navigation to the listing, got %q", nav.last())
	}
}

func TestLoginBack(t *testing.T) {
	var cases = map[string]string{
		"/posts/new":          "/posts/new",
		"/drafts?page=2":      "/drafts?page=2",
		"https://evil.test/":  "/",
		"//evil.test/":        "/",
		"/\\evil.test":        "/",
		"javascript:alert(1)": "/",
		"":                    "/",
	}
	for back, want := range cases {
		t.Run(back, func(t *testing.T) {
			t.Parallel()
			nav := &navRecorder{}
			c := NewLogin(&fakeAPI{}, &fakeSessions{}, nav, back)
			if _, err := c.Submit(context.Background(), "ana@example.com", "secret"); err != nil {
				t.Fatal(err)
			}
			if nav.last() != want {
				t.Fatalf("Expected navigation to %q, got %q", want, nav.last())
			}
		})
	}
}

func TestLoginFailure(t *testing.T) {
	var cases = map[string]struct {
		Err  error
		Want string
	}{
		"serverMessage": {blogfront.Statusf(401, "Incorrect username or password"), "Incorrect username or password"},
		"serverError":   {blogfront.Statusf(500, "NullPointerException"), MsgLoginFailed},
		"network":       {errBoom, MsgLoginFailed},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			api := &fakeAPI{login: func(ctx context.Context, email, password string) (*blogfront.AuthResponse, error) {
				return nil, tc.Err
			}}
			nav := &navRecorder{}
			c := NewLogin(api, &fakeSessions{}, nav, "")
			if _, err := c.Submit(context.Background(), "ana@example.com", "wrong"); err == nil {
				t.Fatal("Expected an error")
			}
			if c.Err() != tc.Want {
				t.Fatalf("Expected %q, got %q", tc.Want, c.Err())
			}
			if c.Pending() || nav.last() != "" {
				t.Fatal("A failed login must allow a retry and stay on the page")
			}
		})
	}
}

func TestLoginSessionFailure(t *testing.T) {
	t.Parallel()
	nav := &navRecorder{}
	c := NewLogin(&fakeAPI{}, &fakeSessions{err: errBoom}, nav, "")
	if _, err := c.Submit(context.Background(), "ana@example.com", "secret"); err == nil {
		t.Fatal("Expected an error")
	}
	if c.Err() != MsgLoginFailed || nav.last() != "" {
		t.Fatalf("Unexpected state err=%q nav=%q", c.Err(), nav.last())
	}
}

func TestLoginSinglePending(t *testing.T) {
	t.Parallel()
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{login: func(ctx context.Context, email, password string) (*blogfront.AuthResponse, error) {
		close(entered)
		<-release
		return &blogfront.AuthResponse{Token: "jwt"}, nil
	}}
	c := NewLogin(api, &fakeSessions{}, &navRecorder{}, "")

	done := make(chan error)
	go func() {
		_, err := c.Submit(context.Background(), "ana@example.com", "secret")
		done <- err
	}()
	<-entered
	if !c.Pending() {
		t.Fatal("Expected a pending submission")
	}
	if _, err := c.Submit(context.Background(), "ana@example.com", "secret"); !errors.Is(err, ErrSubmitPending) {
		t.Fatalf("Expected ErrSubmitPending, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("First submission failed: %v", err)
	}
	if api.count("Login") != 1 {
		t.Fatalf("Expected one login call, got %d", api.count("Login"))
	}
}
