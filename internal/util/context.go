package util

import (
	"context"
	"net/http"

	"github.com/KiloProjects/blogfront/internal/session"
)

// BFContextType is the string type for all context values
type BFContextType string

const (
	// SessionKey is the key to be used for adding the login session to context
	SessionKey = BFContextType("session")
	// PostIDKey is the key to be used for adding the route's post ID to context
	PostIDKey = BFContextType("postID")
)

// Session returns the login session from request context
func Session(r *http.Request) *session.Session {
	return SessionContext(r.Context())
}

func SessionContext(ctx context.Context) *session.Session {
	switch v := ctx.Value(SessionKey).(type) {
	case *session.Session:
		return v
	default:
		return nil
	}
}

// Token is the API bearer token of the logged in user, or "" for visitors
func Token(r *http.Request) string {
	if sess := Session(r); sess != nil {
		return sess.Token
	}
	return ""
}

func IsAuthed(r *http.Request) bool {
	return Session(r) != nil
}

func PostID(r *http.Request) string {
	v, _ := r.Context().Value(PostIDKey).(string)
	return v
}
