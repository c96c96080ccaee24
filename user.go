package blogfront

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Author is the user that wrote a post. It is embedded in posts for display only.
type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Initials is used in place of a missing avatar
func (a *Author) Initials() string {
	if a == nil || a.Name == "" {
		return "?"
	}
	var b strings.Builder
	for i, field := range strings.Fields(a.Name) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(field)
		b.WriteString(strings.ToUpper(string(r)))
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

func (a *Author) LogValue() slog.Value {
	if a == nil {
		return slog.Value{}
	}
	return slog.GroupValue(slog.String("id", a.ID), slog.String("name", a.Name))
}

// AuthResponse is what the remote API hands back on a successful login
type AuthResponse struct {
	Token string `json:"token"`
	// ExpiresIn is in seconds
	ExpiresIn int `json:"expiresIn"`
}
