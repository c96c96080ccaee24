// Package session keeps track of logged in users.
//
// A session ties the opaque ID stored in the browser cookie to the bearer
// token the remote API handed out on login.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/KiloProjects/blogfront"
	"github.com/google/uuid"
)

// CookieName is the cookie the session ID is kept in
const CookieName = "blog-sessionid"

// DefaultTTL is used when the API doesn't say how long a token lives
const DefaultTTL = 24 * time.Hour

var ErrNoSession = blogfront.Statusf(401, "Session expired, please log in again")

type Session struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

func (s *Session) LogValue() slog.Value {
	if s == nil {
		return slog.Value{}
	}
	return slog.GroupValue(slog.String("id", s.ID), slog.String("email", s.Email))
}

// Store persists sessions until their TTL runs out
type Store interface {
	Save(ctx context.Context, sess *Session, ttl time.Duration) error
	// Load returns ErrNoSession if the session is unknown
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Start creates a session for a successful login
func (m *Manager) Start(ctx context.Context, email string, auth *blogfront.AuthResponse) (*Session, error) {
	if auth == nil || auth.Token == "" {
		return nil, errors.New("missing auth token")
	}
	ttl := time.Duration(auth.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := m.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Email:     strings.TrimSpace(email),
		Token:     auth.Token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := m.store.Save(ctx, sess, ttl); err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Started session", slog.Any("session", sess))
	return sess, nil
}

// Get returns the live session with the given ID.
// Malformed, unknown and expired IDs all yield ErrNoSession.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNoSession
	}
	sess, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Expired(m.now()) {
		if err := m.store.Delete(ctx, id); err != nil {
			slog.WarnContext(ctx, "Couldn't remove expired session", slog.Any("err", err))
		}
		return nil, ErrNoSession
	}
	return sess, nil
}

// End removes the session. Ending an unknown session is not an error.
func (m *Manager) End(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) Close() error {
	return m.store.Close()
}
