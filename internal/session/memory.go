package session

import (
	"context"
	"time"

	"github.com/Yiling-J/theine-go"
)

type memoryStore struct {
	cache *theine.Cache[string, *Session]
}

// NewMemoryStore keeps up to maxSessions sessions in process memory.
// They are lost on restart.
func NewMemoryStore(maxSessions int64) (Store, error) {
	cache, err := theine.NewBuilder[string, *Session](maxSessions).Build()
	if err != nil {
		return nil, err
	}
	return &memoryStore{cache}, nil
}

func (s *memoryStore) Save(_ context.Context, sess *Session, ttl time.Duration) error {
	cp := *sess
	s.cache.SetWithTTL(sess.ID, &cp, 1, ttl)
	return nil
}

func (s *memoryStore) Load(_ context.Context, id string) (*Session, error) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNoSession
	}
	cp := *sess
	return &cp, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

func (s *memoryStore) Close() error {
	s.cache.Close()
	return nil
}
