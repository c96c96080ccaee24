package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisPrefix = "blogfront:session:"

type redisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and fails early if it can't be reached
func NewRedisStore(ctx context.Context, opts *redis.Options) (Store, error) {
	rdb := redis.NewClient(opts)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("couldn't reach redis: %w", err)
	}
	return &redisStore{rdb}, nil
}

func (s *redisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisPrefix+sess.ID, data, ttl).Err()
}

func (s *redisStore) Load(ctx context.Context, id string) (*Session, error) {
	val, err := s.client.Get(ctx, redisPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session %q: %w", id, err)
	}
	return &sess, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisPrefix+id).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
