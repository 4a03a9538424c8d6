package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps each session as a JSON value whose Redis TTL is the
// session lifetime.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	sess.ExpiresAt = time.Now().Add(ttl)
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session.RedisStore.Save: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+sess.Key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("session.RedisStore.Save: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Session, error) {
	payload, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session.RedisStore.Get: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("session.RedisStore.Get: corrupt session %s: %w", key, err)
	}
	return &sess, nil
}

// Touch extends the session. The write only succeeds while the key still
// exists, so a session deleted after the read is not recreated.
func (s *RedisStore) Touch(ctx context.Context, key string, ttl time.Duration) error {
	sess, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return s.refresh(ctx, sess, ttl)
}

func (s *RedisStore) refresh(ctx context.Context, sess *Session, ttl time.Duration) error {
	sess.ExpiresAt = time.Now().Add(ttl)
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session.RedisStore.Touch: %w", err)
	}
	err = s.rdb.SetArgs(ctx, redisKeyPrefix+sess.Key, payload, redis.SetArgs{Mode: "XX", TTL: ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("session.RedisStore.Touch: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("session.RedisStore.Delete: %w", err)
	}
	return nil
}
