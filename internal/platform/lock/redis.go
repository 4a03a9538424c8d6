package lock

import (
	"context"
	"errors"
	"time"

	"chatsql_backend/internal/common"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Release only if we still hold it (value check).
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Redis is a Locker shared by every API instance. Ownership expires after ttl
// so a crashed holder cannot block a key forever.
type Redis struct {
	rdb       *redis.Client
	ttl       time.Duration
	retry     time.Duration
	keyPrefix string
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{rdb: rdb, ttl: ttl, retry: 25 * time.Millisecond, keyPrefix: "lock:"}
}

func (l *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := l.keyPrefix + key
	lockValue := uuid.NewString() // Unique value for this lock instance

	for {
		ok, err := l.rdb.SetNX(ctx, lockKey, lockValue, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Join(ErrNotAcquired, ctx.Err())
			}
			return nil, errors.Join(ErrNotAcquired, err)
		}
		if ok {
			break
		}
		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// The caller's context may already be cancelled.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		deleted, err := releaseScript.Run(relCtx, l.rdb, []string{lockKey}, lockValue).Int()
		if err != nil {
			common.Logger().Error("failed to release lock", "key", lockKey, "error", err)
		} else if deleted == 0 {
			common.Logger().Warn("lock expired before release", "key", lockKey)
		}
	}, nil
}
