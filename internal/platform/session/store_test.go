package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func exerciseStore(t *testing.T, store Store, expire func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	sess := &Session{Key: "k1", UserID: 7, Username: "ada", Role: "student", CreatedAt: time.Now()}
	if err := store.Save(ctx, sess, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != 7 || got.Username != "ada" || got.Role != "student" {
		t.Fatalf("unexpected session %+v", got)
	}

	// Sliding expiry: touching after 40m keeps the session alive past the first hour.
	expire(40 * time.Minute)
	if err := store.Touch(ctx, "k1", time.Hour); err != nil {
		t.Fatalf("touch: %v", err)
	}
	expire(40 * time.Minute)
	if _, err := store.Get(ctx, "k1"); err != nil {
		t.Fatalf("session should survive after touch: %v", err)
	}

	expire(2 * time.Hour)
	if _, err := store.Get(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}

	store.Save(ctx, &Session{Key: "k2", UserID: 1}, time.Hour)
	if err := store.Delete(ctx, "k2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "k2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted session, got %v", err)
	}
	if err := store.Touch(ctx, "missing", time.Hour); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on touch, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	exerciseStore(t, store, func(d time.Duration) { clock = clock.Add(d) })
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	exerciseStore(t, NewRedisStore(rdb), mr.FastForward)
}

func TestRedisTouchDoesNotRecreateDeletedSession(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	store := NewRedisStore(rdb)
	ctx := context.Background()

	if err := store.Save(ctx, &Session{Key: "k1", UserID: 7}, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	sess, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// Logout lands between the read and the write of a refresh.
	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.refresh(ctx, sess, time.Hour); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists(redisKeyPrefix + "k1") {
		t.Fatalf("deleted session was recreated")
	}
}
