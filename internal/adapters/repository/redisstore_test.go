package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// newTestRedisStore connects to REDIS_ADDR or skips.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	key := "reelrank:test:" + uuid.NewString()
	store := NewRedisStore(NewRedisClient(RedisOptions{Addr: addr}), key)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() {
		_ = store.rdb.Del(context.Background(), key).Err()
		_ = store.Close()
	})
	return store
}

func TestRedisStore_AddRankRange(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	_, _ = store.Add(ctx, "u1", 120)
	_, _ = store.Add(ctx, "u2", 95)
	_, _ = store.Add(ctx, "u3", 80)
	_, _ = store.Add(ctx, "tie-b", 10)
	_, _ = store.Add(ctx, "tie-a", 10)

	if total, _ := store.Add(ctx, "u3", 30); total != 110 {
		t.Fatalf("expected 110, got %f", total)
	}

	e, err := store.Rank(ctx, "u3")
	if err != nil || e.Rank != 2 || e.Score != 110 {
		t.Fatalf("unexpected rank %+v, %v", e, err)
	}

	page, err := store.Range(ctx, 3, 2)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(page) != 2 || page[0].UserID != "tie-a" || page[1].UserID != "tie-b" || page[0].Rank != 4 {
		t.Fatalf("unexpected tie order: %+v", page)
	}

	if _, err := store.Rank(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if store.Count(ctx) != 5 {
		t.Fatalf("expected 5, got %d", store.Count(ctx))
	}
}

func TestRedisStore_Pagination(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	const users = 53
	for i := 0; i < users; i++ {
		_, _ = store.Add(ctx, fmt.Sprintf("user-%02d", i), float64(i%5))
	}
	seen := map[string]bool{}
	for offset := 0; offset < users; offset += 10 {
		page, err := store.Range(ctx, offset, 10)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		for _, e := range page {
			if seen[e.UserID] {
				t.Fatalf("%s seen twice", e.UserID)
			}
			seen[e.UserID] = true
		}
	}
	if len(seen) != users {
		t.Fatalf("saw %d users, want %d", len(seen), users)
	}
	beyond, _ := store.Range(ctx, 500, 10)
	if len(beyond) != 0 {
		t.Fatalf("expected empty page, got %d", len(beyond))
	}
}
