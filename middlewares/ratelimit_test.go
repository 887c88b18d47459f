package middlewares

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestRateLimitBlocksAfterMax(t *testing.T) {
	store := NewMemoryStore()
	r := newEngine(false)
	r.Use(RateLimit(store, 2, time.Hour))
	r.GET("/api/v1/tours", ok)

	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodGet, "/api/v1/tours", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
	w := do(r, http.MethodGet, "/api/v1/tours", nil)
	wantMessage(t, w, http.StatusTooManyRequests, "Too many requests from this IP, please try again in an hour!")
	if w.Header().Get("X-RateLimit-Limit") != "2" || w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("headers = %v", w.Header())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestMemoryStoreWindowResets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Hit(ctx, "1.2.3.4", time.Hour)
	n, reset, _ := store.Hit(ctx, "1.2.3.4", time.Hour)
	if n != 2 || !reset.Equal(now.Add(time.Hour)) {
		t.Fatalf("count = %d, reset = %v", n, reset)
	}
	if n, _, _ := store.Hit(ctx, "5.6.7.8", time.Hour); n != 1 {
		t.Errorf("other key count = %d", n)
	}

	now = now.Add(time.Hour)
	if n, _, _ := store.Hit(ctx, "1.2.3.4", time.Hour); n != 1 {
		t.Errorf("count after window = %d", n)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisStore(client)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, _, err := store.Hit(ctx, "1.2.3.4", time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if n != want {
			t.Fatalf("count = %d, want %d", n, want)
		}
	}
	if ttl := mr.TTL("natours:ratelimit:1.2.3.4"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	n, _, err := store.Hit(ctx, "1.2.3.4", time.Minute)
	if err != nil || n != 1 {
		t.Errorf("after expiry: %d, %v", n, err)
	}
}

type brokenStore struct{}

func (brokenStore) Hit(context.Context, string, time.Duration) (int64, time.Time, error) {
	return 0, time.Time{}, errors.New("connection refused")
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := newEngine(false)
	r.Use(RateLimit(brokenStore{}, 1, time.Hour))
	r.GET("/api/v1/tours", ok)

	for i := 0; i < 3; i++ {
		if w := do(r, http.MethodGet, "/api/v1/tours", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
}
