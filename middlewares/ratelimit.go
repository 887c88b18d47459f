package middlewares

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/utils"
)

// LimitStore counts hits per key inside a fixed window.
type LimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// RedisStore keeps counters in Redis so every instance shares them.
type RedisStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client, Prefix: "natours:ratelimit:"}
}

func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	k := s.Prefix + key
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		ttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, err
	}
	left := ttl.Val()
	if left <= 0 {
		// first hit of the window, or a key that lost its expiry
		if err := s.Client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		left = window
	}
	return incr.Val(), time.Now().Add(left), nil
}

// MemoryStore is the single-process fallback when no Redis is configured.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: map[string]*memoryWindow{}, now: time.Now}
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		s.windows[key] = w
		if len(s.windows) > 10000 {
			s.sweep(now)
		}
	}
	w.count++
	return w.count, w.resetAt, nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
		}
	}
}

// RateLimit allows max requests per client IP per window. Store failures
// let the request through.
func RateLimit(store LimitStore, max int, window time.Duration) gin.HandlerFunc {
	limit := strconv.Itoa(max)
	return func(c *gin.Context) {
		count, resetAt, err := store.Hit(c.Request.Context(), c.ClientIP(), window)
		if err != nil {
			log.Printf("⚠️ rate limit store: %v", err)
			c.Next()
			return
		}
		remaining := int64(max) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
		if count > int64(max) {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())+1))
			resp.Fail(c, utils.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
