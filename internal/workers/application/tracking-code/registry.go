// internal/workers/application/tracking-code/registry.go
package trackingcode

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Registry reserves tracking codes so two submissions never share one.
// Reserve returns false when the code is already taken.
type Registry interface {
	Reserve(ctx context.Context, code string) (bool, error)
}

type RedisRegistry struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

func NewRedisRegistry(client redis.Cmdable, keyPrefix string, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *RedisRegistry) Reserve(ctx context.Context, code string) (bool, error) {
	return r.client.SetNX(ctx, r.keyPrefix+code, time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
}

// MemoryRegistry is the single-process fallback when Redis is not configured.
type MemoryRegistry struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{
		ttl:  ttl,
		now:  time.Now,
		seen: make(map[string]time.Time),
	}
}

func (r *MemoryRegistry) Reserve(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.ttl > 0 {
		for k, expires := range r.seen {
			if now.After(expires) {
				delete(r.seen, k)
			}
		}
	}

	if _, taken := r.seen[code]; taken {
		return false, nil
	}
	r.seen[code] = now.Add(r.ttl)
	return true, nil
}
