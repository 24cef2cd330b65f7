// internal/pkg/lock/lock.go
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another holder owns the key
var ErrLocked = errors.New("lock already held")

// Release gives up a lock. It is safe to call more than once.
type Release func(ctx context.Context) error

// Locker grants short-lived exclusive ownership of a key
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker creates a Redis backed locker; keys are namespaced by prefix
func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

// Acquire implements Locker
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", fullKey, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	var once sync.Once
	return func(ctx context.Context) error {
		var releaseErr error
		once.Do(func() {
			if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
				releaseErr = fmt.Errorf("failed to release lock %s: %w", fullKey, err)
			}
		})
		return releaseErr
	}, nil
}

// MemoryLocker is a process-local Locker
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

// NewMemoryLocker creates a process-local locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held:  make(map[string]time.Time),
		clock: time.Now,
	}
}

// Acquire implements Locker
func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if expires, ok := l.held[key]; ok && now.Before(expires) {
		return nil, ErrLocked
	}
	expires := now.Add(ttl)
	l.held[key] = expires

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if current, ok := l.held[key]; ok && current.Equal(expires) {
				delete(l.held, key)
			}
		})
		return nil
	}, nil
}
