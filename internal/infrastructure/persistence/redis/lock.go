package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("lock: held by another owner")

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript refreshes the TTL only if it still carries our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Locker hands out TTL-bounded exclusive locks.
type Locker struct {
	client *redis.Client
}

// NewLocker creates a Locker on the cache's client.
func NewLocker(cache *Cache) *Locker {
	return &Locker{client: cache.Client()}
}

// Lock is a held lock. It expires on its own when the holder dies.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// Acquire takes the lock on resource or returns ErrLockHeld.
func (l *Locker) Acquire(ctx context.Context, resource string, ttl time.Duration) (*Lock, error) {
	if resource == "" {
		return nil, ErrCacheKeyEmpty
	}
	if ttl <= 0 {
		ttl = TTLDistributedLock
	}

	key := LockKey(resource)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", resource, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{client: l.client, key: key, token: token}, nil
}

// Extend refreshes the TTL. It returns ErrLockHeld when the lock was lost.
func (k *Lock) Extend(ctx context.Context, ttl time.Duration) error {
	n, err := extendScript.Run(ctx, k.client, []string{k.key}, k.token, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("extend lock: %w", err)
	}
	if n == 0 {
		return ErrLockHeld
	}
	return nil
}

// Release frees the lock if it is still ours.
func (k *Lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, k.client, []string{k.key}, k.token).Err(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
