// Package lock provides the per-store advisory lock of §5: the fallback that
// preserves the admission algorithm's serializability guarantee on a backing
// store that lacks true SERIALIZABLE transactions.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// StoreLock acquires and releases a Redis-backed mutual-exclusion lock named
// after a store id, using SET NX PX for acquisition and a token-checked
// delete for release so a lock never frees a holder other than its own.
type StoreLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStoreLock(client *redis.Client, ttl time.Duration) *StoreLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &StoreLock{client: client, ttl: ttl}
}

// Handle is a held lock; callers must Release it once the admission
// transaction completes.
type Handle struct {
	key   string
	token string
	lock  *StoreLock
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Acquire blocks (retrying every 20ms) until it holds Lock(storeId), or ctx
// is cancelled.
func (l *StoreLock) Acquire(ctx context.Context, storeID uuid.UUID) (*Handle, error) {
	key := fmt.Sprintf("lock:store:%s", storeID)
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return &Handle{key: key, token: token, lock: l}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// Release frees the lock if and only if it is still held by this handle.
func (h *Handle) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, h.lock.client, []string{h.key}, h.token).Err()
}
