package workflow

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const runLockPrefix = "assignment:run:"

// RedisRunLocker implements the per-ticket duplicate-run guard with a
// Redis SET NX marker. The marker outlives a successful run so a
// double-fired creation event within the TTL is absorbed.
type RedisRunLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRunLocker builds the locker.
func NewRedisRunLocker(client *redis.Client, ttl time.Duration) *RedisRunLocker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisRunLocker{client: client, ttl: ttl}
}

// Acquire claims the run marker for a ticket.
func (l *RedisRunLocker) Acquire(ctx context.Context, ticketID string) (bool, error) {
	return l.client.SetNX(ctx, runLockPrefix+ticketID, "1", l.ttl).Result()
}

// Release drops the marker so a retried run can claim it again.
func (l *RedisRunLocker) Release(ctx context.Context, ticketID string) error {
	return l.client.Del(ctx, runLockPrefix+ticketID).Err()
}
