package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lease guards a sweep against concurrent runners in other processes.
type Lease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type redisLease struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisLease builds a SETNX-based lease with a TTL so a crashed
// runner cannot hold the sweep forever.
func NewRedisLease(client *redis.Client, key string, ttl time.Duration) Lease {
	return &redisLease{client: client, key: key, ttl: ttl}
}

func (l *redisLease) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, time.Now().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep lease: %w", err)
	}
	return ok, nil
}

func (l *redisLease) Release(ctx context.Context) error {
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("failed to release sweep lease: %w", err)
	}
	return nil
}
