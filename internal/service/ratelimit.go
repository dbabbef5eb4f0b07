package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter applies a per-user cooldown to an action using a Redis
// SetNX lock. A nil client disables limiting, so local development and
// tests run without Redis.
type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

func (l *RateLimiter) key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Acquire takes the cooldown slot for (user, action). It reports false
// when the previous slot has not expired yet.
func (l *RateLimiter) Acquire(ctx context.Context, userID uuid.UUID, action string, cooldown time.Duration) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}
	wasSet, err := l.rdb.SetNX(ctx, l.key(userID, action), "locked", cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

// Release frees the slot early, used when the guarded action failed.
func (l *RateLimiter) Release(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	_, err := l.rdb.Del(ctx, l.key(userID, action)).Result()
	return err
}

// TTL reports how long the caller has to wait before the next attempt.
func (l *RateLimiter) TTL(ctx context.Context, userID uuid.UUID, action string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}
	return l.rdb.TTL(ctx, l.key(userID, action)).Result()
}
