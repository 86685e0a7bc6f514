package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"coaster_catalog/internal/common"
)

// LoginLimiter throttles repeated failed logins per email. A limiter error
// from Allow short-circuits the login flow before any credential check.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type redisLoginLimiter struct {
	rdb         *redis.Client
	maxAttempts int
	lockout     time.Duration
}

// NewLoginLimiter returns a redis-backed limiter, or a no-op limiter when
// redis is not configured.
func NewLoginLimiter(rdb *redis.Client, maxAttempts int, lockout time.Duration) LoginLimiter {
	if rdb == nil {
		return noopLoginLimiter{}
	}
	return &redisLoginLimiter{rdb: rdb, maxAttempts: maxAttempts, lockout: lockout}
}

func attemptsKey(email string) string {
	return "login_attempts:" + email
}

func (l *redisLoginLimiter) Allow(ctx context.Context, email string) error {
	attempts, err := l.rdb.Get(ctx, attemptsKey(email)).Int()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	if attempts >= l.maxAttempts {
		return common.ErrTooManyLogins
	}
	return nil
}

func (l *redisLoginLimiter) RecordFailure(ctx context.Context, email string) error {
	key := attemptsKey(email)
	attempts, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	if attempts == 1 {
		l.rdb.Expire(ctx, key, l.lockout)
	}
	return nil
}

func (l *redisLoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.rdb.Del(ctx, attemptsKey(email)).Err(); err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	return nil
}

type noopLoginLimiter struct{}

func (noopLoginLimiter) Allow(context.Context, string) error         { return nil }
func (noopLoginLimiter) RecordFailure(context.Context, string) error { return nil }
func (noopLoginLimiter) Reset(context.Context, string) error         { return nil }
