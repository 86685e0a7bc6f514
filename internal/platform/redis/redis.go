package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Connect dials redis and verifies the connection. An empty addr means
// redis is not configured; callers treat a nil client as "feature off".
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
