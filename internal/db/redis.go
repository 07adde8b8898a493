package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient connects to the Redis server at addr and pings it.
// addr is either host:port or a redis:// URL.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)

	// Ping the server to ensure the connection is established.
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}
