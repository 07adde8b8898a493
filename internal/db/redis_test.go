package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestNewRedisClient(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Set(ctx, "room:r1", "ok", time.Minute).Err())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "redis://host:port:extra/db")
	assert.Error(t, err)
}
