package services

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/movierec/internal/config"
)

func TestRateLimitService_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	svc := NewRateLimitService(config.RateLimitConfig{Enabled: true, Requests: 10, Window: time.Minute}, quietLogger(), client)

	allowed, info, err := svc.IsAllowed(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 10, info.Limit)
	assert.Equal(t, 9, info.Remaining)
}
