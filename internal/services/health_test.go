package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/internal/engine"
)

func TestHealthService_CheckHealth(t *testing.T) {
	logger := quietLogger()
	cfg := &config.Config{Data: config.DataConfig{Source: "csv"}}
	eng := engine.New(engine.DefaultOptions(), logger)
	hs := NewHealthService(cfg, logger, nil, eng)

	status := hs.CheckHealth(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, []string{"engine"}, status.Critical)

	eng.Load(fixtureMovies(), fixtureRatings())
	status = hs.CheckHealth(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Services["engine"])
	assert.Equal(t, uint64(1), status.Engine.Version)

	t.Run("non-critical failure degrades", func(t *testing.T) {
		hs.checks = append(hs.checks, dependencyCheck{
			name:  "neo4j",
			check: func(ctx context.Context) error { return errBoom },
		})
		status := hs.CheckHealth(context.Background())
		assert.Equal(t, "degraded", status.Status)
		assert.Equal(t, []string{"neo4j"}, status.NonCritical)
	})
}
