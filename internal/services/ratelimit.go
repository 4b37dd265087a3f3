package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/pkg/models"
)

const rateLimitTimeout = 2 * time.Second

// RateLimitService is a sliding-window limiter keyed by client. It fails
// open when Redis is unavailable.
type RateLimitService struct {
	limit  int
	window time.Duration
	logger *logrus.Logger
	client *redis.Client
}

func NewRateLimitService(cfg config.RateLimitConfig, logger *logrus.Logger, client *redis.Client) *RateLimitService {
	return &RateLimitService{
		limit:  cfg.Requests,
		window: cfg.Window,
		logger: logger,
		client: client,
	}
}

// IsAllowed records one request for clientID and reports whether it fits in
// the current window.
func (s *RateLimitService) IsAllowed(ctx context.Context, clientID string) (bool, *models.RateLimitInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, rateLimitTimeout)
	defer cancel()

	key := fmt.Sprintf("rate_limit:client:%s", clientID)
	now := time.Now()
	cutoff := now.Add(-s.window).UnixNano()

	var (
		seen   *redis.IntCmd
		oldest *redis.ZSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
		seen = pipe.ZCard(ctx, key)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
		pipe.Expire(ctx, key, s.window)
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("client", clientID).Warn("Rate limit check failed, allowing request")
		return true, s.info(s.limit-1, now), nil
	}

	count := int(seen.Val())
	reset := now
	if first := oldest.Val(); len(first) > 0 {
		reset = time.Unix(0, int64(first[0].Score))
	}

	remaining := s.limit - count - 1
	if remaining < 0 {
		remaining = 0
	}
	return count < s.limit, s.info(remaining, reset), nil
}

func (s *RateLimitService) info(remaining int, from time.Time) *models.RateLimitInfo {
	return &models.RateLimitInfo{
		Limit:     s.limit,
		Remaining: remaining,
		ResetTime: from.Add(s.window).Unix(),
	}
}
