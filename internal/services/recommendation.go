package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/internal/engine"
	"github.com/temcen/movierec/pkg/models"
)

// RecommendationService validates requests against the serving snapshot
// and runs the scorers. Every request scores against a single snapshot even
// if a rebuild lands while it runs.
type RecommendationService struct {
	engine  *engine.Engine
	catalog *CatalogService
	cache   ResultCache
	metrics *Metrics
	cfg     config.RecommendationConfig
	logger  *logrus.Logger
}

// NewRecommendationService builds the service. cache may be nil.
func NewRecommendationService(
	eng *engine.Engine,
	catalog *CatalogService,
	cache ResultCache,
	metrics *Metrics,
	cfg config.RecommendationConfig,
	logger *logrus.Logger,
) *RecommendationService {
	return &RecommendationService{
		engine:  eng,
		catalog: catalog,
		cache:   cache,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *RecommendationService) ContentBased(ctx context.Context, movieID, n int) (*models.RecommendationResponse, error) {
	snap := s.engine.Snapshot()
	if _, ok := snap.Movie(movieID); !ok {
		return nil, ErrMovieNotFound
	}
	defer s.metrics.ObserveScoring(models.MethodContentBased, time.Now())
	recs := snap.ContentBased(movieID, s.count(n))
	resp := s.response(models.MethodContentBased, snap, recs)
	resp.MovieID = &movieID
	return resp, nil
}

func (s *RecommendationService) ItemBased(ctx context.Context, movieID, n int) (*models.RecommendationResponse, error) {
	snap := s.engine.Snapshot()
	if _, ok := snap.Movie(movieID); !ok {
		return nil, ErrMovieNotFound
	}
	defer s.metrics.ObserveScoring(models.MethodItemBased, time.Now())
	recs := snap.ItemBased(movieID, s.count(n))
	resp := s.response(models.MethodItemBased, snap, recs)
	resp.MovieID = &movieID
	return resp, nil
}

func (s *RecommendationService) Collaborative(ctx context.Context, userID, n int) (*models.RecommendationResponse, error) {
	snap := s.engine.Snapshot()
	if !s.catalog.UserExists(snap, userID) {
		return nil, ErrUserNotFound
	}
	defer s.metrics.ObserveScoring(models.MethodCollaborative, time.Now())
	recs := snap.UserBased(userID, s.count(n))
	resp := s.response(models.MethodCollaborative, snap, recs)
	resp.UserID = &userID
	return resp, nil
}

func (s *RecommendationService) Popular(ctx context.Context, n int) (*models.RecommendationResponse, error) {
	snap := s.engine.Snapshot()
	n = s.count(n)
	key := fmt.Sprintf("rec:v%d:popular:%d", snap.Version(), n)

	resp, hit := cachedResult(ctx, s, key, func() *models.RecommendationResponse {
		defer s.metrics.ObserveScoring(models.MethodPopularity, time.Now())
		return s.response(models.StrategyPopular, snap, snap.Popular(n))
	})
	resp.CacheHit = hit
	return resp, nil
}

// Hybrid blends every method for userID. movieID, when set, anchors the
// item and content scorers and must exist.
func (s *RecommendationService) Hybrid(ctx context.Context, userID int, movieID *int, n int) (*models.RecommendationResponse, error) {
	snap := s.engine.Snapshot()
	if !s.catalog.UserExists(snap, userID) {
		return nil, ErrUserNotFound
	}
	if movieID != nil {
		if _, ok := snap.Movie(*movieID); !ok {
			return nil, ErrMovieNotFound
		}
	}
	n = s.count(n)
	anchor := "-"
	if movieID != nil {
		anchor = fmt.Sprint(*movieID)
	}
	key := fmt.Sprintf("rec:v%d:hybrid:%d:%s:%d", snap.Version(), userID, anchor, n)

	resp, hit := cachedResult(ctx, s, key, func() *models.RecommendationResponse {
		defer s.metrics.ObserveScoring(models.StrategyHybrid, time.Now())
		resp := s.response(models.StrategyHybrid, snap, snap.Hybrid(userID, movieID, n))
		resp.UserID = &userID
		resp.MovieID = movieID
		return resp
	})
	resp.CacheHit = hit
	return resp, nil
}

// Personalized serves any user id: ids without ratings take the cold-start
// branch.
func (s *RecommendationService) Personalized(ctx context.Context, userID, n int) (*models.PersonalizedResponse, error) {
	snap := s.engine.Snapshot()
	n = s.count(n)
	key := fmt.Sprintf("rec:v%d:personalized:%d:%d", snap.Version(), userID, n)

	resp, hit := cachedResult(ctx, s, key, func() *models.PersonalizedResponse {
		defer s.metrics.ObserveScoring("personalized", time.Now())
		return &models.PersonalizedResponse{
			UserID:             userID,
			PersonalizedResult: snap.Personalized(userID, n),
			Version:            snap.Version(),
			GeneratedAt:        time.Now(),
		}
	})
	resp.CacheHit = hit
	return resp, nil
}

func (s *RecommendationService) Compare(ctx context.Context, req models.CompareRequest) (*models.CompareResponse, error) {
	snap := s.engine.Snapshot()
	if !s.catalog.UserExists(snap, req.UserID) {
		return nil, ErrUserNotFound
	}
	if req.MovieID != nil {
		if _, ok := snap.Movie(*req.MovieID); !ok {
			return nil, ErrMovieNotFound
		}
	}
	n := req.N
	if n <= 0 {
		n = s.cfg.DefaultCount
	}
	if n > s.cfg.MaxCompareCount {
		n = s.cfg.MaxCompareCount
	}

	defer s.metrics.ObserveScoring("compare", time.Now())
	return &models.CompareResponse{
		UserID:  req.UserID,
		MovieID: req.MovieID,
		Methods: snap.Compare(req.UserID, req.MovieID, n),
	}, nil
}

func (s *RecommendationService) SimilarUsers(ctx context.Context, userID, n int) (*models.SimilarUsersResponse, error) {
	snap := s.engine.Snapshot()
	if !s.catalog.UserExists(snap, userID) {
		return nil, ErrUserNotFound
	}
	return &models.SimilarUsersResponse{
		UserID:       userID,
		SimilarUsers: snap.SimilarUsers(userID, s.count(n)),
	}, nil
}

// count applies the configured default and ceiling to a requested list
// length.
func (s *RecommendationService) count(n int) int {
	if n <= 0 {
		return s.cfg.DefaultCount
	}
	if n > s.cfg.MaxCount {
		return s.cfg.MaxCount
	}
	return n
}

func (s *RecommendationService) response(method string, snap *engine.Snapshot, recs []models.Recommendation) *models.RecommendationResponse {
	return &models.RecommendationResponse{
		Method:          method,
		Recommendations: recs,
		Count:           len(recs),
		Version:         snap.Version(),
		GeneratedAt:     time.Now(),
	}
}

// cachedResult returns the cached value under key, or computes and stores
// it. Cache failures are logged and the value is computed.
func cachedResult[T any](ctx context.Context, s *RecommendationService, key string, compute func() T) (T, bool) {
	if s.cache == nil {
		return compute(), false
	}

	var cached T
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to read cached recommendations")
	}
	s.metrics.RecordCache(hit)
	if hit {
		return cached, true
	}

	value := compute()
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to cache recommendations")
	}
	return value, false
}
