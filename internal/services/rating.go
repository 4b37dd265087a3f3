package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/database"
	"github.com/temcen/movierec/internal/engine"
	"github.com/temcen/movierec/pkg/models"
)

// Outcomes reported in the Rebuild field of mutation responses.
const (
	RebuildQueued    = "queued"
	RebuildCompleted = "completed"
	RebuildFailed    = "failed"
)

// RatingPublisher announces persisted rating and tag changes to the rebuild
// consumer.
type RatingPublisher interface {
	PublishRating(ctx context.Context, rating models.Rating) error
	PublishRatingDeleted(ctx context.Context, userID, movieID int) error
	PublishTag(ctx context.Context, tag models.Tag) error
}

type RatingService struct {
	source    database.DataSource
	engine    *engine.Engine
	catalog   *CatalogService
	publisher RatingPublisher
	rebuilder *Rebuilder
	metrics   *Metrics
	logger    *logrus.Logger
	now       func() time.Time
}

// NewRatingService builds the service. Without a publisher every rating
// rebuilds the engine inline.
func NewRatingService(
	source database.DataSource,
	eng *engine.Engine,
	catalog *CatalogService,
	publisher RatingPublisher,
	rebuilder *Rebuilder,
	metrics *Metrics,
	logger *logrus.Logger,
) *RatingService {
	return &RatingService{
		source:    source,
		engine:    eng,
		catalog:   catalog,
		publisher: publisher,
		rebuilder: rebuilder,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// AddRating stores a rating and gets it into the matrices, either through
// the event consumer or by rebuilding directly. A failed rebuild does not
// fail the request since the rating is already stored.
func (s *RatingService) AddRating(ctx context.Context, req models.CreateRatingRequest) (*models.CreateRatingResponse, error) {
	if !validScore(req.Rating) {
		return nil, ErrInvalidRating
	}
	if _, ok := s.engine.Snapshot().Movie(req.MovieID); !ok {
		return nil, ErrMovieNotFound
	}

	now := s.now()
	rating := models.Rating{
		UserID:    req.UserID,
		MovieID:   req.MovieID,
		Score:     req.Rating,
		Timestamp: now.Unix(),
	}
	if err := s.source.AddRating(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to store rating: %w", err)
	}
	s.metrics.RecordRating()

	log := s.logger.WithFields(logrus.Fields{
		"user_id":  rating.UserID,
		"movie_id": rating.MovieID,
		"rating":   rating.Score,
	})
	return &models.CreateRatingResponse{
		Rating:    rating,
		CreatedAt: now,
		Rebuild: s.propagate(ctx, log, func(ctx context.Context) error {
			return s.publisher.PublishRating(ctx, rating)
		}),
	}, nil
}

// DeleteRating removes every rating the user gave the movie. Any deletion
// needs a full rebuild, queued or inline like AddRating.
func (s *RatingService) DeleteRating(ctx context.Context, userID, movieID int) (*models.DeleteRatingResponse, error) {
	removed, err := s.source.DeleteRating(ctx, userID, movieID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrRatingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete rating: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"movie_id": movieID,
		"removed":  removed,
	})
	return &models.DeleteRatingResponse{
		UserID:  userID,
		MovieID: movieID,
		Removed: removed,
		Rebuild: s.propagate(ctx, log, func(ctx context.Context) error {
			return s.publisher.PublishRatingDeleted(ctx, userID, movieID)
		}),
	}, nil
}

// AddTag stores a tag for a known user and movie. Tags feed the catalog
// rather than the scorers but still go through a rebuild.
func (s *RatingService) AddTag(ctx context.Context, req models.CreateTagRequest) (*models.CreateTagResponse, error) {
	text := strings.TrimSpace(req.Tag)
	if text == "" {
		return nil, ErrInvalidTag
	}
	snap := s.engine.Snapshot()
	movie, ok := snap.Movie(req.MovieID)
	if !ok {
		return nil, ErrMovieNotFound
	}
	if !s.catalog.UserExists(snap, req.UserID) {
		return nil, ErrUserNotFound
	}

	now := s.now()
	tag := models.Tag{
		UserID:    req.UserID,
		MovieID:   req.MovieID,
		Tag:       text,
		Timestamp: now.Unix(),
	}
	if err := s.source.AddTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to store tag: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"user_id":  tag.UserID,
		"movie_id": tag.MovieID,
		"tag":      tag.Tag,
	})
	return &models.CreateTagResponse{
		Tag:        tag,
		MovieTitle: movie.Title,
		CreatedAt:  now,
		Rebuild: s.propagate(ctx, log, func(ctx context.Context) error {
			return s.publisher.PublishTag(ctx, tag)
		}),
	}, nil
}

// propagate hands a stored change to the event consumer, falling back to
// an inline rebuild when there is no publisher or publishing fails.
func (s *RatingService) propagate(ctx context.Context, log *logrus.Entry, publish func(context.Context) error) string {
	if s.publisher != nil {
		err := publish(ctx)
		if err == nil {
			log.Info("Change stored, rebuild queued")
			return RebuildQueued
		}
		log.WithError(err).Warn("Failed to publish change event, rebuilding inline")
	}

	if _, err := s.rebuilder.Rebuild(ctx); err != nil {
		return RebuildFailed
	}
	log.Info("Change stored, matrices rebuilt")
	return RebuildCompleted
}

// validScore accepts 0.5 to 5.0 in half-star steps.
func validScore(score float64) bool {
	if score < 0.5 || score > 5 {
		return false
	}
	return math.Mod(score*2, 1) == 0
}
