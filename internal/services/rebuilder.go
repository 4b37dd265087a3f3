package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/database"
	"github.com/temcen/movierec/internal/engine"
	"github.com/temcen/movierec/internal/messaging"
)

// SnapshotExporter publishes a freshly built snapshot somewhere else, such
// as the similarity graph.
type SnapshotExporter interface {
	Export(ctx context.Context, snap *engine.Snapshot) error
}

// Rebuilder reloads the data source into the engine.
type Rebuilder struct {
	source   database.DataSource
	engine   *engine.Engine
	catalog  *CatalogService
	exporter SnapshotExporter
	metrics  *Metrics
	logger   *logrus.Logger

	mu sync.Mutex
	// loadStarted is when the data behind the serving snapshot started
	// loading. Anything persisted before it is already reflected.
	loadStarted time.Time
}

// NewRebuilder builds a Rebuilder. exporter may be nil.
func NewRebuilder(
	source database.DataSource,
	eng *engine.Engine,
	catalog *CatalogService,
	exporter SnapshotExporter,
	metrics *Metrics,
	logger *logrus.Logger,
) *Rebuilder {
	return &Rebuilder{
		source:   source,
		engine:   eng,
		catalog:  catalog,
		exporter: exporter,
		metrics:  metrics,
		logger:   logger,
	}
}

// Rebuild loads everything from the data source and swaps in a new
// snapshot.
func (r *Rebuilder) Rebuild(ctx context.Context) (*engine.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rebuildLocked(ctx)
}

// HandleRatingEvent rebuilds unless a snapshot loaded after the event was
// published is already serving. Added ratings, deleted ratings and tags are
// handled alike.
func (r *Rebuilder) HandleRatingEvent(ctx context.Context, event messaging.RatingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Timestamp.Before(r.loadStarted) {
		r.logger.WithFields(logrus.Fields{
			"event_id":   event.EventID,
			"event_type": event.Type,
			"version":    r.engine.Snapshot().Version(),
		}).Debug("Change already reflected in serving snapshot")
		return nil
	}

	_, err := r.rebuildLocked(ctx)
	return err
}

func (r *Rebuilder) rebuildLocked(ctx context.Context) (*engine.Snapshot, error) {
	start := time.Now()
	snap, err := r.load(ctx)
	r.metrics.RecordRebuild(time.Since(start), err)
	if err != nil {
		r.logger.WithError(err).Error("Failed to rebuild recommendation matrices")
		return nil, err
	}

	r.loadStarted = start
	r.metrics.RecordSnapshot(snap)

	if r.exporter != nil {
		if err := r.exporter.Export(ctx, snap); err != nil {
			r.logger.WithError(err).WithField("version", snap.Version()).Warn("Failed to export similarity graph")
		}
	}
	return snap, nil
}

func (r *Rebuilder) load(ctx context.Context) (*engine.Snapshot, error) {
	movies, err := r.source.LoadMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load movies: %w", err)
	}

	ratings, err := r.source.LoadRatings(ctx)
	if errors.Is(err, database.ErrNotFound) {
		r.logger.Warn("No ratings found, building from catalog only")
		ratings, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	users, err := r.source.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	tags, err := r.source.LoadTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	links, err := r.source.LoadLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	// The directory goes first: a reader that sees the new snapshot must
	// also see the users and tags it was built with.
	r.catalog.SetDirectory(users, tags, links)
	return r.engine.Load(movies, ratings), nil
}
