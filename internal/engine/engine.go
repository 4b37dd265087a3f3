package engine

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/pkg/models"
)

// Engine serves recommendations from the current Snapshot. Load builds a new
// snapshot and swaps it in atomically; callers that already hold a snapshot
// keep using it until they are done.
type Engine struct {
	opts    Options
	logger  *logrus.Logger
	current atomic.Pointer[Snapshot]

	// mu serialises rebuilds
	mu      sync.Mutex
	version uint64
}

func New(opts Options, logger *logrus.Logger) *Engine {
	e := &Engine{
		opts:   opts,
		logger: logger,
	}
	e.current.Store(NewSnapshot(nil, nil, opts))
	return e
}

// Load rebuilds every matrix from movies and ratings and publishes the
// result. It returns the published snapshot.
func (e *Engine) Load(movies []models.Movie, ratings []models.Rating) *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := NewSnapshot(movies, ratings, e.opts)
	e.version++
	snap.version = e.version
	e.current.Store(snap)

	e.logger.WithFields(logrus.Fields{
		"version":     snap.version,
		"movies":      len(snap.movies),
		"users":       len(snap.matrix.Users()),
		"ratings":     snap.ratingCount,
		"duration_ms": snap.buildDuration.Milliseconds(),
	}).Info("Recommendation matrices rebuilt")

	return snap
}

// Snapshot returns the snapshot new requests should use.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) ContentBased(movieID, n int) []models.Recommendation {
	return e.Snapshot().ContentBased(movieID, n)
}

func (e *Engine) ItemBased(movieID, n int) []models.Recommendation {
	return e.Snapshot().ItemBased(movieID, n)
}

func (e *Engine) UserBased(userID, n int) []models.Recommendation {
	return e.Snapshot().UserBased(userID, n)
}

func (e *Engine) Popular(n int) []models.Recommendation {
	return e.Snapshot().Popular(n)
}

func (e *Engine) Hybrid(userID int, movieID *int, n int) []models.Recommendation {
	return e.Snapshot().Hybrid(userID, movieID, n)
}

func (e *Engine) Personalized(userID, n int) models.PersonalizedResult {
	return e.Snapshot().Personalized(userID, n)
}
