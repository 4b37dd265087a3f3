package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/internal/database"
	"github.com/temcen/movierec/internal/engine"
	"github.com/temcen/movierec/pkg/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testRecommendationConfig() config.RecommendationConfig {
	return config.RecommendationConfig{
		MinRatings:        1,
		DefaultCount:      10,
		MaxCount:          100,
		MaxCompareCount:   50,
		TopSimilarUsers:   50,
		MinUserSimilarity: 0.1,
		Oversample:        2,
		AnchorMinRatings:  5,
		HybridWeights:     config.DefaultHybridWeights(),
		CacheTTL:          time.Minute,
	}
}

func fixtureMovies() []models.Movie {
	return []models.Movie{
		{ID: 1, Title: "Toy Story (1995)", Genres: []string{"Adventure", "Animation", "Children"}},
		{ID: 2, Title: "Jumanji (1995)", Genres: []string{"Adventure", "Children", "Fantasy"}},
		{ID: 3, Title: "Heat (1995)", Genres: []string{"Action", "Crime", "Thriller"}},
		{ID: 4, Title: "Amélie (Fabuleux destin d'Amélie Poulain, Le) (2001)", Genres: []string{"Comedy", "Romance"}},
		{ID: 5, Title: "Casino (1995)", Genres: []string{"Crime", "Drama"}},
	}
}

func fixtureRatings() []models.Rating {
	return []models.Rating{
		{UserID: 1, MovieID: 1, Score: 5, Timestamp: 100},
		{UserID: 1, MovieID: 2, Score: 4, Timestamp: 200},
		{UserID: 1, MovieID: 3, Score: 1, Timestamp: 300},
		{UserID: 2, MovieID: 1, Score: 4, Timestamp: 100},
		{UserID: 2, MovieID: 2, Score: 5, Timestamp: 150},
		{UserID: 2, MovieID: 5, Score: 3, Timestamp: 160},
		{UserID: 3, MovieID: 3, Score: 5, Timestamp: 100},
		{UserID: 3, MovieID: 5, Score: 4, Timestamp: 110},
		{UserID: 4, MovieID: 1, Score: 4.5, Timestamp: 100},
		{UserID: 4, MovieID: 4, Score: 4, Timestamp: 120},
	}
}

// fakeSource is an in-memory DataSource.
type fakeSource struct {
	mu         sync.Mutex
	movies     []models.Movie
	ratings    []models.Rating
	users      []models.User
	tags       []models.Tag
	links      []models.Links
	moviesErr  error
	ratingsErr error
	addErr     error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		movies:  fixtureMovies(),
		ratings: fixtureRatings(),
		users: []models.User{
			{ID: 1, Username: "ann"}, {ID: 2, Username: "bob"}, {ID: 3, Username: "cat"},
			{ID: 4, Username: "dan"}, {ID: 9, Username: "newcomer"},
		},
		tags: []models.Tag{
			{UserID: 1, MovieID: 1, Tag: "Pixar", Timestamp: 100},
			{UserID: 2, MovieID: 1, Tag: "pixar ", Timestamp: 200},
			{UserID: 2, MovieID: 1, Tag: "toys", Timestamp: 300},
			{UserID: 3, MovieID: 3, Tag: "heist", Timestamp: 150},
		},
		links: []models.Links{
			{MovieID: 1, IMDbID: 114709, TMDbID: 862},
			{MovieID: 2, IMDbID: 113497},
		},
	}
}

func (f *fakeSource) LoadMovies(ctx context.Context) ([]models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Movie(nil), f.movies...), f.moviesErr
}

func (f *fakeSource) LoadRatings(ctx context.Context) ([]models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ratingsErr != nil {
		return nil, f.ratingsErr
	}
	return append([]models.Rating(nil), f.ratings...), nil
}

func (f *fakeSource) LoadUsers(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.User(nil), f.users...), nil
}

func (f *fakeSource) AddRating(ctx context.Context, rating models.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.ratings = append(f.ratings, rating)
	return nil
}

func (f *fakeSource) LoadTags(ctx context.Context) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Tag(nil), f.tags...), nil
}

func (f *fakeSource) LoadLinks(ctx context.Context) ([]models.Links, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Links(nil), f.links...), nil
}

func (f *fakeSource) DeleteRating(ctx context.Context, userID, movieID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.ratings[:0:0]
	for _, r := range f.ratings {
		if r.UserID != userID || r.MovieID != movieID {
			kept = append(kept, r)
		}
	}
	removed := len(f.ratings) - len(kept)
	if removed == 0 {
		return 0, database.ErrNotFound
	}
	f.ratings = kept
	return removed, nil
}

func (f *fakeSource) AddTag(ctx context.Context, tag models.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.tags = append(f.tags, tag)
	return nil
}

// memoryCache is a ResultCache that round-trips through JSON like Redis.
type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	data, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = data
	return nil
}

type fakePublisher struct {
	err       error
	published []models.Rating
	deleted   [][2]int
	tags      []models.Tag
}

func (p *fakePublisher) PublishRating(ctx context.Context, rating models.Rating) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, rating)
	return nil
}

func (p *fakePublisher) PublishRatingDeleted(ctx context.Context, userID, movieID int) error {
	if p.err != nil {
		return p.err
	}
	p.deleted = append(p.deleted, [2]int{userID, movieID})
	return nil
}

func (p *fakePublisher) PublishTag(ctx context.Context, tag models.Tag) error {
	if p.err != nil {
		return p.err
	}
	p.tags = append(p.tags, tag)
	return nil
}

type fakeExporter struct {
	versions []uint64
	err      error
}

func (e *fakeExporter) Export(ctx context.Context, snap *engine.Snapshot) error {
	e.versions = append(e.versions, snap.Version())
	return e.err
}

var errBoom = errors.New("boom")

// testStack wires the services over a fake source and loads it once.
type testStack struct {
	source    *fakeSource
	engine    *engine.Engine
	metrics   *Metrics
	catalog   *CatalogService
	rebuilder *Rebuilder
	recs      *RecommendationService
}

func newTestStack(t *testing.T, cache ResultCache, exporter SnapshotExporter) *testStack {
	t.Helper()
	logger := quietLogger()
	cfg := testRecommendationConfig()

	st := &testStack{source: newFakeSource()}
	st.engine = engine.New(engine.OptionsFromConfig(cfg), logger)
	st.metrics = NewMetrics(prometheus.NewRegistry())
	st.catalog = NewCatalogService(st.engine, logger)
	st.rebuilder = NewRebuilder(st.source, st.engine, st.catalog, exporter, st.metrics, logger)
	st.recs = NewRecommendationService(st.engine, st.catalog, cache, st.metrics, cfg, logger)

	_, err := st.rebuilder.Rebuild(context.Background())
	require.NoError(t, err)
	return st
}
