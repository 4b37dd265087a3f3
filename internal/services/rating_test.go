package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/movierec/pkg/models"
)

func newRatingService(st *testStack, publisher RatingPublisher) *RatingService {
	svc := NewRatingService(st.source, st.engine, st.catalog, publisher, st.rebuilder, st.metrics, quietLogger())
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

func TestValidScore(t *testing.T) {
	for _, score := range []float64{0.5, 1, 2.5, 4.5, 5} {
		assert.True(t, validScore(score), "%v", score)
	}
	for _, score := range []float64{0, 0.25, 3.3, 5.5, -1} {
		assert.False(t, validScore(score), "%v", score)
	}
}

func TestRatingService_AddRating(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects off-scale rating", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		_, err := newRatingService(st, nil).AddRating(ctx, models.CreateRatingRequest{UserID: 1, MovieID: 4, Rating: 3.3})
		assert.ErrorIs(t, err, ErrInvalidRating)
	})

	t.Run("rejects unknown movie", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		_, err := newRatingService(st, nil).AddRating(ctx, models.CreateRatingRequest{UserID: 1, MovieID: 404, Rating: 3})
		assert.ErrorIs(t, err, ErrMovieNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		st.source.addErr = errBoom
		_, err := newRatingService(st, nil).AddRating(ctx, models.CreateRatingRequest{UserID: 1, MovieID: 4, Rating: 3})
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("rebuilds inline without publisher", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		resp, err := newRatingService(st, nil).AddRating(ctx, models.CreateRatingRequest{UserID: 9, MovieID: 4, Rating: 4.5})
		require.NoError(t, err)

		assert.Equal(t, RebuildCompleted, resp.Rebuild)
		assert.Equal(t, models.Rating{UserID: 9, MovieID: 4, Score: 4.5, Timestamp: 1700000000}, resp.Rating)
		assert.Equal(t, uint64(2), st.engine.Snapshot().Version())

		ratings, err := st.catalog.UserRatings(9)
		require.NoError(t, err)
		assert.Equal(t, 1, ratings.Total)
	})

	t.Run("queues when published", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		publisher := &fakePublisher{}
		resp, err := newRatingService(st, publisher).AddRating(ctx, models.CreateRatingRequest{UserID: 1, MovieID: 4, Rating: 2})
		require.NoError(t, err)

		assert.Equal(t, RebuildQueued, resp.Rebuild)
		assert.Len(t, publisher.published, 1)
		assert.Equal(t, uint64(1), st.engine.Snapshot().Version())
	})

	t.Run("falls back to inline rebuild when publish fails", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		resp, err := newRatingService(st, &fakePublisher{err: errBoom}).AddRating(ctx, models.CreateRatingRequest{UserID: 1, MovieID: 4, Rating: 2})
		require.NoError(t, err)

		assert.Equal(t, RebuildCompleted, resp.Rebuild)
		assert.Equal(t, uint64(2), st.engine.Snapshot().Version())
	})

	t.Run("rebuild failure still accepts the rating", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		st.source.moviesErr = errBoom
		resp, err := newRatingService(st, nil).AddRating(ctx, models.CreateRatingRequest{UserID: 1, MovieID: 4, Rating: 2})
		require.NoError(t, err)

		assert.Equal(t, RebuildFailed, resp.Rebuild)
		assert.Len(t, st.source.ratings, len(fixtureRatings())+1)
	})
}

func TestRatingService_DeleteRating(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown pair", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		_, err := newRatingService(st, nil).DeleteRating(ctx, 1, 5)
		assert.ErrorIs(t, err, ErrRatingNotFound)
		assert.Equal(t, uint64(1), st.engine.Snapshot().Version())
	})

	t.Run("rebuilds inline without publisher", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		resp, err := newRatingService(st, nil).DeleteRating(ctx, 1, 3)
		require.NoError(t, err)

		assert.Equal(t, &models.DeleteRatingResponse{UserID: 1, MovieID: 3, Removed: 1, Rebuild: RebuildCompleted}, resp)
		assert.Equal(t, uint64(2), st.engine.Snapshot().Version())
		assert.Equal(t, 9, st.engine.Snapshot().Status().Ratings)

		ratings, err := st.catalog.UserRatings(1)
		require.NoError(t, err)
		assert.Equal(t, 2, ratings.Total)
	})

	t.Run("queues when published", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		publisher := &fakePublisher{}
		resp, err := newRatingService(st, publisher).DeleteRating(ctx, 2, 5)
		require.NoError(t, err)

		assert.Equal(t, RebuildQueued, resp.Rebuild)
		assert.Equal(t, [][2]int{{2, 5}}, publisher.deleted)
		assert.Equal(t, uint64(1), st.engine.Snapshot().Version())
	})
}

func TestRatingService_AddTag(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects blank tag", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		_, err := newRatingService(st, nil).AddTag(ctx, models.CreateTagRequest{UserID: 1, MovieID: 1, Tag: "   "})
		assert.ErrorIs(t, err, ErrInvalidTag)
	})

	t.Run("rejects unknown movie", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		_, err := newRatingService(st, nil).AddTag(ctx, models.CreateTagRequest{UserID: 1, MovieID: 404, Tag: "x"})
		assert.ErrorIs(t, err, ErrMovieNotFound)
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		_, err := newRatingService(st, nil).AddTag(ctx, models.CreateTagRequest{UserID: 77, MovieID: 1, Tag: "x"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("stores trimmed tag and rebuilds", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		resp, err := newRatingService(st, nil).AddTag(ctx, models.CreateTagRequest{UserID: 9, MovieID: 5, Tag: "  mob  "})
		require.NoError(t, err)

		assert.Equal(t, models.Tag{UserID: 9, MovieID: 5, Tag: "mob", Timestamp: 1700000000}, resp.Tag)
		assert.Equal(t, "Casino (1995)", resp.MovieTitle)
		assert.Equal(t, RebuildCompleted, resp.Rebuild)

		tags, err := st.catalog.MovieTags(5, 1, 0)
		require.NoError(t, err)
		require.Len(t, tags.Tags, 1)
		assert.Equal(t, "mob", tags.Tags[0].Tag)
	})

	t.Run("queues when published", func(t *testing.T) {
		st := newTestStack(t, nil, nil)
		publisher := &fakePublisher{}
		resp, err := newRatingService(st, publisher).AddTag(ctx, models.CreateTagRequest{UserID: 1, MovieID: 2, Tag: "jungle"})
		require.NoError(t, err)

		assert.Equal(t, RebuildQueued, resp.Rebuild)
		require.Len(t, publisher.tags, 1)
		assert.Equal(t, "jungle", publisher.tags[0].Tag)
	})
}
