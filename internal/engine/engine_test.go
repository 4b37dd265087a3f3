package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/movierec/pkg/models"
)

func TestEngine_Empty(t *testing.T) {
	e := New(DefaultOptions(), quietLogger())

	snap := e.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(0), snap.Version())

	for name, recs := range map[string][]models.Recommendation{
		"content": e.ContentBased(1, 5),
		"item":    e.ItemBased(1, 5),
		"user":    e.UserBased(1, 5),
		"popular": e.Popular(5),
		"hybrid":  e.Hybrid(1, nil, 5),
	} {
		assert.NotNil(t, recs, name)
		assert.Empty(t, recs, name)
	}

	res := e.Personalized(1, 5)
	assert.Equal(t, models.StrategyPopular, res.Strategy)
	assert.Empty(t, res.Recommendations)
}

func TestEngine_LoadSwapsSnapshot(t *testing.T) {
	e := New(optionsWithMinRatings(1), quietLogger())
	movies, ratings := gridFixture()

	first := e.Load(movies, ratings)
	assert.Equal(t, uint64(1), first.Version())
	assert.Same(t, first, e.Snapshot())
	before := first.Popular(10)

	more := append(append([]models.Rating{}, ratings...), rateAll(8, 5, userRange(21, 60)...)...)
	second := e.Load(movies, more)
	assert.Equal(t, uint64(2), second.Version())
	assert.Same(t, second, e.Snapshot())

	// the old snapshot is untouched by the rebuild
	assert.Equal(t, before, first.Popular(10))
	assert.Equal(t, len(ratings), first.Status().Ratings)
	assert.Equal(t, len(more), second.Status().Ratings)
	assert.Equal(t, 60, second.Status().Users)
}

func TestEngine_ConcurrentReadsDuringLoad(t *testing.T) {
	e := New(optionsWithMinRatings(1), quietLogger())
	movies, ratings := gridFixture()
	e.Load(movies, ratings)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(user int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				snap := e.Snapshot()
				assert.Equal(t, snap.Popular(5), snap.Popular(5))
				assert.NotNil(t, e.Personalized(user, 5).Recommendations)
			}
		}(i + 1)
	}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Load(movies, ratings)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(4), e.Snapshot().Version())
}
