package engine

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/temcen/movierec/pkg/models"
)

// RatingMatrix is a dense users x movies matrix. A cell of 0 means unrated;
// real scores start at 0.5.
type RatingMatrix struct {
	users      []int
	movies     []int
	userIndex  map[int]int
	movieIndex map[int]int
	data       *mat.Dense // nil when there are no users or no movies
}

type cellKey struct {
	user, movie int
}

// BuildRatingMatrix lays out ratings over sorted user ids and the union of
// catalog and rated movie ids. Duplicate (user, movie) ratings are averaged
// into one cell.
func BuildRatingMatrix(ratings []models.Rating, movieIDs []int) *RatingMatrix {
	userSet := make(map[int]struct{})
	movieSet := make(map[int]struct{}, len(movieIDs))
	for _, id := range movieIDs {
		movieSet[id] = struct{}{}
	}

	sums := make(map[cellKey]float64, len(ratings))
	counts := make(map[cellKey]int, len(ratings))
	for _, r := range ratings {
		userSet[r.UserID] = struct{}{}
		movieSet[r.MovieID] = struct{}{}
		k := cellKey{r.UserID, r.MovieID}
		sums[k] += r.Score
		counts[k]++
	}

	rm := &RatingMatrix{
		users:  sortedKeys(userSet),
		movies: sortedKeys(movieSet),
	}
	rm.userIndex = indexOf(rm.users)
	rm.movieIndex = indexOf(rm.movies)

	if len(rm.users) == 0 || len(rm.movies) == 0 {
		return rm
	}

	rm.data = mat.NewDense(len(rm.users), len(rm.movies), nil)
	for k, sum := range sums {
		rm.data.Set(rm.userIndex[k.user], rm.movieIndex[k.movie], sum/float64(counts[k]))
	}
	return rm
}

func (rm *RatingMatrix) Users() []int  { return rm.users }
func (rm *RatingMatrix) Movies() []int { return rm.movies }

func (rm *RatingMatrix) Empty() bool { return rm.data == nil }

func (rm *RatingMatrix) HasUser(userID int) bool {
	_, ok := rm.userIndex[userID]
	return ok && rm.data != nil
}

// At returns the cell for (user, movie), 0 when unrated or unknown.
func (rm *RatingMatrix) At(userID, movieID int) float64 {
	u, ok := rm.userIndex[userID]
	if !ok || rm.data == nil {
		return 0
	}
	m, ok := rm.movieIndex[movieID]
	if !ok {
		return 0
	}
	return rm.data.At(u, m)
}

// userRow is a read-only view of a user's ratings ordered like Movies().
func (rm *RatingMatrix) userRow(userID int) []float64 {
	u, ok := rm.userIndex[userID]
	if !ok || rm.data == nil {
		return nil
	}
	return rm.data.RawRowView(u)
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func indexOf(ids []int) map[int]int {
	index := make(map[int]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return index
}
