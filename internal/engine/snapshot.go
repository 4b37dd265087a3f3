package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/temcen/movierec/pkg/models"
)

// Snapshot is one immutable build of the rating and similarity matrices
// together with the catalog and per-movie statistics. All scoring runs
// against a single snapshot, so concurrent readers need no locking.
type Snapshot struct {
	version       uint64
	builtAt       time.Time
	buildDuration time.Duration
	opts          Options

	movies       map[int]models.Movie
	genres       []string
	stats        map[int]movieStats
	userRatings  map[int][]models.Rating
	movieRatings map[int][]models.Rating
	ratingCount  int

	matrix   *RatingMatrix
	movieSim *SimilarityMatrix
	userSim  *SimilarityMatrix
}

// movieStats is the per-movie aggregate over every rating, duplicates
// included.
type movieStats struct {
	count   int
	sum     float64
	buckets [5]int // star buckets 1..5
}

func (s movieStats) mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

// NewSnapshot builds every derived structure from scratch. The two
// similarity matrices are computed concurrently.
func NewSnapshot(movies []models.Movie, ratings []models.Rating, opts Options) *Snapshot {
	start := time.Now()

	s := &Snapshot{
		opts:         opts,
		movies:       make(map[int]models.Movie, len(movies)),
		stats:        make(map[int]movieStats),
		userRatings:  make(map[int][]models.Rating),
		movieRatings: make(map[int][]models.Rating),
		ratingCount:  len(ratings),
	}

	genreSet := make(map[string]struct{})
	movieIDs := make([]int, 0, len(movies))
	for _, m := range movies {
		if _, seen := s.movies[m.ID]; !seen {
			movieIDs = append(movieIDs, m.ID)
		}
		s.movies[m.ID] = m
		for _, g := range m.Genres {
			genreSet[g] = struct{}{}
		}
	}
	s.genres = make([]string, 0, len(genreSet))
	for g := range genreSet {
		s.genres = append(s.genres, g)
	}
	sort.Strings(s.genres)

	for _, r := range ratings {
		st := s.stats[r.MovieID]
		st.count++
		st.sum += r.Score
		st.buckets[starBucket(r.Score)-1]++
		s.stats[r.MovieID] = st
		s.userRatings[r.UserID] = append(s.userRatings[r.UserID], r)
		s.movieRatings[r.MovieID] = append(s.movieRatings[r.MovieID], r)
	}

	s.matrix = BuildRatingMatrix(ratings, movieIDs)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.movieSim = MovieSimilarity(s.matrix)
	}()
	go func() {
		defer wg.Done()
		s.userSim = UserSimilarity(s.matrix)
	}()
	wg.Wait()

	s.builtAt = time.Now()
	s.buildDuration = s.builtAt.Sub(start)
	return s
}

// starBucket maps a score to the 1..5 bucket used by movie statistics: 5 only
// for a perfect score, otherwise the floor, with everything under 2 in 1.
func starBucket(score float64) int {
	switch {
	case score >= 5:
		return 5
	case score >= 4:
		return 4
	case score >= 3:
		return 3
	case score >= 2:
		return 2
	}
	return 1
}

func (s *Snapshot) Version() uint64 { return s.version }

func (s *Snapshot) Status() models.EngineStatus {
	return models.EngineStatus{
		Version:       s.version,
		Users:         len(s.matrix.Users()),
		Movies:        len(s.movies),
		Ratings:       s.ratingCount,
		BuiltAt:       s.builtAt,
		BuildDuration: s.buildDuration,
	}
}

func (s *Snapshot) Movie(id int) (models.Movie, bool) {
	m, ok := s.movies[id]
	return m, ok
}

// HasUser reports whether the user has at least one rating.
func (s *Snapshot) HasUser(id int) bool {
	return len(s.userRatings[id]) > 0
}

// UserIDs returns every user with at least one rating, ascending.
func (s *Snapshot) UserIDs() []int {
	out := make([]int, len(s.matrix.Users()))
	copy(out, s.matrix.Users())
	return out
}

func (s *Snapshot) Genres() []string {
	out := make([]string, len(s.genres))
	copy(out, s.genres)
	return out
}

// Movies returns the catalog ordered by id.
func (s *Snapshot) Movies() []models.Movie {
	out := make([]models.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UserRatings returns the user's ratings in load order.
func (s *Snapshot) UserRatings(userID int) []models.Rating {
	src := s.userRatings[userID]
	out := make([]models.Rating, len(src))
	copy(out, src)
	return out
}

// MovieRatings returns the movie's ratings in load order.
func (s *Snapshot) MovieRatings(movieID int) []models.Rating {
	src := s.movieRatings[movieID]
	out := make([]models.Rating, len(src))
	copy(out, src)
	return out
}

// record joins a movie id to its metadata and statistics. ok is false when
// the movie has no catalog entry.
func (s *Snapshot) record(movieID int) (models.Recommendation, bool) {
	m, ok := s.movies[movieID]
	if !ok {
		return models.Recommendation{}, false
	}
	rec := models.Recommendation{
		MovieID: m.ID,
		Title:   m.Title,
		Genres:  genresOf(m),
	}
	if st, ok := s.stats[movieID]; ok && st.count > 0 {
		rec.AvgRating = ptr(round(st.mean(), 2))
		rec.RatingCount = st.count
	}
	return rec, true
}

func genresOf(m models.Movie) []string {
	out := make([]string, len(m.Genres))
	copy(out, m.Genres)
	return out
}
