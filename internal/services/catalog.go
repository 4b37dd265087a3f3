package services

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/temcen/movierec/internal/engine"
	"github.com/temcen/movierec/pkg/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	defaultPageSize    = 20
	maxPageSize        = 100
	defaultPopularTags = 20
	maxPopularTags     = 100
	tagCloudSize       = 20
)

const (
	imdbURLFormat = "https://www.imdb.com/title/tt%07d/"
	tmdbURLFormat = "https://www.themoviedb.org/movie/%d"
)

// CatalogService answers movie, user and tag lookups against the serving
// snapshot and the directory loaded alongside it.
type CatalogService struct {
	engine *engine.Engine
	logger *logrus.Logger

	dir   atomic.Pointer[directory]
	index atomic.Pointer[titleIndex]
}

// directory is everything loaded next to the ratings that the engine does
// not score on.
type directory struct {
	users       map[int]models.User
	links       map[int]models.Links
	tagsByMovie map[int][]models.Tag
	tagsByUser  map[int][]models.Tag
	popular     []models.TagCount
}

// titleIndex holds folded titles for one snapshot version.
type titleIndex struct {
	version uint64
	movies  []models.Movie
	folded  []string
}

func NewCatalogService(eng *engine.Engine, logger *logrus.Logger) *CatalogService {
	s := &CatalogService{engine: eng, logger: logger}
	s.SetDirectory(nil, nil, nil)
	return s
}

// SetDirectory replaces users, tags and external links in one step.
func (s *CatalogService) SetDirectory(users []models.User, tags []models.Tag, links []models.Links) {
	dir := &directory{
		users:       make(map[int]models.User, len(users)),
		links:       make(map[int]models.Links, len(links)),
		tagsByMovie: make(map[int][]models.Tag),
		tagsByUser:  make(map[int][]models.Tag),
	}
	for _, u := range users {
		dir.users[u.ID] = u
	}
	for _, l := range links {
		dir.links[l.MovieID] = l
	}
	for _, t := range tags {
		dir.tagsByMovie[t.MovieID] = append(dir.tagsByMovie[t.MovieID], t)
		dir.tagsByUser[t.UserID] = append(dir.tagsByUser[t.UserID], t)
	}
	dir.popular = countTags(tags)
	s.dir.Store(dir)
}

// UserExists reports whether the user is in the directory or has rated
// anything in snap.
func (s *CatalogService) UserExists(snap *engine.Snapshot, userID int) bool {
	if _, ok := s.dir.Load().users[userID]; ok {
		return true
	}
	return snap.HasUser(userID)
}

func (s *CatalogService) Movie(movieID int) (*models.MovieDetails, error) {
	snap := s.engine.Snapshot()
	movie, ok := snap.Movie(movieID)
	if !ok {
		return nil, ErrMovieNotFound
	}
	_, year := engine.SplitTitle(movie.Title)
	details := &models.MovieDetails{
		Movie: movie,
		Year:  year,
		Stats: snap.MovieStats(movieID),
	}

	dir := s.dir.Load()
	if l, ok := dir.links[movieID]; ok {
		if l.IMDbID > 0 {
			url := fmt.Sprintf(imdbURLFormat, l.IMDbID)
			details.IMDbURL = &url
		}
		if l.TMDbID > 0 {
			url := fmt.Sprintf(tmdbURLFormat, l.TMDbID)
			details.TMDbURL = &url
		}
	}
	for _, tc := range topTags(countTags(dir.tagsByMovie[movieID]), tagCloudSize) {
		details.Tags = append(details.Tags, tc.Tag)
	}
	return details, nil
}

// List pages through the catalog in id order.
func (s *CatalogService) List(page, perPage int) models.MovieListResponse {
	movies, p := paginate(s.titleIndex().movies, page, perPage)
	return models.MovieListResponse{Movies: movies, Pagination: p}
}

// MovieRatings pages through a movie's ratings, newest first.
func (s *CatalogService) MovieRatings(movieID, page, perPage int) (*models.MovieRatingsResponse, error) {
	snap := s.engine.Snapshot()
	movie, ok := snap.Movie(movieID)
	if !ok {
		return nil, ErrMovieNotFound
	}
	ratings := snap.MovieRatings(movieID)
	sort.SliceStable(ratings, func(i, j int) bool {
		return ratings[i].Timestamp > ratings[j].Timestamp
	})
	ratings, p := paginate(ratings, page, perPage)
	return &models.MovieRatingsResponse{
		MovieID:    movieID,
		Title:      movie.Title,
		Ratings:    ratings,
		Stats:      snap.MovieStats(movieID),
		Pagination: p,
	}, nil
}

// UserTags pages through the tags a user applied, newest first.
func (s *CatalogService) UserTags(userID, page, perPage int) (*models.UserTagsResponse, error) {
	dir := s.dir.Load()
	tags := newestFirst(dir.tagsByUser[userID])
	if len(tags) == 0 && !s.UserExists(s.engine.Snapshot(), userID) {
		return nil, ErrUserNotFound
	}
	tags, p := paginate(tags, page, perPage)
	return &models.UserTagsResponse{UserID: userID, Tags: tags, Pagination: p}, nil
}

// MovieTags pages through a movie's tags, newest first, together with the
// movie's most used tags.
func (s *CatalogService) MovieTags(movieID, page, perPage int) (*models.MovieTagsResponse, error) {
	movie, ok := s.engine.Snapshot().Movie(movieID)
	if !ok {
		return nil, ErrMovieNotFound
	}
	all := s.dir.Load().tagsByMovie[movieID]
	tags, p := paginate(newestFirst(all), page, perPage)
	return &models.MovieTagsResponse{
		MovieID:    movieID,
		Title:      movie.Title,
		Tags:       tags,
		TagCloud:   topTags(countTags(all), tagCloudSize),
		Pagination: p,
	}, nil
}

// PopularTags returns the n most used tags across the catalog.
func (s *CatalogService) PopularTags(n int) models.PopularTagsResponse {
	n = clampLimit(n, defaultPopularTags, maxPopularTags)
	tags := topTags(s.dir.Load().popular, n)
	return models.PopularTagsResponse{Tags: tags, Count: len(tags)}
}

// Search returns movies whose title contains query, ignoring case and
// diacritics, ordered by id.
func (s *CatalogService) Search(query string, limit int) models.MovieSearchResponse {
	limit = clampLimit(limit, defaultSearchLimit, maxSearchLimit)
	resp := models.MovieSearchResponse{Query: query, Movies: []models.Movie{}}

	needle := foldTitle(strings.TrimSpace(query))
	if needle == "" {
		return resp
	}

	idx := s.titleIndex()
	for i, title := range idx.folded {
		if !strings.Contains(title, needle) {
			continue
		}
		resp.Total++
		if len(resp.Movies) < limit {
			resp.Movies = append(resp.Movies, idx.movies[i])
		}
	}
	resp.Limited = resp.Total > len(resp.Movies)
	return resp
}

func (s *CatalogService) titleIndex() *titleIndex {
	snap := s.engine.Snapshot()
	if idx := s.index.Load(); idx != nil && idx.version == snap.Version() {
		return idx
	}

	movies := snap.Movies()
	idx := &titleIndex{
		version: snap.Version(),
		movies:  movies,
		folded:  make([]string, len(movies)),
	}
	for i, m := range movies {
		idx.folded[i] = foldTitle(m.Title)
	}
	s.index.Store(idx)
	return idx
}

func (s *CatalogService) Genres() models.GenresResponse {
	genres := s.engine.Snapshot().Genres()
	return models.GenresResponse{Genres: genres, Total: len(genres)}
}

// ByGenre lists movies tagged with genre, matched case-insensitively.
func (s *CatalogService) ByGenre(genre string, limit int) []models.Movie {
	limit = clampLimit(limit, defaultSearchLimit, maxSearchLimit)
	out := []models.Movie{}
	for _, m := range s.engine.Snapshot().Movies() {
		if len(out) == limit {
			break
		}
		for _, g := range m.Genres {
			if strings.EqualFold(g, genre) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// UserProfile summarises a user's ratings. Known users without ratings get
// an empty profile.
func (s *CatalogService) UserProfile(userID int) (*models.UserProfile, error) {
	snap := s.engine.Snapshot()
	if !s.UserExists(snap, userID) {
		return nil, ErrUserNotFound
	}
	profile, ok := snap.UserProfile(userID)
	if !ok {
		profile = models.UserProfile{
			UserID:             userID,
			FavoriteGenres:     []models.GenreStat{},
			RatingDistribution: map[string]int{},
		}
	}
	return &profile, nil
}

// UserRatings lists a user's ratings, newest first.
func (s *CatalogService) UserRatings(userID int) (*models.UserRatingsResponse, error) {
	snap := s.engine.Snapshot()
	if !s.UserExists(snap, userID) {
		return nil, ErrUserNotFound
	}
	ratings := snap.UserRatings(userID)
	sort.SliceStable(ratings, func(i, j int) bool {
		return ratings[i].Timestamp > ratings[j].Timestamp
	})
	return &models.UserRatingsResponse{
		UserID:  userID,
		Ratings: ratings,
		Total:   len(ratings),
	}, nil
}

func (s *CatalogService) Status() models.EngineStatus {
	return s.engine.Snapshot().Status()
}

// foldTitle strips combining marks and case-folds s. Casers are stateful,
// so each call gets its own.
func foldTitle(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// countTags groups tags by their trimmed lower-case text, most used first
// and ties alphabetical.
func countTags(tags []models.Tag) []models.TagCount {
	counts := make(map[string]int)
	for _, t := range tags {
		key := strings.ToLower(strings.TrimSpace(t.Tag))
		if key == "" {
			continue
		}
		counts[key]++
	}
	out := make([]models.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, models.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func topTags(counts []models.TagCount, n int) []models.TagCount {
	out := make([]models.TagCount, min(n, len(counts)))
	copy(out, counts)
	return out
}

func newestFirst(tags []models.Tag) []models.Tag {
	out := make([]models.Tag, len(tags))
	copy(out, tags)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// paginate cuts one page out of items. Pages start at 1; a page past the
// end is empty.
func paginate[T any](items []T, page, perPage int) ([]T, models.Pagination) {
	perPage = clampLimit(perPage, defaultPageSize, maxPageSize)
	if page < 1 {
		page = 1
	}
	total := len(items)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, models.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
