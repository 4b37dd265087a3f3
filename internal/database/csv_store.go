package database

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/pkg/models"
)

var (
	ratingsHeader = []string{"userId", "movieId", "rating", "timestamp"}
	tagsHeader    = []string{"userId", "movieId", "tag", "timestamp"}
)

// CSVPaths locates the MovieLens files. Users, Tags and Links are optional.
type CSVPaths struct {
	Movies  string
	Ratings string
	Users   string
	Tags    string
	Links   string
}

// CSVStore reads MovieLens style files: movies.csv (movieId,title,genres),
// ratings.csv (userId,movieId,rating,timestamp), tags.csv
// (userId,movieId,tag,timestamp), links.csv (movieId,imdbId,tmdbId) and an
// optional users.csv (userId,username,...). New ratings and tags are
// appended; deletes rewrite ratings.csv.
type CSVStore struct {
	paths  CSVPaths
	logger *logrus.Logger

	mu sync.Mutex // guards writes to the ratings and tags files
}

func NewCSVStore(paths CSVPaths, logger *logrus.Logger) *CSVStore {
	return &CSVStore{
		paths:  paths,
		logger: logger,
	}
}

func (s *CSVStore) LoadMovies(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	err := s.readRows(s.paths.Movies, 3, func(line int, row []string) {
		id, err := strconv.Atoi(row[0])
		if err != nil {
			s.skip(s.paths.Movies, line, err)
			return
		}
		movies = append(movies, models.Movie{ID: id, Title: row[1], Genres: ParseGenres(row[2])})
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (s *CSVStore) LoadRatings(ctx context.Context) ([]models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ratings []models.Rating
	err := s.readRows(s.paths.Ratings, 3, func(line int, row []string) {
		r, err := parseRating(row)
		if err != nil {
			s.skip(s.paths.Ratings, line, err)
			return
		}
		ratings = append(ratings, r)
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// LoadUsers returns no users when users.csv is absent.
func (s *CSVStore) LoadUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.readOptional(s.paths.Users, 1, func(line int, row []string) {
		id, err := strconv.Atoi(row[0])
		if err != nil {
			s.skip(s.paths.Users, line, err)
			return
		}
		u := models.User{ID: id}
		if len(row) > 1 {
			u.Username = row[1]
		}
		users = append(users, u)
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// LoadTags returns no tags when tags.csv is absent.
func (s *CSVStore) LoadTags(ctx context.Context) ([]models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tags []models.Tag
	err := s.readOptional(s.paths.Tags, 3, func(line int, row []string) {
		t, err := parseTag(row)
		if err != nil {
			s.skip(s.paths.Tags, line, err)
			return
		}
		tags = append(tags, t)
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// LoadLinks returns no links when links.csv is absent. A blank id column
// stays zero.
func (s *CSVStore) LoadLinks(ctx context.Context) ([]models.Links, error) {
	var links []models.Links
	err := s.readOptional(s.paths.Links, 2, func(line int, row []string) {
		l, err := parseLinks(row)
		if err != nil {
			s.skip(s.paths.Links, line, err)
			return
		}
		links = append(links, l)
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (s *CSVStore) AddRating(ctx context.Context, rating models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := appendRow(s.paths.Ratings, ratingsHeader, []string{
		strconv.Itoa(rating.UserID),
		strconv.Itoa(rating.MovieID),
		strconv.FormatFloat(rating.Score, 'f', -1, 64),
		strconv.FormatInt(rating.Timestamp, 10),
	})
	if err != nil {
		return fmt.Errorf("failed to append rating: %w", err)
	}
	return nil
}

func (s *CSVStore) AddTag(ctx context.Context, tag models.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := appendRow(s.paths.Tags, tagsHeader, []string{
		strconv.Itoa(tag.UserID),
		strconv.Itoa(tag.MovieID),
		tag.Tag,
		strconv.FormatInt(tag.Timestamp, 10),
	})
	if err != nil {
		return fmt.Errorf("failed to append tag: %w", err)
	}
	return nil
}

// DeleteRating rewrites ratings.csv without the pair's rows. Rows that do
// not parse are kept as they are.
func (s *CSVStore) DeleteRating(ctx context.Context, userID, movieID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := rewriteRows(s.paths.Ratings, func(row []string) bool {
		r, err := parseRating(row)
		return err != nil || r.UserID != userID || r.MovieID != movieID
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete rating: %w", err)
	}
	if removed == 0 {
		return 0, ErrNotFound
	}
	return removed, nil
}

// readOptional is readRows for files that may be unset or absent.
func (s *CSVStore) readOptional(path string, minFields int, fn func(line int, row []string)) error {
	if path == "" {
		return nil
	}
	err := s.readRows(path, minFields, fn)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// readRows calls fn for every data row with at least minFields columns.
// The header row is skipped; malformed rows are logged and skipped.
func (s *CSVStore) readRows(path string, minFields int, fn func(line int, row []string)) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				s.skip(path, line, err)
				continue
			}
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if line == 1 {
			continue
		}
		if len(row) < minFields {
			s.skip(path, line, fmt.Errorf("expected %d fields, got %d", minFields, len(row)))
			continue
		}
		fn(line, row)
	}
}

func (s *CSVStore) skip(path string, line int, err error) {
	s.logger.WithFields(logrus.Fields{
		"file": path,
		"line": line,
	}).WithError(err).Warn("Skipping malformed row")
}

// appendRow appends one record, writing header first when the file is new
// or empty.
func appendRow(path string, header, row []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		w.Write(header)
	}
	w.Write(row)
	w.Flush()
	return w.Error()
}

// rewriteRows drops the data rows keep rejects and replaces path
// atomically. The file is left untouched when nothing is dropped.
func rewriteRows(path string, keep func(row []string) bool) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	f.Close()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	kept := records[:1]
	for _, row := range records[1:] {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(kept); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}
	return removed, nil
}

func parseRating(row []string) (models.Rating, error) {
	userID, err := strconv.Atoi(row[0])
	if err != nil {
		return models.Rating{}, fmt.Errorf("invalid userId: %w", err)
	}
	movieID, err := strconv.Atoi(row[1])
	if err != nil {
		return models.Rating{}, fmt.Errorf("invalid movieId: %w", err)
	}
	score, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return models.Rating{}, fmt.Errorf("invalid rating: %w", err)
	}
	ts, err := parseTimestamp(row, 3)
	if err != nil {
		return models.Rating{}, err
	}
	return models.Rating{UserID: userID, MovieID: movieID, Score: score, Timestamp: ts}, nil
}

func parseTag(row []string) (models.Tag, error) {
	userID, err := strconv.Atoi(row[0])
	if err != nil {
		return models.Tag{}, fmt.Errorf("invalid userId: %w", err)
	}
	movieID, err := strconv.Atoi(row[1])
	if err != nil {
		return models.Tag{}, fmt.Errorf("invalid movieId: %w", err)
	}
	text := strings.TrimSpace(row[2])
	if text == "" {
		return models.Tag{}, fmt.Errorf("empty tag")
	}
	ts, err := parseTimestamp(row, 3)
	if err != nil {
		return models.Tag{}, err
	}
	return models.Tag{UserID: userID, MovieID: movieID, Tag: text, Timestamp: ts}, nil
}

func parseLinks(row []string) (models.Links, error) {
	movieID, err := strconv.Atoi(row[0])
	if err != nil {
		return models.Links{}, fmt.Errorf("invalid movieId: %w", err)
	}
	l := models.Links{MovieID: movieID}
	if l.IMDbID, err = optionalInt(row, 1); err != nil {
		return models.Links{}, fmt.Errorf("invalid imdbId: %w", err)
	}
	if l.TMDbID, err = optionalInt(row, 2); err != nil {
		return models.Links{}, fmt.Errorf("invalid tmdbId: %w", err)
	}
	return l, nil
}

func parseTimestamp(row []string, col int) (int64, error) {
	if len(row) <= col || row[col] == "" {
		return 0, nil
	}
	ts, err := strconv.ParseInt(row[col], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp: %w", err)
	}
	return ts, nil
}

func optionalInt(row []string, col int) (int, error) {
	if len(row) <= col || strings.TrimSpace(row[col]) == "" {
		return 0, nil
	}
	return strconv.Atoi(strings.TrimSpace(row[col]))
}
