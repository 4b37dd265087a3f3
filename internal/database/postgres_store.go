package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/temcen/movierec/pkg/models"
)

// Querier is the subset of pgxpool.Pool the store uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PostgresStore reads the catalog from the movies, ratings, users, tags and
// links tables.
// Genres are stored in MovieLens pipe-delimited form.
type PostgresStore struct {
	db Querier
}

func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) LoadMovies(ctx context.Context) ([]models.Movie, error) {
	rows, err := s.db.Query(ctx, `
		SELECT movie_id, title, genres
		FROM movies
		ORDER BY movie_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		var (
			m      models.Movie
			genres string
		)
		if err := rows.Scan(&m.ID, &m.Title, &genres); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		m.Genres = ParseGenres(genres)
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movies: %w", err)
	}
	return movies, nil
}

// LoadRatings returns ratings in insertion order so the newest duplicate of
// a pair comes last.
func (s *PostgresStore) LoadRatings(ctx context.Context) ([]models.Rating, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, movie_id, rating, rated_at
		FROM ratings
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.UserID, &r.MovieID, &r.Score, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ratings: %w", err)
	}
	return ratings, nil
}

func (s *PostgresStore) LoadUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, username
		FROM users
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) AddRating(ctx context.Context, rating models.Rating) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ratings (user_id, movie_id, rating, rated_at)
		VALUES ($1, $2, $3, $4)`,
		rating.UserID, rating.MovieID, rating.Score, rating.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert rating: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteRating(ctx context.Context, userID, movieID int) (int, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM ratings
		WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) LoadTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, movie_id, tag, tagged_at
		FROM tags
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.UserID, &t.MovieID, &t.Tag, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

func (s *PostgresStore) AddTag(ctx context.Context, tag models.Tag) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO tags (user_id, movie_id, tag, tagged_at)
		VALUES ($1, $2, $3, $4)`,
		tag.UserID, tag.MovieID, tag.Tag, tag.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

// LoadLinks maps NULL ids to zero.
func (s *PostgresStore) LoadLinks(ctx context.Context) ([]models.Links, error) {
	rows, err := s.db.Query(ctx, `
		SELECT movie_id, imdb_id, tmdb_id
		FROM links
		ORDER BY movie_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []models.Links
	for rows.Next() {
		var (
			l            models.Links
			imdbID, tmdb *int
		)
		if err := rows.Scan(&l.MovieID, &imdbID, &tmdb); err != nil {
			return nil, fmt.Errorf("failed to scan links: %w", err)
		}
		if imdbID != nil {
			l.IMDbID = *imdbID
		}
		if tmdb != nil {
			l.TMDbID = *tmdb
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate links: %w", err)
	}
	return links, nil
}
