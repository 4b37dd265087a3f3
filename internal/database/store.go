package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/pkg/models"
)

var ErrNotFound = errors.New("not found")

// DataSource supplies the movies, ratings, users, tags and links the engine
// and catalog are built from, and persists rating and tag mutations.
type DataSource interface {
	LoadMovies(ctx context.Context) ([]models.Movie, error)
	LoadRatings(ctx context.Context) ([]models.Rating, error)
	LoadUsers(ctx context.Context) ([]models.User, error)
	LoadTags(ctx context.Context) ([]models.Tag, error)
	LoadLinks(ctx context.Context) ([]models.Links, error)
	// AddRating appends a rating. Earlier ratings for the same pair are
	// kept.
	AddRating(ctx context.Context, rating models.Rating) error
	// DeleteRating removes every rating userID gave movieID and returns how
	// many were removed, or ErrNotFound when there were none.
	DeleteRating(ctx context.Context, userID, movieID int) (int, error)
	AddTag(ctx context.Context, tag models.Tag) error
}

// ParseGenres splits a pipe-delimited genre field. An empty field becomes
// the no-genre sentinel so every movie has at least one label.
func ParseGenres(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return []string{models.NoGenres}
	}
	parts := strings.Split(field, "|")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	if len(genres) == 0 {
		return []string{models.NoGenres}
	}
	return genres
}

// NewDataSource returns the store selected by data.source.
func NewDataSource(cfg *config.Config, db *Database, logger *logrus.Logger) (DataSource, error) {
	switch cfg.Data.Source {
	case "csv":
		return NewCSVStore(CSVPaths{
			Movies:  cfg.Data.MoviesPath,
			Ratings: cfg.Data.RatingsPath,
			Users:   cfg.Data.UsersPath,
			Tags:    cfg.Data.TagsPath,
			Links:   cfg.Data.LinksPath,
		}, logger), nil
	case "postgres":
		if db == nil || db.PG == nil {
			return nil, fmt.Errorf("postgres data source requires database.url")
		}
		return NewPostgresStore(db.PG), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}
