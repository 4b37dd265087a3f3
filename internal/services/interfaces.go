package services

import (
	"context"

	"github.com/temcen/movierec/internal/engine"
	"github.com/temcen/movierec/pkg/models"
)

// RecommendationServiceInterface defines the scoring operations exposed over HTTP
type RecommendationServiceInterface interface {
	ContentBased(ctx context.Context, movieID, n int) (*models.RecommendationResponse, error)
	ItemBased(ctx context.Context, movieID, n int) (*models.RecommendationResponse, error)
	Collaborative(ctx context.Context, userID, n int) (*models.RecommendationResponse, error)
	Popular(ctx context.Context, n int) (*models.RecommendationResponse, error)
	Hybrid(ctx context.Context, userID int, movieID *int, n int) (*models.RecommendationResponse, error)
	Personalized(ctx context.Context, userID, n int) (*models.PersonalizedResponse, error)
	Compare(ctx context.Context, req models.CompareRequest) (*models.CompareResponse, error)
	SimilarUsers(ctx context.Context, userID, n int) (*models.SimilarUsersResponse, error)
}

// CatalogServiceInterface defines movie, user and tag lookups
type CatalogServiceInterface interface {
	Movie(movieID int) (*models.MovieDetails, error)
	List(page, perPage int) models.MovieListResponse
	MovieRatings(movieID, page, perPage int) (*models.MovieRatingsResponse, error)
	Search(query string, limit int) models.MovieSearchResponse
	Genres() models.GenresResponse
	ByGenre(genre string, limit int) []models.Movie
	UserProfile(userID int) (*models.UserProfile, error)
	UserRatings(userID int) (*models.UserRatingsResponse, error)
	UserTags(userID, page, perPage int) (*models.UserTagsResponse, error)
	MovieTags(movieID, page, perPage int) (*models.MovieTagsResponse, error)
	PopularTags(n int) models.PopularTagsResponse
	Status() models.EngineStatus
}

// RatingServiceInterface defines rating and tag mutations
type RatingServiceInterface interface {
	AddRating(ctx context.Context, req models.CreateRatingRequest) (*models.CreateRatingResponse, error)
	DeleteRating(ctx context.Context, userID, movieID int) (*models.DeleteRatingResponse, error)
	AddTag(ctx context.Context, req models.CreateTagRequest) (*models.CreateTagResponse, error)
}

// RebuilderInterface defines a full reload of the engine
type RebuilderInterface interface {
	Rebuild(ctx context.Context) (*engine.Snapshot, error)
}

var (
	_ RecommendationServiceInterface = (*RecommendationService)(nil)
	_ CatalogServiceInterface        = (*CatalogService)(nil)
	_ RatingServiceInterface         = (*RatingService)(nil)
	_ RebuilderInterface             = (*Rebuilder)(nil)
)
