package handlers

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/temcen/movierec/internal/engine"
	"github.com/temcen/movierec/internal/services"
	"github.com/temcen/movierec/pkg/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) response(args mock.Arguments) (*models.RecommendationResponse, error) {
	resp, _ := args.Get(0).(*models.RecommendationResponse)
	return resp, args.Error(1)
}

func (m *MockRecommendationService) ContentBased(ctx context.Context, movieID, n int) (*models.RecommendationResponse, error) {
	return m.response(m.Called(ctx, movieID, n))
}

func (m *MockRecommendationService) ItemBased(ctx context.Context, movieID, n int) (*models.RecommendationResponse, error) {
	return m.response(m.Called(ctx, movieID, n))
}

func (m *MockRecommendationService) Collaborative(ctx context.Context, userID, n int) (*models.RecommendationResponse, error) {
	return m.response(m.Called(ctx, userID, n))
}

func (m *MockRecommendationService) Popular(ctx context.Context, n int) (*models.RecommendationResponse, error) {
	return m.response(m.Called(ctx, n))
}

func (m *MockRecommendationService) Hybrid(ctx context.Context, userID int, movieID *int, n int) (*models.RecommendationResponse, error) {
	return m.response(m.Called(ctx, userID, movieID, n))
}

func (m *MockRecommendationService) Personalized(ctx context.Context, userID, n int) (*models.PersonalizedResponse, error) {
	args := m.Called(ctx, userID, n)
	resp, _ := args.Get(0).(*models.PersonalizedResponse)
	return resp, args.Error(1)
}

func (m *MockRecommendationService) Compare(ctx context.Context, req models.CompareRequest) (*models.CompareResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.CompareResponse)
	return resp, args.Error(1)
}

func (m *MockRecommendationService) SimilarUsers(ctx context.Context, userID, n int) (*models.SimilarUsersResponse, error) {
	args := m.Called(ctx, userID, n)
	resp, _ := args.Get(0).(*models.SimilarUsersResponse)
	return resp, args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Movie(movieID int) (*models.MovieDetails, error) {
	args := m.Called(movieID)
	resp, _ := args.Get(0).(*models.MovieDetails)
	return resp, args.Error(1)
}

func (m *MockCatalogService) Search(query string, limit int) models.MovieSearchResponse {
	return m.Called(query, limit).Get(0).(models.MovieSearchResponse)
}

func (m *MockCatalogService) Genres() models.GenresResponse {
	return m.Called().Get(0).(models.GenresResponse)
}

func (m *MockCatalogService) ByGenre(genre string, limit int) []models.Movie {
	return m.Called(genre, limit).Get(0).([]models.Movie)
}

func (m *MockCatalogService) UserProfile(userID int) (*models.UserProfile, error) {
	args := m.Called(userID)
	resp, _ := args.Get(0).(*models.UserProfile)
	return resp, args.Error(1)
}

func (m *MockCatalogService) UserRatings(userID int) (*models.UserRatingsResponse, error) {
	args := m.Called(userID)
	resp, _ := args.Get(0).(*models.UserRatingsResponse)
	return resp, args.Error(1)
}

func (m *MockCatalogService) List(page, perPage int) models.MovieListResponse {
	return m.Called(page, perPage).Get(0).(models.MovieListResponse)
}

func (m *MockCatalogService) MovieRatings(movieID, page, perPage int) (*models.MovieRatingsResponse, error) {
	args := m.Called(movieID, page, perPage)
	resp, _ := args.Get(0).(*models.MovieRatingsResponse)
	return resp, args.Error(1)
}

func (m *MockCatalogService) UserTags(userID, page, perPage int) (*models.UserTagsResponse, error) {
	args := m.Called(userID, page, perPage)
	resp, _ := args.Get(0).(*models.UserTagsResponse)
	return resp, args.Error(1)
}

func (m *MockCatalogService) MovieTags(movieID, page, perPage int) (*models.MovieTagsResponse, error) {
	args := m.Called(movieID, page, perPage)
	resp, _ := args.Get(0).(*models.MovieTagsResponse)
	return resp, args.Error(1)
}

func (m *MockCatalogService) PopularTags(n int) models.PopularTagsResponse {
	return m.Called(n).Get(0).(models.PopularTagsResponse)
}

func (m *MockCatalogService) Status() models.EngineStatus {
	return m.Called().Get(0).(models.EngineStatus)
}

type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) AddRating(ctx context.Context, req models.CreateRatingRequest) (*models.CreateRatingResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.CreateRatingResponse)
	return resp, args.Error(1)
}

func (m *MockRatingService) DeleteRating(ctx context.Context, userID, movieID int) (*models.DeleteRatingResponse, error) {
	args := m.Called(ctx, userID, movieID)
	resp, _ := args.Get(0).(*models.DeleteRatingResponse)
	return resp, args.Error(1)
}

func (m *MockRatingService) AddTag(ctx context.Context, req models.CreateTagRequest) (*models.CreateTagResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.CreateTagResponse)
	return resp, args.Error(1)
}

type MockRebuilder struct {
	mock.Mock
}

func (m *MockRebuilder) Rebuild(ctx context.Context) (*engine.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(*engine.Snapshot)
	return snap, args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) CheckHealth(ctx context.Context) *services.HealthStatus {
	return m.Called(ctx).Get(0).(*services.HealthStatus)
}
