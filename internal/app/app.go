package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/internal/database"
	"github.com/temcen/movierec/internal/handlers"
	"github.com/temcen/movierec/internal/messaging"
	"github.com/temcen/movierec/internal/middleware"
	"github.com/temcen/movierec/internal/services"
	"github.com/temcen/movierec/internal/validation"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	schemas  *validation.SchemaValidator
	router   *gin.Engine

	stopConsumer context.CancelFunc
	consumerDone sync.WaitGroup
}

func New(cfg *config.Config) (*App, error) {
	return newApp(cfg, setupLogger(cfg), prometheus.DefaultRegisterer)
}

func newApp(cfg *config.Config, logger *logrus.Logger, reg prometheus.Registerer) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger,
	}

	// Initialize database connections
	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	// Initialize services
	services, err := services.New(cfg, app.logger, db, reg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = services

	schemas, err := validation.NewSchemaValidator()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load request schemas: %w", err)
	}
	app.schemas = schemas

	// Initialize handlers
	app.handlers = handlers.New(app.logger, services)

	// Setup router
	app.setupRouter()

	return app, nil
}

// Start builds the first snapshot and, with Kafka configured, starts the
// rating event consumer.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.services.Rebuilder.Rebuild(ctx); err != nil {
		return fmt.Errorf("failed to build initial snapshot: %w", err)
	}

	if a.services.MessageBus == nil {
		return nil
	}

	consumerCtx, cancel := context.WithCancel(context.Background())
	a.stopConsumer = cancel
	a.consumerDone.Add(1)
	go func() {
		defer a.consumerDone.Done()
		err := a.services.MessageBus.ConsumeRatings(consumerCtx, func(event messaging.RatingEvent) error {
			return a.services.Rebuilder.HandleRatingEvent(consumerCtx, event)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.WithError(err).Error("Rating consumer stopped")
		}
	}()
	a.logger.Info("Rating event consumer started")

	return nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.stopConsumer != nil {
		a.stopConsumer()
		a.consumerDone.Wait()
	}

	if a.services.MessageBus != nil {
		if err := a.services.MessageBus.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing message bus")
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))
	router.Use(middleware.Security())

	router.GET("/health", a.handlers.Health.Check)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	validate := middleware.NewValidationMiddleware(a.schemas)

	api := router.Group("/api/v1")
	{
		if a.services.RateLimit != nil {
			api.Use(middleware.RateLimit(a.services.RateLimit, a.logger))
		}

		recommendations := api.Group("/recommendations")
		{
			recommendations.GET("/content/:movieId", a.handlers.Recommendation.ContentBased)
			recommendations.GET("/item/:movieId", a.handlers.Recommendation.ItemBased)
			recommendations.GET("/collaborative/:userId", a.handlers.Recommendation.Collaborative)
			recommendations.GET("/popular", a.handlers.Recommendation.Popular)
			recommendations.GET("/hybrid/:userId", a.handlers.Recommendation.Hybrid)
			recommendations.GET("/personalized/:userId", a.handlers.Recommendation.Personalized)
			recommendations.POST("/compare", validate.ValidateCompare(), a.handlers.Recommendation.Compare)
			recommendations.GET("/similar-users/:userId", a.handlers.Recommendation.SimilarUsers)
		}

		users := api.Group("/users")
		{
			users.GET("/:userId/profile", a.handlers.User.GetProfile)
			users.GET("/:userId/ratings", a.handlers.User.GetRatings)
		}

		ratings := api.Group("/ratings")
		{
			ratings.POST("", validate.ValidateRating(), a.handlers.Rating.Create)
			ratings.DELETE("/:userId/:movieId", a.handlers.Rating.Delete)
			ratings.GET("/movie/:movieId", a.handlers.Movie.Ratings)
		}

		tags := api.Group("/tags")
		{
			tags.POST("", validate.ValidateTag(), a.handlers.Tag.Create)
			tags.GET("/popular", a.handlers.Tag.Popular)
			tags.GET("/user/:userId", a.handlers.Tag.ByUser)
			tags.GET("/movie/:movieId", a.handlers.Tag.ByMovie)
		}

		movies := api.Group("/movies")
		{
			movies.GET("", a.handlers.Movie.List)
			movies.GET("/search", a.handlers.Movie.Search)
			movies.GET("/genres", a.handlers.Movie.Genres)
			movies.GET("/genre/:genre", a.handlers.Movie.ByGenre)
			movies.GET("/:movieId", a.handlers.Movie.Get)
			movies.GET("/:movieId/ratings", a.handlers.Movie.Ratings)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/reload", a.handlers.Admin.Reload)
			admin.GET("/engine", a.handlers.Admin.Engine)
		}
	}

	a.router = router
}
