package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Movie          *MovieHandler
	User           *UserHandler
	Rating         *RatingHandler
	Tag            *TagHandler
	Admin          *AdminHandler
}

func New(logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Recommendation: NewRecommendationHandler(services.Recommendations, logger),
		Movie:          NewMovieHandler(logger, services.Catalog),
		User:           NewUserHandler(logger, services.Catalog),
		Rating:         NewRatingHandler(logger, services.Ratings),
		Tag:            NewTagHandler(logger, services.Catalog, services.Ratings),
		Admin:          NewAdminHandler(logger, services.Rebuilder, services.Catalog),
	}
}
