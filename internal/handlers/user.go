package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/services"
)

type UserHandler struct {
	logger  *logrus.Logger
	catalog services.CatalogServiceInterface
}

func NewUserHandler(logger *logrus.Logger, catalog services.CatalogServiceInterface) *UserHandler {
	return &UserHandler{
		logger:  logger,
		catalog: catalog,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format")
		return
	}

	profile, err := h.catalog.UserProfile(userID)
	if err != nil {
		respondServiceError(c, h.logger, err, "get user profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) GetRatings(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format")
		return
	}

	ratings, err := h.catalog.UserRatings(userID)
	if err != nil {
		respondServiceError(c, h.logger, err, "get user ratings")
		return
	}
	c.JSON(http.StatusOK, ratings)
}
