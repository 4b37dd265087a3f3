package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/services"
	"github.com/temcen/movierec/pkg/models"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service sentinels to HTTP statuses. Anything
// else is logged and reported as a 500.
func respondServiceError(c *gin.Context, logger *logrus.Logger, err error, action string) {
	switch {
	case errors.Is(err, services.ErrMovieNotFound):
		respondError(c, http.StatusNotFound, "MOVIE_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrRatingNotFound):
		respondError(c, http.StatusNotFound, "RATING_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrInvalidRating):
		respondError(c, http.StatusBadRequest, "INVALID_RATING", err.Error())
	case errors.Is(err, services.ErrInvalidTag):
		respondError(c, http.StatusBadRequest, "INVALID_TAG", err.Error())
	default:
		logger.WithError(err).Errorf("Failed to %s", action)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action)
	}
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, param string) (int, bool) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// pageParams binds page and per_page. Missing values are left zero for the
// service defaults; anything else that is not a positive integer is a 400.
func pageParams(c *gin.Context, v *validator.Validate) (models.PageRequest, bool) {
	var req models.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAGINATION", "page and per_page must be integers")
		return req, false
	}
	if err := v.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAGINATION", "page and per_page must be at least 1")
		return req, false
	}
	return req, true
}

func deref(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
