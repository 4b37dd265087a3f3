package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/services"
	"github.com/temcen/movierec/pkg/models"
)

type RatingHandler struct {
	logger    *logrus.Logger
	ratings   services.RatingServiceInterface
	validator *validator.Validate
}

func NewRatingHandler(logger *logrus.Logger, ratings services.RatingServiceInterface) *RatingHandler {
	return &RatingHandler{
		logger:    logger,
		ratings:   ratings,
		validator: validator.New(),
	}
}

func (h *RatingHandler) Create(c *gin.Context) {
	var request models.CreateRatingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Warn("Invalid JSON in rating request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_JSON",
				"message": "Invalid JSON format",
				"details": err.Error(),
			},
		})
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Rating validation failed",
				"details": err.Error(),
			},
		})
		return
	}

	resp, err := h.ratings.AddRating(c.Request.Context(), request)
	if err != nil {
		respondServiceError(c, h.logger, err, "record rating")
		return
	}

	status := http.StatusCreated
	if resp.Rebuild == services.RebuildQueued {
		status = http.StatusAccepted
	}
	c.JSON(status, resp)
}

// Delete removes a user's rating of a movie.
func (h *RatingHandler) Delete(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format")
		return
	}
	movieID, ok := pathID(c, "movieId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_MOVIE_ID", "Invalid movie ID format")
		return
	}

	resp, err := h.ratings.DeleteRating(c.Request.Context(), userID, movieID)
	if err != nil {
		respondServiceError(c, h.logger, err, "delete rating")
		return
	}

	status := http.StatusOK
	if resp.Rebuild == services.RebuildQueued {
		status = http.StatusAccepted
	}
	c.JSON(status, resp)
}
