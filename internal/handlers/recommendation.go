package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/services"
	"github.com/temcen/movierec/pkg/models"
)

type RecommendationHandler struct {
	service   services.RecommendationServiceInterface
	validator *validator.Validate
	logger    *logrus.Logger
}

func NewRecommendationHandler(service services.RecommendationServiceInterface, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *RecommendationHandler) ContentBased(c *gin.Context) {
	movieID, ok := pathID(c, "movieId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_MOVIE_ID", "Invalid movie ID format")
		return
	}
	n, ok := h.bindCount(c)
	if !ok {
		return
	}

	resp, err := h.service.ContentBased(c.Request.Context(), movieID, n)
	if err != nil {
		respondServiceError(c, h.logger, err, "generate content-based recommendations")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecommendationHandler) ItemBased(c *gin.Context) {
	movieID, ok := pathID(c, "movieId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_MOVIE_ID", "Invalid movie ID format")
		return
	}
	n, ok := h.bindCount(c)
	if !ok {
		return
	}

	resp, err := h.service.ItemBased(c.Request.Context(), movieID, n)
	if err != nil {
		respondServiceError(c, h.logger, err, "generate item-based recommendations")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecommendationHandler) Collaborative(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format")
		return
	}
	n, ok := h.bindCount(c)
	if !ok {
		return
	}

	resp, err := h.service.Collaborative(c.Request.Context(), userID, n)
	if err != nil {
		respondServiceError(c, h.logger, err, "generate collaborative recommendations")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecommendationHandler) Popular(c *gin.Context) {
	n, ok := h.bindCount(c)
	if !ok {
		return
	}

	resp, err := h.service.Popular(c.Request.Context(), n)
	if err != nil {
		respondServiceError(c, h.logger, err, "generate popular recommendations")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecommendationHandler) Hybrid(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format")
		return
	}

	var req models.HybridRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.service.Hybrid(c.Request.Context(), userID, req.MovieID, deref(req.N))
	if err != nil {
		respondServiceError(c, h.logger, err, "generate hybrid recommendations")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecommendationHandler) Personalized(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format")
		return
	}
	n, ok := h.bindCount(c)
	if !ok {
		return
	}

	resp, err := h.service.Personalized(c.Request.Context(), userID, n)
	if err != nil {
		respondServiceError(c, h.logger, err, "generate personalized recommendations")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecommendationHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid JSON in compare request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_JSON",
				"message": "Invalid JSON format",
				"details": err.Error(),
			},
		})
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Compare request validation failed",
				"details": err.Error(),
			},
		})
		return
	}

	resp, err := h.service.Compare(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err, "compare recommendation methods")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecommendationHandler) SimilarUsers(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format")
		return
	}
	n, ok := h.bindCount(c)
	if !ok {
		return
	}

	resp, err := h.service.SimilarUsers(c.Request.Context(), userID, n)
	if err != nil {
		respondServiceError(c, h.logger, err, "find similar users")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// bindCount reads the optional n query parameter. Zero means the service
// default.
func (h *RecommendationHandler) bindCount(c *gin.Context) (int, bool) {
	var req models.RecommendationRequest
	if !h.bindQuery(c, &req) {
		return 0, false
	}
	return deref(req.N), true
}

func (h *RecommendationHandler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid query parameters")
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Query parameter validation failed",
				"details": err.Error(),
			},
		})
		return false
	}
	return true
}
