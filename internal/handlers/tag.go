package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/services"
	"github.com/temcen/movierec/pkg/models"
)

type TagHandler struct {
	logger    *logrus.Logger
	catalog   services.CatalogServiceInterface
	ratings   services.RatingServiceInterface
	validator *validator.Validate
}

func NewTagHandler(logger *logrus.Logger, catalog services.CatalogServiceInterface, ratings services.RatingServiceInterface) *TagHandler {
	return &TagHandler{
		logger:    logger,
		catalog:   catalog,
		ratings:   ratings,
		validator: validator.New(),
	}
}

func (h *TagHandler) Create(c *gin.Context) {
	var request models.CreateTagRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Warn("Invalid JSON in tag request")
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
				"message": "Tag validation failed",
				"details": err.Error(),
			},
		})
		return
	}

	resp, err := h.ratings.AddTag(c.Request.Context(), request)
	if err != nil {
		respondServiceError(c, h.logger, err, "record tag")
		return
	}

	status := http.StatusCreated
	if resp.Rebuild == services.RebuildQueued {
		status = http.StatusAccepted
	}
	c.JSON(status, resp)
}

func (h *TagHandler) ByUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format")
		return
	}
	page, ok := pageParams(c, h.validator)
	if !ok {
		return
	}

	resp, err := h.catalog.UserTags(userID, page.Page, page.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "get user tags")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TagHandler) ByMovie(c *gin.Context) {
	movieID, ok := pathID(c, "movieId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_MOVIE_ID", "Invalid movie ID format")
		return
	}
	page, ok := pageParams(c, h.validator)
	if !ok {
		return
	}

	resp, err := h.catalog.MovieTags(movieID, page.Page, page.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "get movie tags")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Popular takes the count from n, falling back to the service default.
func (h *TagHandler) Popular(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.PopularTags(countParam(c, "n")))
}
