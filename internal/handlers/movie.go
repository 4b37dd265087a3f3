package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/services"
)

type MovieHandler struct {
	logger    *logrus.Logger
	catalog   services.CatalogServiceInterface
	validator *validator.Validate
}

func NewMovieHandler(logger *logrus.Logger, catalog services.CatalogServiceInterface) *MovieHandler {
	return &MovieHandler{
		logger:    logger,
		catalog:   catalog,
		validator: validator.New(),
	}
}

func (h *MovieHandler) List(c *gin.Context) {
	page, ok := pageParams(c, h.validator)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.catalog.List(page.Page, page.PerPage))
}

// Ratings lists a movie's ratings, newest first.
func (h *MovieHandler) Ratings(c *gin.Context) {
	movieID, ok := pathID(c, "movieId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_MOVIE_ID", "Invalid movie ID format")
		return
	}
	page, ok := pageParams(c, h.validator)
	if !ok {
		return
	}

	resp, err := h.catalog.MovieRatings(movieID, page.Page, page.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "get movie ratings")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MovieHandler) Get(c *gin.Context) {
	movieID, ok := pathID(c, "movieId")
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_MOVIE_ID", "Invalid movie ID format")
		return
	}

	movie, err := h.catalog.Movie(movieID)
	if err != nil {
		respondServiceError(c, h.logger, err, "get movie")
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, http.StatusBadRequest, "MISSING_QUERY", "Query parameter q is required")
		return
	}

	c.JSON(http.StatusOK, h.catalog.Search(query, countParam(c, "limit")))
}

func (h *MovieHandler) Genres(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Genres())
}

func (h *MovieHandler) ByGenre(c *gin.Context) {
	genre := c.Param("genre")
	movies := h.catalog.ByGenre(genre, countParam(c, "limit"))
	c.JSON(http.StatusOK, gin.H{
		"genre":  genre,
		"movies": movies,
		"count":  len(movies),
	})
}

// countParam reads a count query parameter leniently; invalid values fall
// back to the service default.
func countParam(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
