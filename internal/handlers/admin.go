package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/services"
)

// AdminHandler handles engine maintenance requests
type AdminHandler struct {
	logger    *logrus.Logger
	rebuilder services.RebuilderInterface
	catalog   services.CatalogServiceInterface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(logger *logrus.Logger, rebuilder services.RebuilderInterface, catalog services.CatalogServiceInterface) *AdminHandler {
	return &AdminHandler{
		logger:    logger,
		rebuilder: rebuilder,
		catalog:   catalog,
	}
}

// Reload rebuilds every matrix from the data source
func (h *AdminHandler) Reload(c *gin.Context) {
	snap, err := h.rebuilder.Rebuild(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Manual reload failed")
		respondError(c, http.StatusInternalServerError, "REBUILD_FAILED", "Failed to rebuild recommendation matrices")
		return
	}

	h.logger.WithField("version", snap.Version()).Info("Manual reload completed")
	c.JSON(http.StatusOK, gin.H{
		"message": "Recommendation matrices rebuilt",
		"engine":  snap.Status(),
	})
}

// Engine reports the snapshot currently serving requests
func (h *AdminHandler) Engine(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Status())
}
