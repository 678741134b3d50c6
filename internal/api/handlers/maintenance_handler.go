package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k12fleet/assetdesk/internal/api/middleware"
	"github.com/k12fleet/assetdesk/internal/services"
)

// MaintenanceHandler exposes explicitly triggered cleanup. There is no
// scheduled counterpart; retention is an operator decision.
type MaintenanceHandler struct {
	service *services.MaintenanceService
}

func NewMaintenanceHandler(service *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{service: service}
}

func (h *MaintenanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/maintenance/purge", h.Purge)
}

type purgeRequest struct {
	OlderThanDays int `json:"older_than_days" binding:"required,min=1"`
}

// Purge deletes sessions older than the requested number of days, cascading
// to their persons, device records and notes.
func (h *MaintenanceHandler) Purge(c *gin.Context) {
	var req purgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purged, err := h.service.PurgeSessions(req.OlderThanDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entry := middleware.GetRequestLogger(c)
	entry.WithField("purged", purged).Info("maintenance purge completed")

	c.JSON(http.StatusOK, gin.H{"purged": purged})
}
