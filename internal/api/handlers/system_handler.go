package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k12fleet/assetdesk/internal/services"
)

// SystemHandler exposes operational state such as directory service health.
type SystemHandler struct {
	health *services.HealthService
}

func NewSystemHandler(health *services.HealthService) *SystemHandler {
	return &SystemHandler{health: health}
}

func (h *SystemHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/system/directory-status", h.DirectoryStatus)
}

// DirectoryStatus returns the last observed directory service health.
func (h *SystemHandler) DirectoryStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.health.Status())
}
