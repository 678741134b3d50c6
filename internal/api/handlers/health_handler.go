package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k12fleet/assetdesk/internal/version"
)

// HealthHandler reports liveness and the running version.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"name":    version.Name,
		"version": version.Full(),
	})
}
