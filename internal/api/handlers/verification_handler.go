package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/k12fleet/assetdesk/internal/api/middleware"
	"github.com/k12fleet/assetdesk/internal/directory"
	"github.com/k12fleet/assetdesk/internal/services"
)

// VerificationHandler drives one person's audit pass over HTTP.
type VerificationHandler struct {
	service *services.VerificationService
}

func NewVerificationHandler(service *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

func (h *VerificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/people/:id/verification/begin", h.Begin)
	router.POST("/people/:id/verification", h.Submit)
	router.POST("/people/:id/reaudit", h.Restore)
}

// Begin fetches the person's currently assigned equipment from the directory.
// Nothing is written; the caller may abandon the result freely.
func (h *VerificationHandler) Begin(c *gin.Context) {
	id, ok := personID(c)
	if !ok {
		return
	}

	devices, err := h.service.Begin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

type submitRequest struct {
	Devices      []directory.DeviceDescriptor `json:"devices"`
	ConfirmedIDs []string                     `json:"confirmed_ids"`
	Note         string                       `json:"note"`
}

// Submit records the verification outcome. The device list echoes what Begin
// returned; every listed device must be confirmed or the submission fails.
func (h *VerificationHandler) Submit(c *gin.Context) {
	id, ok := personID(c)
	if !ok {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	auditor := middleware.GetActor(c)
	if err := h.service.Submit(id, req.Devices, req.ConfirmedIDs, req.Note, auditor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "verification recorded"})
}

// Restore returns a completed person to the active queue for re-audit.
func (h *VerificationHandler) Restore(c *gin.Context) {
	id, ok := personID(c)
	if !ok {
		return
	}

	requestedBy := middleware.GetActor(c)
	if err := h.service.RestoreForReaudit(id, requestedBy); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "person restored for re-audit"})
}

func personID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return 0, false
	}
	return uint(id), true
}
