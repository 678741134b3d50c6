package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k12fleet/assetdesk/internal/api/middleware"
	"github.com/k12fleet/assetdesk/internal/roster"
	"github.com/k12fleet/assetdesk/internal/services"
)

// ImportHandler handles roster upload, preview and finalization.
type ImportHandler struct {
	service  *services.ImportService
	maxBytes int64
}

func NewImportHandler(service *services.ImportService, maxBytes int64) *ImportHandler {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &ImportHandler{service: service, maxBytes: maxBytes}
}

func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/import/preview", h.Preview)
	router.POST("/import/commit", h.Commit)
}

// Preview validates an uploaded roster without committing anything. The
// response surfaces persons and duplicate groups for review.
func (h *ImportHandler) Preview(c *gin.Context) {
	data, hint, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.service.Preview(data, hint)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"persons":    result.Persons,
		"duplicates": result.Duplicates,
	})
}

// Commit finalizes an import: creates the session and seeds its persons.
// Unconfirmed duplicate groups are refused with 409 so the UI can re-prompt.
func (h *ImportHandler) Commit(c *gin.Context) {
	data, hint, ok := h.readUpload(c)
	if !ok {
		return
	}

	confirm := c.PostForm("confirm_duplicates") == "true"
	creator := middleware.GetActor(c)

	session, err := h.service.Finalize(data, hint, confirm, creator)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_token": session.UUID,
		"person_count":  session.PersonCount,
	})
}

func (h *ImportHandler) readUpload(c *gin.Context) ([]byte, roster.Encoding, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster file is required"})
		return nil, "", false
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "roster file exceeds the upload limit"})
		return nil, "", false
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return nil, "", false
	}
	if int64(len(data)) > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "roster file exceeds the upload limit"})
		return nil, "", false
	}

	hint := roster.Encoding(c.DefaultPostForm("encoding", string(roster.EncodingAuto)))
	return data, hint, true
}
