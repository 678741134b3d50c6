package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/k12fleet/assetdesk/internal/services"
)

// NotesHandler exposes the notes ledger to the reviewing role.
type NotesHandler struct {
	service *services.NotesService
}

func NewNotesHandler(service *services.NotesService) *NotesHandler {
	return &NotesHandler{service: service}
}

func (h *NotesHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/notes", h.List)
	router.GET("/notes/export", h.Export)
}

// List returns ledger entries filtered by session and/or date range.
func (h *NotesHandler) List(c *gin.Context) {
	filters, ok := noteFilters(c)
	if !ok {
		return
	}

	entries, err := h.service.ListNotes(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Export streams the same filtered view as a CSV attachment.
func (h *NotesHandler) Export(c *gin.Context) {
	filters, ok := noteFilters(c)
	if !ok {
		return
	}

	data, err := h.service.ExportNotes(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("audit-notes-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func noteFilters(c *gin.Context) (services.NoteFilters, bool) {
	filters := services.NoteFilters{SessionToken: c.Query("session")}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return filters, false
		}
		filters.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return filters, false
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filters.To = &end
	}

	return filters, true
}
