package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/k12fleet/assetdesk/internal/services"
)

// SessionHandler exposes session browsing: active and completed person views.
type SessionHandler struct {
	service *services.SessionService
}

func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/sessions", h.List)
	router.GET("/sessions/:token", h.Get)
	router.GET("/sessions/:token/people", h.ListPeople)
	router.GET("/people/:id", h.GetPerson)
}

// List returns all audit sessions, newest first.
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.service.ListSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// Get returns one session with derived progress.
func (h *SessionHandler) Get(c *gin.Context) {
	token := c.Param("token")

	session, err := h.service.GetSession(token)
	if err != nil {
		respondError(c, err)
		return
	}

	progress, err := h.service.SessionProgress(token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  session,
		"progress": progress,
	})
}

// ListPeople returns the active queue by default, or the completed complement
// with ?view=completed. Search filters the active view.
func (h *SessionHandler) ListPeople(c *gin.Context) {
	token := c.Param("token")
	view := c.DefaultQuery("view", "active")
	search := c.Query("search")

	var people interface{}
	var err error
	switch view {
	case "completed":
		people, err = h.service.ListCompletedPersons(token)
	case "active":
		people, err = h.service.ListActivePersons(token, search)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "view must be active or completed"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, people)
}

// GetPerson returns one person with their full device and note history.
func (h *SessionHandler) GetPerson(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}

	person, err := h.service.GetPerson(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, person)
}
