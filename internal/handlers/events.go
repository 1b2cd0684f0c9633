package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ludilens/internal/tracker"
)

type EventsHandler struct {
	log      *zap.Logger
	registry *tracker.Registry
}

func NewEventsHandler(log *zap.Logger, registry *tracker.Registry) *EventsHandler {
	return &EventsHandler{log: log, registry: registry}
}

type trackRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	tracker.Decision
}

// TrackDecision buffers one decision event for the session. The event is
// acknowledged once buffered; durable delivery happens on flush.
func (h *EventsHandler) TrackDecision(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind decision", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if req.UserID == "" || req.GameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and gameId are required"})
		return
	}

	t, err := h.registry.Get(req.SessionID)
	if err != nil {
		h.log.Error("Failed to get tracker", zap.String("session_id", req.SessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session tracker"})
		return
	}

	event := t.TrackDecision(c.Request.Context(), req.Decision)
	c.JSON(http.StatusAccepted, event)
}

// Flush forces the session's buffer out to the store.
func (h *EventsHandler) Flush(c *gin.Context) {
	sessionID := c.Param("id")
	t, ok := h.registry.Lookup(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return
	}
	if err := t.Flush(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Flush failed, batch dropped"})
		return
	}
	c.Status(http.StatusOK)
}

// StopSession ends the session, cancelling its timer and flushing the
// remaining buffer.
func (h *EventsHandler) StopSession(c *gin.Context) {
	h.registry.Stop(c.Param("id"))
	c.Status(http.StatusOK)
}

// SessionSummary summarizes the still-buffered events for a user/game pair.
func (h *EventsHandler) SessionSummary(c *gin.Context) {
	sessionID := c.Param("id")
	userID := c.Query("user")
	gameID := c.Query("game")
	if userID == "" || gameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user and game are required"})
		return
	}

	t, ok := h.registry.Lookup(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return
	}
	c.JSON(http.StatusOK, t.SessionSummary(userID, gameID))
}
