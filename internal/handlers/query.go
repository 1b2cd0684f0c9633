package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ludilens/internal/models"
	"ludilens/internal/query"
)

type QueryHandler struct {
	log    *zap.Logger
	engine *query.Engine
}

func NewQueryHandler(log *zap.Logger, engine *query.Engine) *QueryHandler {
	return &QueryHandler{log: log, engine: engine}
}

// Run executes an ad-hoc analytics query.
func (h *QueryHandler) Run(c *gin.Context) {
	var q models.AnalyticsQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		h.log.Error("Failed to bind analytics query", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	result, err := h.engine.Run(c.Request.Context(), q)
	if err != nil {
		h.log.Error("Analytics query failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
