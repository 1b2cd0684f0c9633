package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ludilens/internal/analyzer"
	"ludilens/internal/models"
)

type ExportHandler struct {
	log      *zap.Logger
	analyzer *analyzer.Analyzer
}

func NewExportHandler(log *zap.Logger, a *analyzer.Analyzer) *ExportHandler {
	return &ExportHandler{log: log, analyzer: a}
}

// Create assembles a research export bundle and returns it inline.
func (h *ExportHandler) Create(c *gin.Context) {
	var opts models.ExportOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	export, err := h.analyzer.Export(c.Request.Context(), opts)
	if err != nil {
		h.log.Error("Export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}
	c.JSON(http.StatusOK, export)
}
