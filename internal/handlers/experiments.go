package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ludilens/internal/models"
	"ludilens/internal/repository"
)

type ExperimentsHandler struct {
	log *zap.Logger
}

func NewExperimentsHandler(log *zap.Logger) *ExperimentsHandler {
	return &ExperimentsHandler{log: log}
}

type createExperimentRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	GameIDs     []string `json:"gameIds" binding:"required"`
}

func (h *ExperimentsHandler) Create(c *gin.Context) {
	var req createExperimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	exp, err := repository.CreateExperiment(c.Request.Context(), req.Name, req.Description, req.GameIDs)
	if err != nil {
		h.log.Error("Failed to create experiment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create experiment"})
		return
	}
	c.JSON(http.StatusCreated, exp)
}

func (h *ExperimentsHandler) Get(c *gin.Context) {
	exp, err := repository.GetExperiment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown experiment"})
			return
		}
		h.log.Error("Failed to load experiment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load experiment"})
		return
	}
	c.JSON(http.StatusOK, exp)
}

func (h *ExperimentsHandler) List(c *gin.Context) {
	exps, err := repository.ListExperiments(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list experiments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list experiments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiments": exps})
}

type statusRequest struct {
	Status models.ExperimentStatus `json:"status" binding:"required"`
}

// UpdateStatus applies a forward-only transition; anything else is rejected.
func (h *ExperimentsHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	exp, err := repository.UpdateExperimentStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown experiment"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, exp)
}
