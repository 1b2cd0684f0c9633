package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ludilens/internal/analyzer"
)

type AnalysisHandler struct {
	log      *zap.Logger
	analyzer *analyzer.Analyzer
}

func NewAnalysisHandler(log *zap.Logger, a *analyzer.Analyzer) *AnalysisHandler {
	return &AnalysisHandler{log: log, analyzer: a}
}

// Patterns returns the decision patterns detected in the corpus, optionally
// restricted to one game via ?game=.
func (h *AnalysisHandler) Patterns(c *gin.Context) {
	patterns, err := h.analyzer.Patterns(c.Request.Context(), c.Query("game"))
	if err != nil {
		h.log.Error("Pattern extraction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Pattern extraction failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": patterns, "count": len(patterns)})
}

// Profile returns the full cognitive profile for a user, recomputed from the
// corpus on every request.
func (h *AnalysisHandler) Profile(c *gin.Context) {
	userID := c.Param("userID")
	profile, err := h.analyzer.CognitiveProfile(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Profile computation failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Profile computation failed"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GameProfile returns the single user/game rollup.
func (h *AnalysisHandler) GameProfile(c *gin.Context) {
	userID := c.Param("userID")
	gameID := c.Param("gameID")
	profile, err := h.analyzer.GameProfile(c.Request.Context(), userID, gameID)
	if err != nil {
		h.log.Error("Game profile computation failed",
			zap.String("user_id", userID), zap.String("game_id", gameID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Game profile computation failed"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Transfer returns the transfer-learning score for a pair of games. A score
// of 0 with sampleSize 0 means there was no paired data to measure.
func (h *AnalysisHandler) Transfer(c *gin.Context) {
	gameA := c.Query("gameA")
	gameB := c.Query("gameB")
	if gameA == "" || gameB == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gameA and gameB are required"})
		return
	}

	score, err := h.analyzer.Transfer(c.Request.Context(), gameA, gameB)
	if err != nil {
		h.log.Error("Transfer computation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transfer computation failed"})
		return
	}
	c.JSON(http.StatusOK, score)
}
