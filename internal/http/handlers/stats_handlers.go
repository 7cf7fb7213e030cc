package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/models"
	"github.com/tryonme/outfit-server/internal/services/stats"
)

type StatsHandler struct {
	sink   stats.Sink
	logger *zap.Logger
}

func NewStatsHandler(sink stats.Sink, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		sink:   sink,
		logger: logger,
	}
}

// GetStats returns the aggregate counters with derived metrics.
func (h *StatsHandler) GetStats(c *gin.Context) {
	snapshot, err := h.sink.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to fetch stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to fetch statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   snapshot,
	})
}

// RecordEvent accepts one fire-and-forget statistics event.
func (h *StatsHandler) RecordEvent(c *gin.Context) {
	var event models.StatsEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Invalid event payload",
		})
		return
	}

	if err := h.sink.Record(c.Request.Context(), event); err != nil {
		h.logger.Warn("Failed to record stats event",
			zap.String("event", event.Event),
			zap.Error(err))
		c.JSON(http.StatusOK, models.APIResponse{
			Success: false,
			Error:   "Failed to update statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Statistics updated successfully",
	})
}

// ResetStats clears all counters. Intended for testing environments.
func (h *StatsHandler) ResetStats(c *gin.Context) {
	if err := h.sink.Reset(c.Request.Context()); err != nil {
		h.logger.Error("Failed to reset stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to reset statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Statistics reset successfully",
	})
}
