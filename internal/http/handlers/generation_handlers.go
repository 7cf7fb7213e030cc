package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/http/middleware"
	"github.com/tryonme/outfit-server/internal/models"
	"github.com/tryonme/outfit-server/internal/store"
)

type GenerationHandler struct {
	generations *store.GenerationStore
	logger      *zap.Logger
}

func NewGenerationHandler(generations *store.GenerationStore, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		generations: generations,
		logger:      logger,
	}
}

// List returns one page of saved generations, newest first.
func (h *GenerationHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	generations, total, err := h.generations.List(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("Failed to list generations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to fetch generations",
		})
		return
	}

	if limit < 1 {
		limit = 10
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"generations": generations,
		"pagination": models.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// Save stores a generation for the authenticated user.
func (h *GenerationHandler) Save(c *gin.Context) {
	var req models.SaveGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Missing required fields",
		})
		return
	}

	clothing, err := json.Marshal(req.ClothingPhotos)
	if err != nil {
		clothing = []byte("[]")
	}

	gen := &models.Generation{
		UserID:         c.GetString(middleware.UserIDKey),
		UserPhoto:      req.UserPhoto,
		ClothingPhotos: string(clothing),
		GeneratedImage: req.GeneratedImage,
		Prompt:         req.Prompt,
		Scene:          req.Scene,
		Model:          req.Model,
		ProcessingMs:   req.ProcessingMs,
	}

	id, err := h.generations.Insert(c.Request.Context(), gen)
	if err != nil {
		h.logger.Error("Failed to save generation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to save generation",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"generation": gin.H{
			"id":         id,
			"created_at": gen.CreatedAt,
		},
	})
}

// Update applies quality/feedback/visibility changes to an owned generation.
func (h *GenerationHandler) Update(c *gin.Context) {
	var req models.UpdateGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	updated, err := h.generations.UpdateFeedback(
		c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey), &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIResponse{
				Success: false,
				Error:   "Generation not found",
			})
			return
		}
		h.logger.Error("Failed to update generation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to update generation",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"generation": gin.H{
			"id":         updated.ID,
			"quality":    updated.Quality,
			"feedback":   updated.Feedback,
			"is_public":  updated.IsPublic,
			"updated_at": updated.UpdatedAt,
		},
	})
}

// Delete removes an owned generation.
func (h *GenerationHandler) Delete(c *gin.Context) {
	err := h.generations.Delete(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.APIResponse{
				Success: false,
				Error:   "Generation not found",
			})
			return
		}
		h.logger.Error("Failed to delete generation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to delete generation",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Generation deleted successfully",
	})
}
