package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/config"
	"github.com/tryonme/outfit-server/internal/http/middleware"
	"github.com/tryonme/outfit-server/internal/models"
	"github.com/tryonme/outfit-server/internal/services/generator"
	"github.com/tryonme/outfit-server/internal/services/queue"
	"github.com/tryonme/outfit-server/internal/services/stats"
	"github.com/tryonme/outfit-server/internal/services/storage"
	"github.com/tryonme/outfit-server/internal/store"
)

const (
	userPhotoParamKey     = "userPhoto"
	clothingPhotoParamFmt = "clothingPhoto%d"
	sceneParamKey         = "scene"
)

type OutfitHandler struct {
	generator   *generator.Service
	storage     *storage.Service
	queue       *queue.Service
	stats       stats.Sink
	generations *store.GenerationStore
	logger      *zap.Logger
	config      *config.Config
}

func NewOutfitHandler(
	generator *generator.Service,
	storage *storage.Service,
	queue *queue.Service,
	stats stats.Sink,
	generations *store.GenerationStore,
	logger *zap.Logger,
	config *config.Config,
) *OutfitHandler {
	return &OutfitHandler{
		generator:   generator,
		storage:     storage,
		queue:       queue,
		stats:       stats,
		generations: generations,
		logger:      logger,
		config:      config,
	}
}

// GenerateOutfit is the pipeline entry point. Both inbound encodings collapse
// into one OutfitRequest; from there the generator owns the control flow and
// always yields a usable image URL. Responses are HTTP 200 with an internal
// success flag, matching what the clients expect.
func (h *OutfitHandler) GenerateOutfit(c *gin.Context) {
	req, err := h.parseOutfitRequest(c)
	if err != nil {
		h.respondError(c, err.Error())
		return
	}

	start := time.Now()
	h.recordStat(c, models.StatsEvent{
		Event: models.EventGenerationStarted,
		Scene: req.Scene,
	})

	outcome := h.generator.Generate(c.Request.Context(), req)
	processingMs := time.Since(start).Milliseconds()

	statEvent := models.EventGenerationSuccess
	if outcome.Source == models.SourceFallback {
		statEvent = models.EventGenerationFailed
	}
	h.recordStat(c, models.StatsEvent{
		Event:            statEvent,
		Scene:            req.Scene,
		GenerationTimeMs: processingMs,
	})

	h.persistGeneration(c, req, outcome, processingMs)

	c.JSON(http.StatusOK, models.OutfitResponse{
		Success:   true,
		ImageURL:  outcome.ImageURL,
		Source:    outcome.Source,
		Retries:   outcome.Retries,
		ErrorCode: outcome.ErrorCode,
	})
}

// HealthCheck
func (h *OutfitHandler) HealthCheck(c *gin.Context) {
	services := h.storage.HealthCheck(c.Request.Context())
	if h.queue != nil {
		services["rabbitmq"] = h.queue.HealthCheck()
	} else {
		services["rabbitmq"] = "not configured"
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}

func (h *OutfitHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}

func (h *OutfitHandler) recordStat(c *gin.Context, event models.StatsEvent) {
	if h.stats == nil {
		return
	}
	if err := h.stats.Record(c.Request.Context(), event); err != nil {
		h.logger.Warn("Failed to record stats event",
			zap.String("event", event.Event),
			zap.Error(err))
	}
}

// persistGeneration saves the result for authenticated callers. The queue is
// preferred; when it is down the write happens synchronously. Anonymous
// requests are not persisted.
func (h *OutfitHandler) persistGeneration(c *gin.Context, req *models.OutfitRequest, outcome *models.GenerationOutcome, processingMs int64) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" || h.generations == nil {
		return
	}

	imageURL := h.uploadResult(c, outcome)

	clothingNames := make([]string, len(req.ClothingPhotos))
	for i, photo := range req.ClothingPhotos {
		clothingNames[i] = photo.Name
	}

	event := &models.GenerationEvent{
		UserID:         userID,
		UserPhoto:      req.UserPhoto.Name,
		ClothingPhotos: clothingNames,
		GeneratedImage: imageURL,
		Prompt:         h.generator.Prompt(req),
		Scene:          req.Scene,
		Model:          h.generator.Model(),
		Source:         outcome.Source,
		ErrorCode:      outcome.ErrorCode,
		ProcessingMs:   processingMs,
	}

	if h.queue != nil {
		if err := h.queue.PublishGeneration(c.Request.Context(), event); err == nil {
			return
		} else {
			h.logger.Warn("Queue publish failed, persisting synchronously", zap.Error(err))
		}
	}

	if _, err := h.generations.Insert(c.Request.Context(), queue.EventToGeneration(event)); err != nil {
		h.logger.Error("Failed to persist generation", zap.Error(err))
	}
}

// uploadResult pushes the generated PNG to object storage when configured and
// returns the public URL; otherwise the data URI is stored as-is.
func (h *OutfitHandler) uploadResult(c *gin.Context, outcome *models.GenerationOutcome) string {
	if !h.storage.Configured() {
		return outcome.ImageURL
	}

	const dataURIPrefix = "data:image/png;base64,"
	if !strings.HasPrefix(outcome.ImageURL, dataURIPrefix) {
		return outcome.ImageURL
	}

	data, err := decodeDataURI(outcome.ImageURL, dataURIPrefix)
	if err != nil {
		h.logger.Warn("Failed to decode generated image", zap.Error(err))
		return outcome.ImageURL
	}

	url, err := h.storage.Upload(c.Request.Context(), data, "result.png")
	if err != nil {
		h.logger.Warn("Failed to upload generated image", zap.Error(err))
		return outcome.ImageURL
	}
	return url
}

func (h *OutfitHandler) respondError(c *gin.Context, message string) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: false,
		Error:   message,
	})
}
