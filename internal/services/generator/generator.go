package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/config"
	"github.com/tryonme/outfit-server/internal/models"
	"github.com/tryonme/outfit-server/internal/services/bgremoval"
	"github.com/tryonme/outfit-server/internal/services/prompt"
	"github.com/tryonme/outfit-server/pkg/utils"
)

// Service produces a GenerationOutcome for one OutfitRequest. Every failure
// path degrades to the placeholder image with an explanatory error code; a
// well-formed request never surfaces a hard error.
type Service struct {
	cfg     config.GeminiConfig
	removal *bgremoval.Service
	client  *http.Client
	logger  *zap.Logger
}

func NewService(cfg config.GeminiConfig, removal *bgremoval.Service, logger *zap.Logger) *Service {
	return &Service{
		cfg:     cfg,
		removal: removal,
		client:  &http.Client{},
		logger:  logger,
	}
}

// Generate runs the full pipeline: background removal, prompt assembly, one
// bounded Gemini call, response interpretation, fallback on anything else.
func (s *Service) Generate(ctx context.Context, req *models.OutfitRequest) *models.GenerationOutcome {
	finalPrompt := prompt.Build(req.Scene)

	// No credential: no network calls at all, straight to the placeholder.
	if s.cfg.APIKey == "" {
		s.logger.Warn("Gemini API key missing, using fallback image")
		return s.fallbackOutcome(finalPrompt, models.ErrCodeNoKey)
	}

	removal := s.removal.RemoveBackgroundWithFallback(ctx, req.UserPhoto.Data)
	s.logger.Info("Background removal finished",
		zap.String("service", removal.ServiceUsed),
		zap.Int("bytes", len(removal.ProcessedImage)))

	parts := assembleParts(finalPrompt, removal.ProcessedImage, req.ClothingPhotos)

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.callGemini(callCtx, newGeminiRequest(parts))
	if err != nil {
		code := models.ErrCodeException
		if isTimeout(err) {
			code = models.ErrCodeTimeout
		}
		s.logger.Error("Gemini call failed", zap.String("code", code), zap.Error(err))
		return s.fallbackOutcome(finalPrompt, code)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Gemini returned error status", zap.Int("status", resp.StatusCode))
		return s.fallbackOutcome(finalPrompt, models.HTTPErrorCode(resp.StatusCode))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		s.logger.Error("Failed to decode Gemini response", zap.Error(err))
		return s.fallbackOutcome(finalPrompt, models.ErrCodeException)
	}

	if len(parsed.Candidates) > 0 {
		candidate := &parsed.Candidates[0]

		if candidate.FinishReason == finishReasonRefused {
			s.logger.Warn("Gemini refused to generate image, using fallback")
			return s.fallbackOutcome(finalPrompt, models.ErrCodeRefused)
		}

		if data := firstInlineImage(candidate); data != "" {
			return &models.GenerationOutcome{
				ImageURL: "data:image/png;base64," + data,
				Source:   models.SourceGemini,
				Retries:  0,
			}
		}
	}

	s.logger.Warn("No image found in Gemini response, using fallback")
	return s.fallbackOutcome(finalPrompt, models.ErrCodeNoImage)
}

// Prompt exposes the final prompt for a request so callers can persist it.
func (s *Service) Prompt(req *models.OutfitRequest) string {
	return prompt.Build(req.Scene)
}

// Model names the configured generative model.
func (s *Service) Model() string {
	return s.cfg.Model
}

// assembleParts builds the multimodal request body. Part ordering matters to
// the provider's grounding and must stay: prompt, "This is me:", user image,
// then per clothing photo "These clothes:" followed by its image.
func assembleParts(finalPrompt string, userPhoto []byte, clothing []models.ImageFile) []geminiPart {
	parts := []geminiPart{
		{Text: finalPrompt},
		{Text: "This is me:"},
		{InlineData: &geminiInlineData{
			Data:     utils.EncodeBase64(userPhoto),
			MimeType: utils.MimeJPEG,
		}},
	}

	for _, photo := range clothing {
		parts = append(parts,
			geminiPart{Text: "These clothes:"},
			geminiPart{InlineData: &geminiInlineData{
				Data:     utils.EncodeBase64(photo.Data),
				MimeType: utils.MimeJPEG,
			}},
		)
	}
	return parts
}

func (s *Service) fallbackOutcome(finalPrompt, errorCode string) *models.GenerationOutcome {
	rendered := RenderPlaceholder(finalPrompt)
	return &models.GenerationOutcome{
		ImageURL:  "data:image/png;base64," + utils.EncodeBase64(rendered),
		Source:    models.SourceFallback,
		Retries:   0,
		ErrorCode: errorCode,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
