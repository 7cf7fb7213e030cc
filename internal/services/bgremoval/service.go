package bgremoval

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/config"
)

// Service tries each configured provider in a fixed priority order and yields
// the first successful cut-out. It never reports a hard failure: when every
// provider is skipped or fails, the original image is returned unchanged.
type Service struct {
	providers      []Provider
	attemptTimeout time.Duration
	logger         *zap.Logger
}

func NewService(cfg config.RemovalConfig, logger *zap.Logger) *Service {
	providers := []Provider{
		NewRemoveBgProvider(cfg.RemoveBgAPIKey, cfg.RemoveBgBaseURL),
		NewClipdropProvider(cfg.ClipdropAPIKey, cfg.ClipdropBaseURL),
		NewReplicateProvider(cfg.ReplicateAPIToken, cfg.ReplicateBaseURL, cfg.PollInterval, cfg.PollDeadline),
	}
	return NewServiceWithProviders(providers, cfg.AttemptTimeout, logger)
}

// NewServiceWithProviders builds a service over an explicit provider list.
func NewServiceWithProviders(providers []Provider, attemptTimeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		providers:      providers,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// RemoveBackgroundWithFallback runs the provider chain on the user photo.
func (s *Service) RemoveBackgroundWithFallback(ctx context.Context, image []byte) Outcome {
	for _, provider := range s.providers {
		if !provider.Configured() {
			s.logger.Info("Background removal provider not configured, skipping",
				zap.String("provider", provider.Name()))
			continue
		}

		s.logger.Info("Trying background removal",
			zap.String("provider", provider.Name()))

		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		processed, err := provider.Remove(attemptCtx, image)
		cancel()

		if err != nil {
			s.logger.Warn("Background removal failed",
				zap.String("provider", provider.Name()),
				zap.Error(err))
			continue
		}

		s.logger.Info("Background removal successful",
			zap.String("provider", provider.Name()),
			zap.Int("bytes", len(processed)))

		return Outcome{
			Succeeded:      true,
			ProcessedImage: processed,
			ServiceUsed:    provider.Name(),
		}
	}

	s.logger.Warn("All background removal providers failed, using original image")
	return Outcome{
		Succeeded:      true,
		ProcessedImage: image,
		ServiceUsed:    ServiceNone,
	}
}
