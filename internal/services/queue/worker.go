package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/models"
	"github.com/tryonme/outfit-server/internal/store"
)

// StartWorker consumes generation events and writes them through the store.
// Returns after registering the consumer; processing continues until ctx is
// cancelled.
func (q *Service) StartWorker(ctx context.Context, workerID int, generations *store.GenerationStore) error {
	msgs, err := q.channel.Consume(
		generationQueue,                    // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	q.logger.Info("Worker started", zap.Int("worker_id", workerID))

	go func() {
		for {
			select {
			case <-ctx.Done():
				q.logger.Info("Worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					q.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
					return
				}
				q.processMessage(ctx, msg, workerID, generations)
			}
		}
	}()

	return nil
}

func (q *Service) processMessage(ctx context.Context, msg amqp.Delivery, workerID int, generations *store.GenerationStore) {
	var event models.GenerationEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		q.logger.Error("Failed to unmarshal generation event",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		msg.Nack(false, false) // Don't requeue malformed messages
		return
	}

	id, err := generations.Insert(ctx, EventToGeneration(&event))
	if err != nil {
		q.logger.Error("Failed to persist generation",
			zap.String("user_id", event.UserID),
			zap.Error(err))
		msg.Nack(false, true)
		return
	}

	q.logger.Info("Generation persisted",
		zap.String("generation_id", id),
		zap.Int("worker_id", workerID))

	if err := msg.Ack(false); err != nil {
		q.logger.Error("Failed to ack message",
			zap.String("generation_id", id),
			zap.Error(err))
	}
}

// EventToGeneration maps a queue event onto a storable row.
func EventToGeneration(event *models.GenerationEvent) *models.Generation {
	photos := event.ClothingPhotos
	if photos == nil {
		photos = []string{}
	}
	clothing, err := json.Marshal(photos)
	if err != nil {
		clothing = []byte("[]")
	}
	return &models.Generation{
		UserID:         event.UserID,
		UserPhoto:      event.UserPhoto,
		ClothingPhotos: string(clothing),
		GeneratedImage: event.GeneratedImage,
		Prompt:         event.Prompt,
		Scene:          event.Scene,
		Model:          event.Model,
		Source:         event.Source,
		ErrorCode:      event.ErrorCode,
		ProcessingMs:   event.ProcessingMs,
	}
}
