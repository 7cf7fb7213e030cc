package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/models"
)

// PublishGeneration enqueues one persistence event. Fire-and-forget from the
// handler's perspective; delivery is durable once accepted by the broker.
func (q *Service) PublishGeneration(ctx context.Context, event *models.GenerationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal generation event: %w", err)
	}

	err = q.channel.Publish(
		"",              // exchange
		generationQueue, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish generation event: %w", err)
	}

	q.logger.Info("Generation event published",
		zap.String("user_id", event.UserID),
		zap.String("source", event.Source))
	return nil
}
