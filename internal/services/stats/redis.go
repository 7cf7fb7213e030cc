package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tryonme/outfit-server/internal/models"
)

const (
	keyTotal       = "tryon:stats:total"
	keyUsers       = "tryon:stats:users"
	keySuccess     = "tryon:stats:success"
	keyFailed      = "tryon:stats:failed"
	keyTotalTimeMs = "tryon:stats:total_time_ms"
	keyByScene     = "tryon:stats:by_scene"
	keyByLanguage  = "tryon:stats:by_language"
	keyDaily       = "tryon:stats:daily"
	keyHourly      = "tryon:stats:hourly"
	keyLastUpdated = "tryon:stats:last_updated"
)

// RedisSink keeps the counters in Redis so aggregates survive restarts and
// are shared across instances.
type RedisSink struct {
	client *redis.Client
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

func (s *RedisSink) Record(ctx context.Context, event models.StatsEvent) error {
	now := time.Now()
	pipe := s.client.Pipeline()

	switch event.Event {
	case models.EventGenerationStarted:
		pipe.Incr(ctx, keyTotal)
		if event.Scene != "" {
			pipe.HIncrBy(ctx, keyByScene, event.Scene, 1)
		}
		if event.Language != "" {
			pipe.HIncrBy(ctx, keyByLanguage, event.Language, 1)
		}
		pipe.HIncrBy(ctx, keyDaily, now.Format("2006-01-02"), 1)
		pipe.HIncrBy(ctx, keyHourly, strconv.Itoa(now.Hour()), 1)
		if event.GenerationTimeMs > 0 {
			pipe.IncrBy(ctx, keyTotalTimeMs, event.GenerationTimeMs)
		}
	case models.EventGenerationSuccess:
		pipe.Incr(ctx, keySuccess)
		if event.GenerationTimeMs > 0 {
			pipe.IncrBy(ctx, keyTotalTimeMs, event.GenerationTimeMs)
		}
	case models.EventGenerationFailed:
		pipe.Incr(ctx, keyFailed)
	case models.EventUserVisit:
		pipe.Incr(ctx, keyUsers)
	default:
		return fmt.Errorf("unknown stats event: %s", event.Event)
	}

	pipe.Set(ctx, keyLastUpdated, now.Format(time.RFC3339), 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record stats event: %w", err)
	}
	return nil
}

func (s *RedisSink) Snapshot(ctx context.Context) (*models.StatsSnapshot, error) {
	snapshot := &models.StatsSnapshot{}

	counters := map[string]*int64{
		keyTotal:       &snapshot.TotalGenerations,
		keyUsers:       &snapshot.TotalUsers,
		keySuccess:     &snapshot.SuccessfulGenerations,
		keyFailed:      &snapshot.FailedGenerations,
		keyTotalTimeMs: &snapshot.TotalGenerationTimeMs,
	}
	for key, dst := range counters {
		value, err := s.client.Get(ctx, key).Int64()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		*dst = value
	}

	hashes := map[string]*map[string]int64{
		keyByScene:    &snapshot.GenerationsByScene,
		keyByLanguage: &snapshot.GenerationsByLanguage,
		keyDaily:      &snapshot.DailyGenerations,
		keyHourly:     &snapshot.HourlyGenerations,
	}
	for key, dst := range hashes {
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		counters := make(map[string]int64, len(fields))
		for field, raw := range fields {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				counters[field] = n
			}
		}
		*dst = counters
	}

	if raw, err := s.client.Get(ctx, keyLastUpdated).Result(); err == nil {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			snapshot.LastUpdated = ts
		}
	}

	return finalize(snapshot), nil
}

func (s *RedisSink) Reset(ctx context.Context) error {
	keys := []string{
		keyTotal, keyUsers, keySuccess, keyFailed, keyTotalTimeMs,
		keyByScene, keyByLanguage, keyDaily, keyHourly, keyLastUpdated,
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset stats: %w", err)
	}
	return nil
}
