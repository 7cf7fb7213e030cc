package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tryonme/outfit-server/internal/models"
)

// MemorySink keeps counters in process memory. Used when Redis is not
// configured, and in tests. Counters reset on restart.
type MemorySink struct {
	mu          sync.Mutex
	total       int64
	users       int64
	success     int64
	failed      int64
	byScene     map[string]int64
	byLanguage  map[string]int64
	daily       map[string]int64
	hourly      map[string]int64
	totalTimeMs int64
	lastUpdated time.Time
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		byScene:    make(map[string]int64),
		byLanguage: make(map[string]int64),
		daily:      make(map[string]int64),
		hourly:     make(map[string]int64),
	}
}

func (s *MemorySink) Record(ctx context.Context, event models.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.lastUpdated = now

	switch event.Event {
	case models.EventGenerationStarted:
		s.total++
		if event.Scene != "" {
			s.byScene[event.Scene]++
		}
		if event.Language != "" {
			s.byLanguage[event.Language]++
		}
		s.daily[now.Format("2006-01-02")]++
		s.hourly[fmt.Sprintf("%d", now.Hour())]++
		s.totalTimeMs += event.GenerationTimeMs
	case models.EventGenerationSuccess:
		s.success++
		s.totalTimeMs += event.GenerationTimeMs
	case models.EventGenerationFailed:
		s.failed++
	case models.EventUserVisit:
		s.users++
	default:
		return fmt.Errorf("unknown stats event: %s", event.Event)
	}
	return nil
}

func (s *MemorySink) Snapshot(ctx context.Context) (*models.StatsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := &models.StatsSnapshot{
		TotalGenerations:      s.total,
		TotalUsers:            s.users,
		SuccessfulGenerations: s.success,
		FailedGenerations:     s.failed,
		GenerationsByScene:    copyCounters(s.byScene),
		GenerationsByLanguage: copyCounters(s.byLanguage),
		DailyGenerations:      copyCounters(s.daily),
		HourlyGenerations:     copyCounters(s.hourly),
		TotalGenerationTimeMs: s.totalTimeMs,
		LastUpdated:           s.lastUpdated,
	}
	return finalize(snapshot), nil
}

func (s *MemorySink) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total, s.users, s.success, s.failed, s.totalTimeMs = 0, 0, 0, 0, 0
	s.byScene = make(map[string]int64)
	s.byLanguage = make(map[string]int64)
	s.daily = make(map[string]int64)
	s.hourly = make(map[string]int64)
	s.lastUpdated = time.Now()
	return nil
}

func copyCounters(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
