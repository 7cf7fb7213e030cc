package stats

import (
	"context"

	"github.com/tryonme/outfit-server/internal/models"
)

// Sink aggregates cross-request statistics. Record is fire-and-forget: the
// pipeline emits events and never reads aggregate state; only the stats
// endpoint calls Snapshot.
type Sink interface {
	Record(ctx context.Context, event models.StatsEvent) error
	Snapshot(ctx context.Context) (*models.StatsSnapshot, error)
	Reset(ctx context.Context) error
}

// finalize computes the derived metrics shared by both sink implementations.
func finalize(snapshot *models.StatsSnapshot) *models.StatsSnapshot {
	if snapshot.TotalGenerations > 0 {
		rate := float64(snapshot.SuccessfulGenerations) / float64(snapshot.TotalGenerations) * 100
		snapshot.SuccessRate = float64(int(rate*100)) / 100
	}
	if snapshot.SuccessfulGenerations > 0 {
		snapshot.AverageGenerationMs = snapshot.TotalGenerationTimeMs / snapshot.SuccessfulGenerations
	}
	return snapshot
}
