package stats

import (
	"context"
	"testing"

	"github.com/tryonme/outfit-server/internal/models"
)

func TestMemorySinkAggregation(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	events := []models.StatsEvent{
		{Event: models.EventUserVisit},
		{Event: models.EventGenerationStarted, Scene: "beach", Language: "en"},
		{Event: models.EventGenerationSuccess, GenerationTimeMs: 3000},
		{Event: models.EventGenerationStarted, Scene: "beach"},
		{Event: models.EventGenerationSuccess, GenerationTimeMs: 1000},
		{Event: models.EventGenerationStarted, Scene: "office"},
		{Event: models.EventGenerationFailed},
	}
	for _, event := range events {
		if err := sink.Record(ctx, event); err != nil {
			t.Fatalf("Record(%s) error = %v", event.Event, err)
		}
	}

	snapshot, err := sink.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if snapshot.TotalGenerations != 3 {
		t.Errorf("TotalGenerations = %d, want 3", snapshot.TotalGenerations)
	}
	if snapshot.TotalUsers != 1 {
		t.Errorf("TotalUsers = %d, want 1", snapshot.TotalUsers)
	}
	if snapshot.SuccessfulGenerations != 2 {
		t.Errorf("SuccessfulGenerations = %d, want 2", snapshot.SuccessfulGenerations)
	}
	if snapshot.FailedGenerations != 1 {
		t.Errorf("FailedGenerations = %d, want 1", snapshot.FailedGenerations)
	}
	if snapshot.GenerationsByScene["beach"] != 2 {
		t.Errorf("beach count = %d, want 2", snapshot.GenerationsByScene["beach"])
	}
	if snapshot.GenerationsByScene["office"] != 1 {
		t.Errorf("office count = %d, want 1", snapshot.GenerationsByScene["office"])
	}
	if snapshot.GenerationsByLanguage["en"] != 1 {
		t.Errorf("en count = %d, want 1", snapshot.GenerationsByLanguage["en"])
	}
	if snapshot.AverageGenerationMs != 2000 {
		t.Errorf("AverageGenerationMs = %d, want 2000", snapshot.AverageGenerationMs)
	}
	// 2 of 3 generations succeeded.
	if snapshot.SuccessRate < 66.6 || snapshot.SuccessRate > 66.7 {
		t.Errorf("SuccessRate = %v, want ~66.66", snapshot.SuccessRate)
	}
}

func TestMemorySinkUnknownEvent(t *testing.T) {
	sink := NewMemorySink()
	if err := sink.Record(context.Background(), models.StatsEvent{Event: "bogus"}); err == nil {
		t.Error("Record() expected error for unknown event")
	}
}

func TestMemorySinkReset(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	sink.Record(ctx, models.StatsEvent{Event: models.EventGenerationStarted, Scene: "gym"})
	if err := sink.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	snapshot, err := sink.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snapshot.TotalGenerations != 0 || len(snapshot.GenerationsByScene) != 0 {
		t.Errorf("counters not cleared: %+v", snapshot)
	}
}
