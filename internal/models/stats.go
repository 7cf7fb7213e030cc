package models

import "time"

// Statistics event names accepted by POST /api/stats.
const (
	EventGenerationStarted = "generation_started"
	EventGenerationSuccess = "generation_success"
	EventGenerationFailed  = "generation_failed"
	EventUserVisit         = "user_visit"
)

// StatsEvent is one fire-and-forget statistics datum.
type StatsEvent struct {
	Event            string `json:"event" binding:"required"`
	Scene            string `json:"scene,omitempty"`
	Language         string `json:"language,omitempty"`
	GenerationTimeMs int64  `json:"generationTime,omitempty"`
}

// StatsSnapshot is the aggregate view returned by GET /api/stats.
type StatsSnapshot struct {
	TotalGenerations      int64            `json:"totalGenerations"`
	TotalUsers            int64            `json:"totalUsers"`
	SuccessfulGenerations int64            `json:"successfulGenerations"`
	FailedGenerations     int64            `json:"failedGenerations"`
	GenerationsByScene    map[string]int64 `json:"generationsByScene"`
	GenerationsByLanguage map[string]int64 `json:"generationsByLanguage"`
	DailyGenerations      map[string]int64 `json:"dailyGenerations"`
	HourlyGenerations     map[string]int64 `json:"hourlyGenerations"`
	TotalGenerationTimeMs int64            `json:"totalGenerationTime"`
	SuccessRate           float64          `json:"successRate"`
	AverageGenerationMs   int64            `json:"averageGenerationTimeMs"`
	LastUpdated           time.Time        `json:"lastUpdated"`
}
