package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/models"
	"github.com/tryonme/outfit-server/internal/services/stats"
)

func newStatsRouter() *gin.Engine {
	h := NewStatsHandler(stats.NewMemorySink(), zap.NewNop())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/stats", h.GetStats)
	router.POST("/api/stats", h.RecordEvent)
	router.DELETE("/api/stats", h.ResetStats)
	return router
}

func postEvent(t *testing.T, router *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/stats", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func fetchStats(t *testing.T, router *gin.Engine) *models.StatsSnapshot {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d, want 200", rec.Code)
	}
	var body struct {
		Success bool                  `json:"success"`
		Stats   *models.StatsSnapshot `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if !body.Success || body.Stats == nil {
		t.Fatalf("stats response = %s", rec.Body.String())
	}
	return body.Stats
}

func TestStatsEndpointRoundTrip(t *testing.T) {
	router := newStatsRouter()

	events := []string{
		`{"event": "generation_started", "scene": "beach"}`,
		`{"event": "generation_success", "scene": "beach", "generationTime": 4000}`,
		`{"event": "user_visit", "language": "en"}`,
	}
	for _, payload := range events {
		if rec := postEvent(t, router, payload); rec.Code != http.StatusOK {
			t.Fatalf("record status = %d for %s", rec.Code, payload)
		}
	}

	snapshot := fetchStats(t, router)
	if snapshot.TotalGenerations != 1 || snapshot.SuccessfulGenerations != 1 {
		t.Errorf("got %d total / %d success, want 1/1",
			snapshot.TotalGenerations, snapshot.SuccessfulGenerations)
	}
	if snapshot.TotalUsers != 1 {
		t.Errorf("total users = %d, want 1", snapshot.TotalUsers)
	}
	if snapshot.GenerationsByScene["beach"] != 1 {
		t.Errorf("beach counter = %d, want 1", snapshot.GenerationsByScene["beach"])
	}
	if snapshot.AverageGenerationMs != 4000 {
		t.Errorf("average = %d, want 4000", snapshot.AverageGenerationMs)
	}
}

func TestRecordEventRejectsMissingName(t *testing.T) {
	router := newStatsRouter()
	if rec := postEvent(t, router, `{"scene": "beach"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestResetStats(t *testing.T) {
	router := newStatsRouter()
	postEvent(t, router, `{"event": "generation_started"}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", rec.Code)
	}

	if snapshot := fetchStats(t, router); snapshot.TotalGenerations != 0 {
		t.Errorf("total after reset = %d, want 0", snapshot.TotalGenerations)
	}
}
