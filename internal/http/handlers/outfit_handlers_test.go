package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/config"
	"github.com/tryonme/outfit-server/internal/http/middleware"
	"github.com/tryonme/outfit-server/internal/models"
	"github.com/tryonme/outfit-server/internal/services/bgremoval"
	"github.com/tryonme/outfit-server/internal/services/generator"
	"github.com/tryonme/outfit-server/internal/services/stats"
	"github.com/tryonme/outfit-server/internal/services/storage"
	"github.com/tryonme/outfit-server/internal/store"
)

const geminiSuccessBody = `{"candidates":[{"content":{"parts":[` +
	`{"text":"done"},` +
	`{"inlineData":{"mimeType":"image/png","data":"AAECAw=="}}]}}]}`

func newTestHandler(t *testing.T, apiKey, geminiURL string, generations *store.GenerationStore) *OutfitHandler {
	t.Helper()

	cfg := &config.Config{
		Gemini: config.GeminiConfig{
			APIKey:  apiKey,
			BaseURL: geminiURL,
			Model:   "gemini-2.5-flash-image",
			Timeout: 5 * time.Second,
		},
		Storage: config.StorageConfig{MaxFileSize: 10 << 20},
	}

	removal := bgremoval.NewServiceWithProviders(nil, time.Second, zap.NewNop())
	gen := generator.NewService(cfg.Gemini, removal, zap.NewNop())

	storageSvc, err := storage.NewService(cfg)
	if err != nil {
		t.Fatalf("storage.NewService: %v", err)
	}

	return NewOutfitHandler(gen, storageSvc, nil, stats.NewMemorySink(), generations, zap.NewNop(), cfg)
}

func newTestRouter(h *OutfitHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/generate-outfit", func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.UserIDKey, userID)
		}
		h.GenerateOutfit(c)
	})
	return router
}

// multipartBody builds a request body with a user photo, n clothing photos
// and an optional scene field.
func multipartBody(t *testing.T, clothing int, scene string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(userPhotoParamKey, "user.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3, 4, 5, 6})

	for i := 0; i < clothing; i++ {
		part, err := writer.CreateFormFile(fmt.Sprintf(clothingPhotoParamFmt, i), fmt.Sprintf("cloth_%d.jpg", i))
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write([]byte{byte(i), 1, 2})
	}

	if scene != "" {
		writer.WriteField(sceneParamKey, scene)
	}
	writer.Close()

	return &buf, writer.FormDataContentType()
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return body
}

func TestGenerateOutfitMultipart(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash-image:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(geminiSuccessBody))
	}))
	defer srv.Close()

	h := newTestHandler(t, "test-key", srv.URL, nil)
	router := newTestRouter(h, "")

	body, contentType := multipartBody(t, 2, "beach")
	req := httptest.NewRequest(http.MethodPost, "/api/generate-outfit", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	if resp["source"] != models.SourceGemini {
		t.Errorf("source = %v, want %q", resp["source"], models.SourceGemini)
	}
	if resp["imageUrl"] != "data:image/png;base64,AAECAw==" {
		t.Errorf("imageUrl = %v", resp["imageUrl"])
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}

	snapshot, err := h.stats.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snapshot.TotalGenerations != 1 || snapshot.SuccessfulGenerations != 1 {
		t.Errorf("stats = %d total / %d success, want 1/1",
			snapshot.TotalGenerations, snapshot.SuccessfulGenerations)
	}
	if snapshot.GenerationsByScene["beach"] != 1 {
		t.Errorf("scene counter = %d, want 1", snapshot.GenerationsByScene["beach"])
	}
}

func TestGenerateOutfitJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiSuccessBody))
	}))
	defer srv.Close()

	h := newTestHandler(t, "test-key", srv.URL, nil)
	router := newTestRouter(h, "")

	payload := `{
		"userPhoto": {"data": "/9j/4AABAgM=", "mime": "image/jpeg", "name": "me.jpg"},
		"clothingPhotos": [{"data": "AAEC", "name": "shirt.png"}],
		"scene": "office"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate-outfit", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["success"] != true || resp["source"] != models.SourceGemini {
		t.Errorf("got success=%v source=%v", resp["success"], resp["source"])
	}
}

func TestGenerateOutfitNoKeyFallsBack(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	h := newTestHandler(t, "", srv.URL, nil)
	router := newTestRouter(h, "")

	body, contentType := multipartBody(t, 0, "")
	req := httptest.NewRequest(http.MethodPost, "/api/generate-outfit", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	if resp["source"] != models.SourceFallback {
		t.Errorf("source = %v, want %q", resp["source"], models.SourceFallback)
	}
	if resp["errorCode"] != models.ErrCodeNoKey {
		t.Errorf("errorCode = %v, want %q", resp["errorCode"], models.ErrCodeNoKey)
	}
	if url, _ := resp["imageUrl"].(string); !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("imageUrl = %v, want placeholder data URI", resp["imageUrl"])
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("upstream calls = %d, want 0", got)
	}
}

func TestGenerateOutfitUnsupportedContentType(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	h := newTestHandler(t, "test-key", srv.URL, nil)
	router := newTestRouter(h, "")

	req := httptest.NewRequest(http.MethodPost, "/api/generate-outfit", strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}
	if resp["error"] != "Unsupported Content-Type. Expected multipart/form-data or application/json" {
		t.Errorf("error = %v", resp["error"])
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("upstream calls = %d, want 0", got)
	}
}

func TestGenerateOutfitMissingUserPhoto(t *testing.T) {
	h := newTestHandler(t, "test-key", "http://unused.invalid", nil)
	router := newTestRouter(h, "")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField(sceneParamKey, "beach")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/generate-outfit", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["success"] != false || resp["error"] != "User photo is required" {
		t.Errorf("got success=%v error=%v", resp["success"], resp["error"])
	}
}

func TestGenerateOutfitPersistsForAuthenticatedUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiSuccessBody))
	}))
	defer srv.Close()

	generations, err := store.Open(filepath.Join(t.TempDir(), "outfit.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer generations.Close()

	h := newTestHandler(t, "test-key", srv.URL, generations)
	router := newTestRouter(h, "user-1")

	body, contentType := multipartBody(t, 1, "party")
	req := httptest.NewRequest(http.MethodPost, "/api/generate-outfit", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	saved, total, err := generations.List(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(saved) != 1 {
		t.Fatalf("persisted %d generations, want 1", total)
	}
	gen := saved[0]
	if gen.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", gen.UserID)
	}
	if gen.Source != models.SourceGemini {
		t.Errorf("source = %q, want gemini", gen.Source)
	}
	if gen.GeneratedImage != "data:image/png;base64,AAECAw==" {
		t.Errorf("generated image = %q", gen.GeneratedImage)
	}
	if gen.Scene != "party" {
		t.Errorf("scene = %q, want party", gen.Scene)
	}
}

func TestGenerateOutfitAnonymousNotPersisted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiSuccessBody))
	}))
	defer srv.Close()

	generations, err := store.Open(filepath.Join(t.TempDir(), "outfit.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer generations.Close()

	h := newTestHandler(t, "test-key", srv.URL, generations)
	router := newTestRouter(h, "")

	body, contentType := multipartBody(t, 0, "")
	req := httptest.NewRequest(http.MethodPost, "/api/generate-outfit", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	_, total, err := generations.List(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 {
		t.Errorf("persisted %d generations, want 0", total)
	}
}
