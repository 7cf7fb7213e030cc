package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tryonme/outfit-server/internal/models"
)

// ErrNotFound is returned when a generation does not exist or does not belong
// to the requesting user.
var ErrNotFound = errors.New("generation not found")

// Insert stores a new generation and returns its assigned id.
func (s *GenerationStore) Insert(ctx context.Context, gen *models.Generation) (string, error) {
	if gen.ID == "" {
		gen.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	gen.CreatedAt = now
	gen.UpdatedAt = now

	query := `INSERT INTO generations
		(id, user_id, user_photo, clothing_photos, generated_image, prompt,
		 scene, model, source, error_code, processing_ms, quality, feedback,
		 is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		gen.ID, gen.UserID, gen.UserPhoto, gen.ClothingPhotos, gen.GeneratedImage,
		gen.Prompt, gen.Scene, gen.Model, gen.Source, gen.ErrorCode,
		gen.ProcessingMs, gen.Quality, gen.Feedback, gen.IsPublic,
		gen.CreatedAt, gen.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert generation: %w", err)
	}
	return gen.ID, nil
}

// List returns one page of generations, newest first, plus the total count.
func (s *GenerationStore) List(ctx context.Context, page, limit int) ([]models.Generation, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM generations`); err != nil {
		return nil, 0, fmt.Errorf("failed to count generations: %w", err)
	}

	generations := []models.Generation{}
	query := `SELECT * FROM generations ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := s.db.SelectContext(ctx, &generations, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list generations: %w", err)
	}
	return generations, total, nil
}

// GetByID fetches one generation owned by userID.
func (s *GenerationStore) GetByID(ctx context.Context, id, userID string) (*models.Generation, error) {
	var gen models.Generation
	query := `SELECT * FROM generations WHERE id = ? AND user_id = ?`
	if err := s.db.GetContext(ctx, &gen, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch generation: %w", err)
	}
	return &gen, nil
}

// UpdateFeedback applies quality/feedback/visibility changes to a generation
// owned by userID. Nil fields are left untouched.
func (s *GenerationStore) UpdateFeedback(ctx context.Context, id, userID string, req *models.UpdateGenerationRequest) (*models.Generation, error) {
	existing, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Quality != nil {
		existing.Quality = *req.Quality
	}
	if req.Feedback != nil {
		existing.Feedback = *req.Feedback
	}
	if req.IsPublic != nil {
		existing.IsPublic = *req.IsPublic
	}
	existing.UpdatedAt = time.Now().UTC()

	query := `UPDATE generations
		SET quality = ?, feedback = ?, is_public = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	if _, err := s.db.ExecContext(ctx, query,
		existing.Quality, existing.Feedback, existing.IsPublic, existing.UpdatedAt,
		id, userID); err != nil {
		return nil, fmt.Errorf("failed to update generation: %w", err)
	}
	return existing, nil
}

// Delete removes a generation owned by userID.
func (s *GenerationStore) Delete(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM generations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete generation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
