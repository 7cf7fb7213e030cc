package models

import "time"

// Generation is one saved try-on result as stored in the generations table.
type Generation struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	UserPhoto      string    `db:"user_photo" json:"user_photo"`
	ClothingPhotos string    `db:"clothing_photos" json:"clothing_photos"`
	GeneratedImage string    `db:"generated_image" json:"generated_image"`
	Prompt         string    `db:"prompt" json:"prompt"`
	Scene          string    `db:"scene" json:"scene,omitempty"`
	Model          string    `db:"model" json:"model,omitempty"`
	Source         string    `db:"source" json:"source"`
	ErrorCode      string    `db:"error_code" json:"error_code,omitempty"`
	ProcessingMs   int64     `db:"processing_ms" json:"processing_ms"`
	Quality        int       `db:"quality" json:"quality"`
	Feedback       string    `db:"feedback" json:"feedback,omitempty"`
	IsPublic       bool      `db:"is_public" json:"is_public"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SaveGenerationRequest is the body of POST /api/generations.
type SaveGenerationRequest struct {
	UserPhoto      string   `json:"userPhoto" binding:"required"`
	ClothingPhotos []string `json:"clothingPhotos" binding:"required"`
	GeneratedImage string   `json:"generatedImage" binding:"required"`
	Prompt         string   `json:"prompt" binding:"required"`
	Scene          string   `json:"scene"`
	Model          string   `json:"model"`
	ProcessingMs   int64    `json:"processingTime"`
}

// UpdateGenerationRequest is the body of PUT /api/generations/:id.
type UpdateGenerationRequest struct {
	Quality  *int    `json:"quality" binding:"omitempty,min=1,max=5"`
	Feedback *string `json:"feedback"`
	IsPublic *bool   `json:"isPublic"`
}

// Pagination describes one page of a generation listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// GenerationEvent is the fire-and-forget persistence message published to the
// queue after a generation completes for an authenticated user.
type GenerationEvent struct {
	UserID         string   `json:"user_id"`
	UserPhoto      string   `json:"user_photo"`
	ClothingPhotos []string `json:"clothing_photos"`
	GeneratedImage string   `json:"generated_image"`
	Prompt         string   `json:"prompt"`
	Scene          string   `json:"scene,omitempty"`
	Model          string   `json:"model,omitempty"`
	Source         string   `json:"source"`
	ErrorCode      string   `json:"error_code,omitempty"`
	ProcessingMs   int64    `json:"processing_ms"`
}
