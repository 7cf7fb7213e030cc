package models

import "fmt"

// MaxClothingPhotos bounds how many clothing items one request may carry.
const MaxClothingPhotos = 3

// ImageFile is one uploaded image, already decoded to raw bytes.
type ImageFile struct {
	Data     []byte
	MimeType string
	Name     string
}

// OutfitRequest is the normalized unit of work produced by the request
// adapter. Both inbound encodings (multipart and JSON) collapse into this
// shape; nothing downstream branches on transport again.
type OutfitRequest struct {
	UserPhoto      ImageFile
	ClothingPhotos []ImageFile
	Scene          string
}

// OutfitJSONRequest is the JSON wire shape sent by the mobile clients.
type OutfitJSONRequest struct {
	UserPhoto      *OutfitJSONImage  `json:"userPhoto" binding:"required"`
	ClothingPhotos []OutfitJSONImage `json:"clothingPhotos"`
	Scene          string            `json:"scene"`
}

type OutfitJSONImage struct {
	Data string `json:"data" binding:"required"`
	Mime string `json:"mime"`
	Name string `json:"name"`
}

// Generation sources reported to clients.
const (
	SourceGemini   = "gemini"
	SourceFallback = "fallback"
)

// Error codes explaining why a fallback image was served.
const (
	ErrCodeNoKey     = "NO_KEY"
	ErrCodeTimeout   = "TIMEOUT"
	ErrCodeException = "EXCEPTION"
	ErrCodeRefused   = "IMAGE_OTHER"
	ErrCodeNoImage   = "NO_IMAGE_IN_RESPONSE"
)

// HTTPErrorCode tags a non-2xx provider status, e.g. HTTP_500.
func HTTPErrorCode(status int) string {
	return fmt.Sprintf("HTTP_%d", status)
}

// GenerationOutcome is the pipeline's final product for one request.
type GenerationOutcome struct {
	ImageURL  string `json:"imageUrl"`
	Source    string `json:"source"`
	Retries   int    `json:"retries"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// OutfitResponse is the wire response for /api/generate-outfit.
type OutfitResponse struct {
	Success   bool   `json:"success"`
	ImageURL  string `json:"imageUrl"`
	Source    string `json:"source"`
	Retries   int    `json:"retries"`
	ErrorCode string `json:"errorCode,omitempty"`
}
