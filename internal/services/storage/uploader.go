package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tryonme/outfit-server/pkg/utils"
)

// Upload stores an image in the Supabase bucket and returns its public URL.
func (s *Service) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("object storage not configured")
	}

	key := utils.GenerateStorageKey("outfits", filename)

	_, err := s.sbClient.UploadFile(s.bucket, key, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := s.sbClient.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}

// Delete removes an object from the bucket.
func (s *Service) Delete(ctx context.Context, path string) error {
	if !s.Configured() {
		return fmt.Errorf("object storage not configured")
	}
	_, err := s.sbClient.RemoveFile(s.bucket, []string{path})
	return err
}
