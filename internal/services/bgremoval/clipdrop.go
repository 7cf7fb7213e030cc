package bgremoval

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// ClipdropProvider uploads the image as multipart form data to the Clipdrop
// remove-background endpoint and receives the cut-out back as binary bytes.
type ClipdropProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClipdropProvider(apiKey, baseURL string) *ClipdropProvider {
	return &ClipdropProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (p *ClipdropProvider) Name() string {
	return "clipdrop"
}

func (p *ClipdropProvider) Configured() bool {
	return p.apiKey != ""
}

func (p *ClipdropProvider) Remove(ctx context.Context, image []byte) ([]byte, error) {
	body, contentType, err := buildImageForm(image, nil)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/remove-background/v1", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clipdrop request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("clipdrop returned status %d: %s", resp.StatusCode, detail)
	}

	processed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read clipdrop response: %w", err)
	}
	return processed, nil
}
