package bgremoval

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// RemoveBgProvider uploads the image as multipart form data to the Remove.bg
// API and receives the cut-out back as a binary PNG body.
type RemoveBgProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewRemoveBgProvider(apiKey, baseURL string) *RemoveBgProvider {
	return &RemoveBgProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (p *RemoveBgProvider) Name() string {
	return "removebg"
}

func (p *RemoveBgProvider) Configured() bool {
	return p.apiKey != ""
}

func (p *RemoveBgProvider) Remove(ctx context.Context, image []byte) ([]byte, error) {
	body, contentType, err := buildImageForm(image, map[string]string{
		"size":   "auto",
		"format": "png",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1.0/removebg", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remove.bg request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("remove.bg returned status %d: %s", resp.StatusCode, detail)
	}

	processed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read remove.bg response: %w", err)
	}
	return processed, nil
}

// buildImageForm assembles the multipart body both binary-upload providers
// expect: an image_file part carrying JPEG bytes plus optional string fields.
func buildImageForm(image []byte, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image_file"; filename="user.jpg"`)
	header.Set("Content-Type", "image/jpeg")

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", fmt.Errorf("failed to write image part: %w", err)
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
