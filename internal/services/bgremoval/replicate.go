package bgremoval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tryonme/outfit-server/pkg/utils"
)

const rembgModelVersion = "cjwbw/rembg:fb8af171cfa1616ddcf1242c093f9c46bcada5ad4cf6f2fbe8b81b330ec5c003"

// ReplicateProvider runs the rembg model on Replicate. Unlike the other two
// providers it is asynchronous: submit a prediction, poll its status once per
// interval until it reaches a terminal state, then download the output URL.
// Polling stops at pollDeadline even if the prediction never terminates.
type ReplicateProvider struct {
	apiToken     string
	baseURL      string
	pollInterval time.Duration
	pollDeadline time.Duration
	client       *http.Client
}

func NewReplicateProvider(apiToken, baseURL string, pollInterval, pollDeadline time.Duration) *ReplicateProvider {
	return &ReplicateProvider{
		apiToken:     apiToken,
		baseURL:      baseURL,
		pollInterval: pollInterval,
		pollDeadline: pollDeadline,
		client:       &http.Client{},
	}
}

func (p *ReplicateProvider) Name() string {
	return "replicate"
}

func (p *ReplicateProvider) Configured() bool {
	return p.apiToken != ""
}

type replicatePrediction struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Output interface{} `json:"output"`
	Error  string      `json:"error"`
}

func (p *ReplicateProvider) Remove(ctx context.Context, image []byte) ([]byte, error) {
	prediction, err := p.createPrediction(ctx, image)
	if err != nil {
		return nil, err
	}

	prediction, err = p.waitForPrediction(ctx, prediction)
	if err != nil {
		return nil, err
	}

	outputURL, err := predictionOutputURL(prediction)
	if err != nil {
		return nil, err
	}

	processed, _, err := utils.DownloadImage(ctx, outputURL, 32<<20)
	if err != nil {
		return nil, fmt.Errorf("failed to download replicate output: %w", err)
	}
	return processed, nil
}

func (p *ReplicateProvider) createPrediction(ctx context.Context, image []byte) (*replicatePrediction, error) {
	payload := map[string]interface{}{
		"version": rembgModelVersion,
		"input": map[string]string{
			"image": "data:image/jpeg;base64," + utils.EncodeBase64(image),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+p.apiToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("replicate returned status %d: %s", resp.StatusCode, detail)
	}

	var prediction replicatePrediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}
	return &prediction, nil
}

func (p *ReplicateProvider) waitForPrediction(ctx context.Context, prediction *replicatePrediction) (*replicatePrediction, error) {
	deadline := time.Now().Add(p.pollDeadline)

	for prediction.Status == "starting" || prediction.Status == "processing" {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("replicate prediction %s still %s after %s", prediction.ID, prediction.Status, p.pollDeadline)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.pollInterval):
		}

		updated, err := p.getPrediction(ctx, prediction.ID)
		if err != nil {
			return nil, err
		}
		prediction = updated
	}

	if prediction.Status != "succeeded" {
		return nil, fmt.Errorf("replicate processing failed: %s", prediction.Status)
	}
	return prediction, nil
}

func (p *ReplicateProvider) getPrediction(ctx context.Context, id string) (*replicatePrediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/predictions/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.apiToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("replicate status returned %d", resp.StatusCode)
	}

	var prediction replicatePrediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("failed to decode prediction status: %w", err)
	}
	return &prediction, nil
}

// predictionOutputURL extracts the first output URL; the rembg model returns
// either a single string or a list of strings.
func predictionOutputURL(prediction *replicatePrediction) (string, error) {
	switch output := prediction.Output.(type) {
	case string:
		if output != "" {
			return output, nil
		}
	case []interface{}:
		if len(output) > 0 {
			if url, ok := output[0].(string); ok && url != "" {
				return url, nil
			}
		}
	}
	return "", fmt.Errorf("replicate prediction %s has no output", prediction.ID)
}
