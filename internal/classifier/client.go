package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spec-kit/rescue-report-service/internal/config"
)

// Detection is a single labeled finding from the object-detection service.
type Detection struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Detector is the label+confidence oracle consumed by the intake gate.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Detection, error)
}

// Client talks to the external object-detection service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a detector client.
func NewClient(cfg config.ClassifierConfig) *Client {
	return &Client{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Detections []Detection `json:"detections"`
}

// Detect sends the image and returns all detections. Callers decide which
// labels matter.
func (c *Client) Detect(ctx context.Context, image []byte) ([]Detection, error) {
	payload, err := json.Marshal(detectRequest{Image: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return nil, fmt.Errorf("marshal detect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call detector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector returned status %d", resp.StatusCode)
	}

	var response detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode detector response: %w", err)
	}
	return response.Detections, nil
}
