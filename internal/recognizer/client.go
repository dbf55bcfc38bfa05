// Package recognizer provides the HTTP client for the text-recognition
// sidecar that turns barcode photos into candidate text fragments.
package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scanrate_backend/platform/config"
	"scanrate_backend/platform/logger"
)

// Client is the HTTP client for the recognizer service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a new recognizer client. Returns nil when the service is not
// configured; callers treat a nil client as "photo input unsupported".
func New(cfg config.RecognizerConfig, log *logger.Logger) *Client {
	if !cfg.IsRecognizerEnabled() {
		return nil
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.GetRecognizerURL(), "/"),
		apiKey:     cfg.GetRecognizerAPIKey(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Enabled reports whether photo recognition is available.
func (c *Client) Enabled() bool {
	return c != nil
}

type recognizeResponse struct {
	Results []string `json:"results"`
}

// RecognizeText submits raw image bytes and returns the recognized text
// fragments in recognizer-ranked order. No ordering guarantee beyond that.
func (c *Client) RecognizeText(ctx context.Context, image []byte) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("recognizer not configured")
	}

	endpoint := c.baseURL + "/recognize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("recognizer request failed", "error", err)
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("recognizer upstream error", "status", resp.StatusCode)
		return nil, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var decoded recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return decoded.Results, nil
}
