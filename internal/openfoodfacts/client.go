// Package openfoodfacts provides the HTTP client for the Open Food Facts
// product lookup API.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scanrate_backend/platform/config"
	"scanrate_backend/platform/logger"
)

// Status is the three-way outcome of a lookup. NotFound and Unavailable
// drive the same conversational branch; they are kept distinct so the
// logs can tell a miss from an outage.
type Status int

const (
	// StatusFound means the API returned product data for the barcode.
	StatusFound Status = iota
	// StatusNotFound means the API answered but knows no such product.
	StatusNotFound
	// StatusUnavailable means the call failed (network, non-2xx, bad body).
	StatusUnavailable
)

// Result carries the lookup outcome and, when found, the product fields.
type Result struct {
	Status Status
	Name   string
	Brands string
}

// DisplayName composes the provisional product name shown to the user:
// "Name (Brands)" when a brand is known, otherwise just the name.
func (r Result) DisplayName() string {
	if r.Brands == "" {
		return r.Name
	}
	return fmt.Sprintf("%s (%s)", r.Name, r.Brands)
}

// Client is the HTTP client for the Open Food Facts API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a new Open Food Facts client.
func New(cfg config.LookupConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.GetLookupBaseURL(), "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

type productPayload struct {
	ProductName string `json:"product_name"`
	Brands      string `json:"brands"`
}

type lookupPayload struct {
	Status  int            `json:"status"`
	Product productPayload `json:"product"`
}

// Lookup fetches product data for a barcode. One attempt, no retries:
// transient failures map to StatusUnavailable and the caller fails open
// to manual entry.
func (c *Client) Lookup(ctx context.Context, barcode string) Result {
	endpoint := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Status: StatusUnavailable}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("openfoodfacts request failed", "error", err, "barcode", barcode)
		return Result{Status: StatusUnavailable}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("openfoodfacts upstream error", "status", resp.StatusCode, "barcode", barcode)
		return Result{Status: StatusUnavailable}
	}

	var decoded lookupPayload
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Warn("openfoodfacts decode failed", "error", err, "barcode", barcode)
		return Result{Status: StatusUnavailable}
	}

	if decoded.Status != 1 || decoded.Product.ProductName == "" {
		return Result{Status: StatusNotFound}
	}

	return Result{
		Status: StatusFound,
		Name:   decoded.Product.ProductName,
		Brands: strings.TrimSpace(decoded.Product.Brands),
	}
}
