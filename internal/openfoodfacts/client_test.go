package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"scanrate_backend/platform/logger"
)

type testLookupConfig struct {
	url string
}

func (c testLookupConfig) GetLookupBaseURL() string { return c.url }

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(testLookupConfig{url: server.URL}, logger.New("development")), server
}

func TestLookupFoundComposesDisplayName(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/product/04912345.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":1,"product":{"product_name":"Oat Bar","brands":"Acme"}}`))
	})

	result := client.Lookup(context.Background(), "04912345")
	if result.Status != StatusFound {
		t.Fatalf("expected StatusFound, got %v", result.Status)
	}
	if got := result.DisplayName(); got != "Oat Bar (Acme)" {
		t.Fatalf("expected display name %q, got %q", "Oat Bar (Acme)", got)
	}
}

func TestLookupFoundWithoutBrands(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":1,"product":{"product_name":"Oat Bar","brands":""}}`))
	})

	result := client.Lookup(context.Background(), "04912345")
	if got := result.DisplayName(); got != "Oat Bar" {
		t.Fatalf("expected bare name, got %q", got)
	}
}

func TestLookupMissMapsToNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0,"product":{}}`))
	})

	result := client.Lookup(context.Background(), "00000000")
	if result.Status != StatusNotFound {
		t.Fatalf("expected StatusNotFound, got %v", result.Status)
	}
}

func TestLookupUpstreamErrorMapsToUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	result := client.Lookup(context.Background(), "04912345")
	if result.Status != StatusUnavailable {
		t.Fatalf("expected StatusUnavailable, got %v", result.Status)
	}
}

func TestLookupNetworkErrorMapsToUnavailable(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	result := client.Lookup(context.Background(), "04912345")
	if result.Status != StatusUnavailable {
		t.Fatalf("expected StatusUnavailable, got %v", result.Status)
	}
}
