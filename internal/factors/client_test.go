package factors

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"ghgreport/internal"
	"ghgreport/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestGetDatasetWithRetry(t *testing.T) {
	attempt := 0

	cfg, _ := config.Load()
	cfg.FactorAPIToken = "test"
	cfg.FactorAPIBaseURL = "https://example.test/api/v1"
	cfg.FactorRateLimitRPS = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/api/v1/factors/current" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test" {
				t.Fatalf("unexpected auth header %q", got)
			}
			attempt++
			if attempt == 1 {
				return &http.Response{
					StatusCode: http.StatusServiceUnavailable,
					Body:       io.NopCloser(strings.NewReader(`{"error":"maintenance"}`)),
					Header:     make(http.Header),
				}, nil
			}

			payload := map[string]any{
				"success": true,
				"data": map[string]any{
					"revision": "2026-q1",
					"factors": []map[string]any{
						{"source": "Diesel", "scope": "1", "unit": "liter", "kgCo2ePerUnit": 2.68, "standard": "DEFRA"},
						{"source": "", "scope": "1", "unit": "liter", "kgCo2ePerUnit": 1.0, "standard": "EPA"},
						{"source": "Waste", "scope": "3", "unit": "kg", "kgCo2ePerUnit": 0.45, "standard": "EPA"},
					},
				},
			}
			blob, _ := json.Marshal(payload)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(string(blob))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	list, revision, err := client.GetDataset(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// The empty-source row is dropped, not fatal.
	if len(list) != 2 {
		t.Fatalf("len=%d", len(list))
	}
	if revision != "2026-q1" {
		t.Fatalf("revision=%q", revision)
	}
	if list[0].Source != "Diesel" || list[0].Scope != internal.Scope1 {
		t.Fatalf("factor[0]=%+v", list[0])
	}
}

func TestGetDatasetRequiresBaseURL(t *testing.T) {
	cfg, _ := config.Load()
	cfg.FactorAPIBaseURL = ""
	client := NewClient(cfg)
	if _, _, err := client.GetDataset(context.Background()); err == nil {
		t.Fatal("expected error without base URL")
	}
}
