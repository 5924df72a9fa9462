package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quantalabs/analysis-api/shutdown"
	"github.com/quantalabs/analysis-api/validation"
)

func newTestHandler() (*Handler, *shutdown.Coordinator) {
	coord := shutdown.NewCoordinator()
	return New(coord, validation.NewValidator(), "1.0.0"), coord
}

// drain flips the coordinator out of the accepting state without blocking.
func drain(t *testing.T, coord *shutdown.Coordinator) {
	t.Helper()
	if err := coord.Admit(); err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = coord.InitiateShutdown(ctx)
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler()

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", body["status"])
	}
	if body["version"] != "1.0.0" {
		t.Errorf("version = %q, want 1.0.0", body["version"])
	}
	if body["timestamp"] == "" {
		t.Error("timestamp missing")
	}
}

func TestReady(t *testing.T) {
	h, coord := newTestHandler()

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status while accepting = %d, want 200", rec.Code)
	}

	drain(t, coord)

	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status while draining = %d, want 503", rec.Code)
	}
}

func TestProcessPayload(t *testing.T) {
	h, _ := newTestHandler()

	payload := `{"numbers": [1, 2, 3, 4, 5], "text": "This is a sample text for analysis."}`
	req := httptest.NewRequest("POST", "/payload", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	h.ProcessPayload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp PayloadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	numeric := resp.NumericAnalysis
	if numeric.Minimum != 1 || numeric.Maximum != 5 || numeric.Mean != 3 || numeric.Median != 3 || numeric.Count != 5 {
		t.Errorf("numeric analysis = %+v", numeric)
	}

	text := resp.TextAnalysis
	if text.WordCount != 7 {
		t.Errorf("word_count = %d, want 7", text.WordCount)
	}
	if text.CharacterCount != len("This is a sample text for analysis.") {
		t.Errorf("character_count = %d", text.CharacterCount)
	}

	if resp.ProcessingTimeMs < 0 {
		t.Errorf("processing_time_ms = %v, want >= 0", resp.ProcessingTimeMs)
	}
}

func TestProcessPayloadSingleNumber(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest("POST", "/payload", strings.NewReader(`{"numbers": [42], "text": "Single number test"}`))
	rec := httptest.NewRecorder()
	h.ProcessPayload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp PayloadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	n := resp.NumericAnalysis
	if n.Minimum != 42 || n.Maximum != 42 || n.Mean != 42 || n.Median != 42 {
		t.Errorf("numeric analysis = %+v", n)
	}
	if n.StandardDeviation != 0 {
		t.Errorf("standard_deviation = %v, want 0", n.StandardDeviation)
	}
}

func TestProcessPayloadValidation(t *testing.T) {
	h, _ := newTestHandler()

	bigNumbers, _ := json.Marshal(map[string]any{
		"numbers": make([]float64, 10001),
		"text":    "test",
	})

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"numbers": [1,2`},
		{"missing fields", `{"invalid": "data"}`},
		{"empty numbers", `{"numbers": [], "text": "Sample text"}`},
		{"empty text", `{"numbers": [1, 2, 3], "text": ""}`},
		{"oversized numbers", string(bigNumbers)},
		{"oversized text", `{"numbers": [1], "text": "` + strings.Repeat("x", 50001) + `"}`},
		{"non-numeric numbers", `{"numbers": ["a"], "text": "test"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/payload", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			h.ProcessPayload(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rec.Code)
			}

			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body["message"] == "" {
				t.Error("error body missing message")
			}
		})
	}
}
