// Package handlers provides the HTTP request handlers for the analysis API
// endpoints: liveness and readiness probes and the payload analysis
// endpoint. Handlers receive their collaborators through dependency
// injection so they can be tested in isolation.
package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/quantalabs/analysis-api/analysis"
	"github.com/quantalabs/analysis-api/apperrors"
	"github.com/quantalabs/analysis-api/logging"
	"github.com/quantalabs/analysis-api/shutdown"
	"github.com/quantalabs/analysis-api/validation"
)

// Handler serves the API endpoints.
type Handler struct {
	coordinator *shutdown.Coordinator
	validator   *validation.Validator
	version     string
}

// New creates a handler with injected dependencies.
func New(coordinator *shutdown.Coordinator, validator *validation.Validator, version string) *Handler {
	return &Handler{
		coordinator: coordinator,
		validator:   validator,
		version:     version,
	}
}

// probeResponse is the body shape shared by the liveness and readiness
// probes.
type probeResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// PayloadResponse is the POST /payload response body.
type PayloadResponse struct {
	NumericAnalysis  analysis.NumericAnalysis `json:"numeric_analysis"`
	TextAnalysis     analysis.TextAnalysis    `json:"text_analysis"`
	ProcessingTimeMs float64                  `json:"processing_time_ms"`
}

// Health reports liveness. It answers 200 whenever the process can serve at
// all.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, probeResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	})
}

// Ready reports readiness: not ready once the coordinator has stopped
// accepting requests.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.coordinator.Accepting() {
		RespondError(w, r, apperrors.Admission("service not ready"))
		return
	}

	RespondWithJSON(w, http.StatusOK, probeResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	})
}

// ProcessPayload validates the request body and runs both analysis engines
// over it.
func (h *Handler) ProcessPayload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req validation.PayloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, apperrors.Validation("malformed request body"))
		return
	}

	if err := h.validator.ValidatePayload(&req); err != nil {
		RespondError(w, r, err)
		return
	}

	logging.Debug("Processing payload",
		"numbers", len(req.Numbers),
		"text_chars", utf8.RuneCountInString(req.Text))

	numeric, err := analysis.CalculateStatistics(req.Numbers)
	if err != nil {
		logging.Error("Statistics calculation failed", "error", err, "count", len(req.Numbers))
		RespondError(w, r, err)
		return
	}

	text := analysis.AnalyzeText(req.Text)

	elapsed := float64(time.Since(start).Microseconds()) / 1000
	RespondWithJSON(w, http.StatusOK, PayloadResponse{
		NumericAnalysis:  numeric,
		TextAnalysis:     text,
		ProcessingTimeMs: math.Round(elapsed*100) / 100,
	})
}
