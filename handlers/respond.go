package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/quantalabs/analysis-api/apperrors"
	"github.com/quantalabs/analysis-api/logging"
)

// RespondWithJSON writes payload as a JSON response with the given status
// code.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err, "payload_type", fmt.Sprintf("%T", payload))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondError maps err's kind to a status code, records the kind on the
// request so the tracker middleware counts it, and writes the error body.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperrors.KindOf(err)
	apperrors.Classify(r.Context(), kind)

	code := apperrors.HTTPStatus(kind)
	RespondWithJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": err.Error(),
		"code":    code,
	})
}
