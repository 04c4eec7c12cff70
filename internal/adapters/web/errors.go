package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"retail-pos/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a core error to its HTTP representation. Matching is
// on type, never on message text.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation   *core.ValidationError
		notFound     *core.NotFoundError
		insufficient *core.InsufficientStockError
		negative     *core.NegativeStockError
		overReceipt  *core.OverReceiptError
		consistency  *core.ConsistencyError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, r, validation.Error(), "VALIDATION", http.StatusBadRequest)
	case errors.As(err, &notFound):
		writeError(w, r, notFound.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &insufficient):
		writeError(w, r, insufficient.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
	case errors.As(err, &negative):
		writeError(w, r, negative.Error(), "NEGATIVE_STOCK", http.StatusConflict)
	case errors.As(err, &overReceipt):
		writeError(w, r, overReceipt.Error(), "OVER_RECEIPT", http.StatusConflict)
	case errors.As(err, &consistency):
		writeError(w, r, consistency.Error(), "CONFLICT", http.StatusConflict)
	case errors.Is(err, core.ErrBadCredentials):
		writeError(w, r, "invalid username or password", "UNAUTHORIZED", http.StatusUnauthorized)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
