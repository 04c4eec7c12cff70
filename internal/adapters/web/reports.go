package web

import (
	"net/http"
	"time"

	"retail-pos/internal/app"
)

// salesReport handles GET /api/reports/sales. Query parameters: period
// (day|week|month|year|custom, default day), reference (YYYY-MM-DD, default
// today), from/to (YYYY-MM-DD, custom period only).
func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	period := q.Get("period")
	if period == "" {
		period = "day"
	}

	req := app.SalesReportRequest{Period: period, Reference: time.Now()}
	if v := q.Get("reference"); v != "" {
		ref, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, r, "invalid reference date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.Reference = ref
	}
	if v := q.Get("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, r, "invalid from date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.From = from
	}
	if v := q.Get("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, r, "invalid to date, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.To = to
	}

	report, err := h.svc.GetSalesReport(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// askAssistant handles POST /api/assistant.
func (h *Handler) askAssistant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.AskAssistant(r.Context(), req.Question)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
