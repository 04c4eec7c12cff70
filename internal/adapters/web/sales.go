package web

import (
	"net/http"
	"strconv"

	"retail-pos/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// checkout handles POST /api/checkout. The request carries product IDs and
// quantities only — the server recomputes every monetary figure from the
// catalog, so a tampered client cannot change a price.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lines []struct {
			ProductID int `json:"product_id"`
			Quantity  int `json:"quantity"`
		} `json:"lines"`
		PaymentMethod   string          `json:"payment_method"`
		DiscountPercent decimal.Decimal `json:"discount_percent"`
		AmountPaid      decimal.Decimal `json:"amount_paid"`
		CashierID       int             `json:"cashier_id"`
		CustomerID      *int            `json:"customer_id"`
		CustomerName    string          `json:"customer_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	lines := make([]app.CheckoutLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = app.CheckoutLineInput{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	if req.CashierID == 0 {
		writeError(w, r, "cashier_id is required", "VALIDATION", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Checkout(r.Context(), app.CheckoutRequest{
		Lines:           lines,
		PaymentMethod:   req.PaymentMethod,
		DiscountPercent: req.DiscountPercent,
		AmountPaid:      req.AmountPaid,
		CashierID:       req.CashierID,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// listSales handles GET /api/sales with an optional limit query parameter.
func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	result, err := h.svc.ListSales(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getSale handles GET /api/sales/{ref} — ref is a numeric ID or bill number.
func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetSale(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// refundSale handles POST /api/sales/{id}/refund.
func (h *Handler) refundSale(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.RefundSale(r.Context(), id, authFromContext(r.Context()).UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// voidSale handles POST /api/sales/{id}/void.
func (h *Handler) voidSale(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.VoidSale(r.Context(), id, authFromContext(r.Context()).UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
