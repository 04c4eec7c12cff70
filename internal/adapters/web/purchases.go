package web

import (
	"net/http"

	"retail-pos/internal/app"

	"github.com/shopspring/decimal"
)

// listPurchaseOrders handles GET /api/purchase-orders with an optional
// status query filter.
func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPurchaseOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createPurchaseOrder handles POST /api/purchase-orders.
func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SupplierID int    `json:"supplier_id"`
		Notes      string `json:"notes"`
		Lines      []struct {
			ProductID int              `json:"product_id"`
			Quantity  int              `json:"quantity"`
			CostPrice *decimal.Decimal `json:"cost_price"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	lines := make([]app.PurchaseOrderLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = app.PurchaseOrderLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			CostPrice: l.CostPrice,
		}
	}

	result, err := h.svc.CreatePurchaseOrder(r.Context(), app.CreatePurchaseOrderRequest{
		SupplierID: req.SupplierID,
		Notes:      req.Notes,
		Lines:      lines,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// getPurchaseOrder handles GET /api/purchase-orders/{id}.
func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// submitPurchaseOrder handles POST /api/purchase-orders/{id}/submit.
func (h *Handler) submitPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.SubmitPurchaseOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// receiveDelivery handles POST /api/purchase-orders/{id}/receive.
func (h *Handler) receiveDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Lines []struct {
			LineNumber int `json:"line_number"`
			Quantity   int `json:"quantity"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	lines := make([]app.ReceiptLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = app.ReceiptLineInput{LineNumber: l.LineNumber, Quantity: l.Quantity}
	}

	result, err := h.svc.ReceiveDelivery(r.Context(), app.ReceiveDeliveryRequest{
		OrderID: id,
		UserID:  authFromContext(r.Context()).UserID,
		Lines:   lines,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// cancelPurchaseOrder handles POST /api/purchase-orders/{id}/cancel.
func (h *Handler) cancelPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.CancelPurchaseOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
