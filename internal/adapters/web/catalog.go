package web

import (
	"net/http"
	"strconv"

	"retail-pos/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// urlInt extracts a numeric URL parameter, writing a 400 on failure.
func urlInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeError(w, r, "invalid "+name+" parameter", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

type productPayload struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	InitialStock int             `json:"initial_stock"`
}

// listProducts handles GET /api/products. Admins may pass
// ?include_inactive=true to see deactivated products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	if includeInactive {
		claims := authFromContext(r.Context())
		if claims == nil || claims.Role != "admin" {
			writeError(w, r, "insufficient permissions", "FORBIDDEN", http.StatusForbidden)
			return
		}
	}

	result, err := h.svc.ListProducts(r.Context(), includeInactive)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getProduct handles GET /api/products/{ref} — ref is a numeric ID or code.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateProduct(r.Context(), app.CreateProductRequest{
		Code:         req.Code,
		Name:         req.Name,
		Category:     req.Category,
		Price:        req.Price,
		CostPrice:    req.CostPrice,
		InitialStock: req.InitialStock,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// updateProduct handles PUT /api/products/{id}. Stock cannot be edited here.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	var req productPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdateProduct(r.Context(), app.UpdateProductRequest{
		ProductID: id,
		Code:      req.Code,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		CostPrice: req.CostPrice,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// deactivateProduct handles DELETE /api/products/{id}.
func (h *Handler) deactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateProduct(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stockLevels handles GET /api/inventory/stock.
func (h *Handler) stockLevels(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockLevels(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// adjustStock handles POST /api/inventory/adjust.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int    `json:"product_id"`
		Delta     int    `json:"delta"`
		Notes     string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	claims := authFromContext(r.Context())

	result, err := h.svc.AdjustStock(r.Context(), app.AdjustStockRequest{
		ProductID: req.ProductID,
		Delta:     req.Delta,
		Notes:     req.Notes,
		UserID:    claims.UserID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listTransactions handles GET /api/inventory/transactions with optional
// product_id, type, and limit query filters.
func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	productID, _ := strconv.Atoi(q.Get("product_id"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.svc.ListInventoryTransactions(r.Context(), app.TransactionListRequest{
		ProductID: productID,
		Type:      q.Get("type"),
		Limit:     limit,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
