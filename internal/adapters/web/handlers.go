package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"retail-pos/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService the routes are served from.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes. Anyone logged
// in can run the register; catalog writes, directories, purchasing, stock
// corrections, reports, and the assistant are admin-only.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/login", h.login)
	r.Post("/api/logout", h.logout)

	// ── Authenticated ─────────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/me", h.me)

		// Register operations — any authenticated role.
		r.Get("/api/products", h.listProducts)
		r.Get("/api/products/{ref}", h.getProduct)
		r.Post("/api/checkout", h.checkout)
		r.Get("/api/sales", h.listSales)
		r.Get("/api/sales/{ref}", h.getSale)
		r.Get("/api/inventory/stock", h.stockLevels)
		r.Get("/api/inventory/transactions", h.listTransactions)
		r.Get("/api/customers", h.listCustomers)
		r.Get("/api/customers/{id}", h.getCustomer)
		r.Post("/api/customers", h.createCustomer)

		// Management operations — admin only.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireRole("admin"))

			r.Post("/api/products", h.createProduct)
			r.Put("/api/products/{id}", h.updateProduct)
			r.Delete("/api/products/{id}", h.deactivateProduct)

			r.Post("/api/sales/{id}/refund", h.refundSale)
			r.Post("/api/sales/{id}/void", h.voidSale)

			r.Post("/api/inventory/adjust", h.adjustStock)

			r.Get("/api/purchase-orders", h.listPurchaseOrders)
			r.Post("/api/purchase-orders", h.createPurchaseOrder)
			r.Get("/api/purchase-orders/{id}", h.getPurchaseOrder)
			r.Post("/api/purchase-orders/{id}/submit", h.submitPurchaseOrder)
			r.Post("/api/purchase-orders/{id}/receive", h.receiveDelivery)
			r.Post("/api/purchase-orders/{id}/cancel", h.cancelPurchaseOrder)

			r.Get("/api/reports/sales", h.salesReport)
			r.Post("/api/assistant", h.askAssistant)

			r.Delete("/api/customers/{id}", h.deactivateCustomer)
			r.Get("/api/employees", h.listEmployees)
			r.Get("/api/employees/{id}", h.getEmployee)
			r.Post("/api/employees", h.createEmployee)
			r.Delete("/api/employees/{id}", h.deactivateEmployee)
			r.Get("/api/suppliers", h.listSuppliers)
			r.Get("/api/suppliers/{id}", h.getSupplier)
			r.Post("/api/suppliers", h.createSupplier)
			r.Delete("/api/suppliers/{id}", h.deactivateSupplier)
		})
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body
// exceeds the RequestBodyLimit; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
