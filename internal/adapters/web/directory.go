package web

import (
	"net/http"

	"retail-pos/internal/app"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Customers)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Customer)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateCustomer(r.Context(), app.CreateCustomerRequest{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Customer)
}

func (h *Handler) deactivateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateCustomer(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListEmployees(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Employees)
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetEmployee(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Employee)
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Role  string `json:"role"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateEmployee(r.Context(), app.CreateEmployeeRequest{
		Name:  req.Name,
		Role:  req.Role,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Employee)
}

func (h *Handler) deactivateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateEmployee(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSuppliers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Suppliers)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetSupplier(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Supplier)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		ContactPerson string `json:"contact_person"`
		Email         string `json:"email"`
		Phone         string `json:"phone"`
		Address       string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateSupplier(r.Context(), app.CreateSupplierRequest{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Supplier)
}

func (h *Handler) deactivateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateSupplier(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
