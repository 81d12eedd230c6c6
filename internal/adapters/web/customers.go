package web

import (
	"net/http"
	"strings"

	"smartshodhai/internal/app"

	"github.com/go-chi/chi/v5"
)

// listCustomers handles GET /api/customers.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Customers)
}

// getCustomer handles GET /api/customers/{id}.
func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.svc.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, customer)
}

// createCustomer handles POST /api/customers.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req app.CustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	customer, err := h.svc.CreateCustomer(r.Context(), req)
	if err != nil {
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusUnprocessableEntity)
		return
	}
	writeJSONStatus(w, http.StatusCreated, customer)
}

// settleDue handles POST /api/customers/{id}/settle-due.
func (h *Handler) settleDue(w http.ResponseWriter, r *http.Request) {
	var req app.DueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	customer, err := h.svc.SettleCustomerDue(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		status, code := http.StatusUnprocessableEntity, "VALIDATION_ERROR"
		if strings.Contains(err.Error(), "not found") {
			status, code = http.StatusNotFound, "NOT_FOUND"
		}
		writeError(w, r, err.Error(), code, status)
		return
	}
	writeJSON(w, customer)
}
