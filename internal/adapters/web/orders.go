package web

import (
	"net/http"
	"strings"

	"smartshodhai/internal/app"

	"github.com/go-chi/chi/v5"
)

// listOrders handles GET /api/orders.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListOrders(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Orders)
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, order)
}

// createOrder handles POST /api/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req app.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusUnprocessableEntity)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}

// updateOrderStatus handles PATCH /api/orders/{id}/status.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req app.OrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		status, code := http.StatusUnprocessableEntity, "VALIDATION_ERROR"
		if strings.Contains(err.Error(), "not found") {
			status, code = http.StatusNotFound, "NOT_FOUND"
		}
		writeError(w, r, err.Error(), code, status)
		return
	}
	writeJSON(w, order)
}
