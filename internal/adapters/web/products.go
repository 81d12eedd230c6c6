package web

import (
	"net/http"
	"strings"

	"smartshodhai/internal/app"

	"github.com/go-chi/chi/v5"
)

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Products)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, product)
}

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req app.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusUnprocessableEntity)
		return
	}
	writeJSONStatus(w, http.StatusCreated, product)
}

// updateProduct handles PUT /api/products/{id}.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req app.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		status, code := http.StatusUnprocessableEntity, "VALIDATION_ERROR"
		if strings.Contains(err.Error(), "not found") {
			status, code = http.StatusNotFound, "NOT_FOUND"
		}
		writeError(w, r, err.Error(), code, status)
		return
	}
	writeJSON(w, product)
}

// deleteProduct handles DELETE /api/products/{id}.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lowStock handles GET /api/products/low-stock.
func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetLowStock(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Products)
}
