package web

import (
	"net/http"
	"strconv"

	"smartshodhai/internal/app"
)

// dashboard handles GET /api/analytics/dashboard.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

// salesReport handles GET /api/analytics/sales?from=&to=&top=.
func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	topN := 0
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, "top must be a non-negative integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		topN = n
	}

	report, err := h.svc.GetSalesReport(r.Context(), app.SalesReportRequest{
		FromDate: r.URL.Query().Get("from"),
		ToDate:   r.URL.Query().Get("to"),
		TopN:     topN,
	})
	if err != nil {
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, report)
}
