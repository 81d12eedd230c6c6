package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"smartshodhai/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService, the chi router, and the pending scan store.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	pending   *pendingStore
	jwtSecret string
	uploadDir string // directory for temporary scan image uploads
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}

	h := &Handler{
		svc:       svc,
		pending:   newPendingStore(),
		jwtSecret: jwtSecret,
		uploadDir: uploadDir,
	}

	// Start background maintenance goroutines.
	h.pending.startPurge(context.Background())
	h.startUploadCleanup()

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Auth (public) ─────────────────────────────────────────────────────────
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (401 JSON if unauthenticated) ────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Image upload: body limit is managed inside the handler (multipart).
		r.Post("/api/scan/upload", h.scanUpload)

		// All other protected endpoints: 1 MB body limit.
		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20))

			r.Get("/api/auth/me", h.me)

			// Catalog
			r.Get("/api/products", h.listProducts)
			r.Post("/api/products", h.createProduct)
			r.Get("/api/products/low-stock", h.lowStock)
			r.Get("/api/products/{id}", h.getProduct)
			r.Put("/api/products/{id}", h.updateProduct)
			r.Delete("/api/products/{id}", h.deleteProduct)

			// Orders
			r.Get("/api/orders", h.listOrders)
			r.Post("/api/orders", h.createOrder)
			r.Get("/api/orders/{id}", h.getOrder)
			r.Patch("/api/orders/{id}/status", h.updateOrderStatus)

			// Customers
			r.Get("/api/customers", h.listCustomers)
			r.Post("/api/customers", h.createCustomer)
			r.Get("/api/customers/{id}", h.getCustomer)
			r.Post("/api/customers/{id}/settle-due", h.settleDue)

			// Scanning
			r.Post("/api/scan/analyze", h.scanAnalyze)
			r.Post("/api/scan/confirm", h.scanConfirm)
			r.Post("/api/scan/describe", h.scanDescribe)

			// Assistant
			r.Post("/api/chat", h.chatMessage)
			r.Post("/api/speech", h.speech)

			// Analytics
			r.Get("/api/analytics/dashboard", h.dashboard)
			r.Get("/api/analytics/sales", h.salesReport)
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v, writing an appropriate error
// response on failure: HTTP 413 when the body exceeds the RequestBodyLimit,
// HTTP 400 for all other decode errors.
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
