package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"smartshodhai/internal/app"
	"smartshodhai/internal/core"

	"github.com/google/uuid"
)

const (
	maxUploadSize    = 10 << 20 // 10 MB
	uploadCleanupAge = 30 * time.Minute
	pendingTTL       = 15 * time.Minute
)

// allowedMIMETypes is the whitelist for uploaded scan images.
var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ── Pending scan store ────────────────────────────────────────────────────────

// pendingScan is an analyzed scan held server-side until the user confirms or
// cancels it from the review screen.
type pendingScan struct {
	Result    core.ScanResult
	CreatedAt time.Time
}

// pendingStore is a thread-safe in-memory store with TTL expiry.
type pendingStore struct {
	mu    sync.Mutex
	scans map[string]pendingScan
}

func newPendingStore() *pendingStore {
	return &pendingStore{scans: make(map[string]pendingScan)}
}

func (s *pendingStore) put(token string, p pendingScan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans[token] = p
}

func (s *pendingStore) get(token string) (pendingScan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.scans[token]
	if !ok {
		return pendingScan{}, false
	}
	if time.Since(p.CreatedAt) > pendingTTL {
		delete(s.scans, token)
		return pendingScan{}, false
	}
	return p, true
}

func (s *pendingStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scans, token)
}

// startPurge starts a background goroutine that evicts expired entries every
// 5 minutes.
func (s *pendingStore) startPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				for token, p := range s.scans {
					if time.Since(p.CreatedAt) > pendingTTL {
						delete(s.scans, token)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}

// ── Upload ────────────────────────────────────────────────────────────────────

// scanUpload handles POST /api/scan/upload — saves one image and returns its
// attachment ID for a subsequent analyze call.
func (h *Handler) scanUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, "request too large or malformed", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		writeError(w, r, "exactly one file is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	f, err := files[0].Open()
	if err != nil {
		writeError(w, r, "failed to open uploaded file", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	// Read header bytes for MIME detection.
	header := make([]byte, 512)
	n, _ := f.Read(header)
	mimeType := strings.ToLower(strings.TrimSpace(http.DetectContentType(header[:n])))
	if !allowedMIMETypes[mimeType] {
		writeError(w, r, fmt.Sprintf("file type %q not allowed; accepted: jpeg, png, webp", mimeType),
			"UNSUPPORTED_TYPE", http.StatusUnsupportedMediaType)
		return
	}

	if seeker, ok := f.(io.ReadSeeker); ok {
		seeker.Seek(0, io.SeekStart)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, r, "failed to read uploaded file", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	attachmentID := uuid.NewString()
	destPath := filepath.Join(h.uploadDir, attachmentID)
	if err := os.WriteFile(destPath, data, 0600); err != nil {
		writeError(w, r, "failed to save uploaded file", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	type uploadResponse struct {
		AttachmentID string `json:"attachment_id"`
		Filename     string `json:"filename"`
		FileType     string `json:"file_type"`
		SizeBytes    int64  `json:"size_bytes"`
	}
	writeJSON(w, uploadResponse{
		AttachmentID: attachmentID,
		Filename:     files[0].Filename,
		FileType:     mimeType,
		SizeBytes:    int64(len(data)),
	})
}

// loadAttachment reads an uploaded image by its UUID from the upload directory.
func (h *Handler) loadAttachment(id string) (app.Attachment, error) {
	if !validRequestID.MatchString(id) {
		return app.Attachment{}, fmt.Errorf("invalid attachment id")
	}
	data, err := os.ReadFile(filepath.Join(h.uploadDir, id))
	if err != nil {
		return app.Attachment{}, fmt.Errorf("attachment not found or expired")
	}
	return app.Attachment{MimeType: http.DetectContentType(data), Data: data}, nil
}

// ── Analyze / confirm ─────────────────────────────────────────────────────────

type scanAnalyzeRequest struct {
	AttachmentID string `json:"attachment_id"`
	Mode         string `json:"mode"` // "product" or "book"
}

// scanAnalyze handles POST /api/scan/analyze. It runs the vision model over a
// previously uploaded image and returns the detected items alongside a token;
// nothing is persisted until the token is confirmed.
func (h *Handler) scanAnalyze(w http.ResponseWriter, r *http.Request) {
	var req scanAnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	mode := core.ScanMode(req.Mode)
	if mode != core.ScanModeProduct && mode != core.ScanModeBook {
		writeError(w, r, "mode must be 'product' or 'book'", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	attachment, err := h.loadAttachment(req.AttachmentID)
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}

	result, err := h.svc.AnalyzeScan(r.Context(), mode, attachment)
	if err != nil {
		writeError(w, r, err.Error(), "AI_ERROR", http.StatusBadGateway)
		return
	}

	token := uuid.NewString()
	h.pending.put(token, pendingScan{Result: *result, CreatedAt: time.Now()})

	writeJSON(w, map[string]any{"token": token, "scan": result})
}

type scanConfirmRequest struct {
	Token  string `json:"token"`
	Action string `json:"action"` // "confirm" or "cancel"
	// Edited is the scan as reviewed by the user; when present it replaces
	// the stored analysis.
	Edited *core.ScanResult `json:"edited,omitempty"`
}

// scanConfirm handles POST /api/scan/confirm — applies or discards a pending
// scan identified by its token.
func (h *Handler) scanConfirm(w http.ResponseWriter, r *http.Request) {
	var req scanConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, r, "token is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.Action != "confirm" && req.Action != "cancel" {
		writeError(w, r, "action must be 'confirm' or 'cancel'", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	pending, ok := h.pending.get(req.Token)
	if !ok {
		writeError(w, r, "token not found or expired", "NOT_FOUND", http.StatusNotFound)
		return
	}
	h.pending.delete(req.Token)

	if req.Action == "cancel" {
		writeJSON(w, map[string]any{"ok": true, "message": "Cancelled."})
		return
	}

	scan := pending.Result
	if req.Edited != nil {
		scan = *req.Edited
		scan.Mode = pending.Result.Mode
	}

	outcome, err := h.svc.ConfirmScan(r.Context(), scan)
	if err != nil {
		writeError(w, r, "scan apply failed: "+err.Error(), "SCAN_ERROR", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "order": outcome.Order, "due_delta": outcome.DueDelta})
}

type scanDescribeRequest struct {
	AttachmentID string `json:"attachment_id"`
	Prompt       string `json:"prompt"`
}

// scanDescribe handles POST /api/scan/describe — free-form image reading.
func (h *Handler) scanDescribe(w http.ResponseWriter, r *http.Request) {
	var req scanDescribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	attachment, err := h.loadAttachment(req.AttachmentID)
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}

	text, err := h.svc.DescribeImage(r.Context(), attachment, req.Prompt)
	if err != nil {
		writeError(w, r, err.Error(), "AI_ERROR", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]any{"text": text})
}

// startUploadCleanup runs a background goroutine that deletes uploaded files
// older than uploadCleanupAge every 10 minutes.
func (h *Handler) startUploadCleanup() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			entries, err := os.ReadDir(h.uploadDir)
			if err != nil {
				continue
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					continue
				}
				if time.Since(info.ModTime()) > uploadCleanupAge {
					os.Remove(filepath.Join(h.uploadDir, entry.Name()))
				}
			}
		}
	}()
}
