package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"smartshodhai/internal/app"
)

// sendSSE writes one SSE event and flushes. data is JSON-marshalled.
func sendSSE(w http.ResponseWriter, f http.Flusher, event string, data any) {
	b, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(b))
	f.Flush()
}

// chatMessage handles POST /api/chat — accepts a shop-owner question and
// streams the assistant's reply via SSE.
//
// SSE event types:
//
//	status {"status":"thinking"}
//	delta  {"text":"..."}      (one per streamed chunk)
//	error  {"message":"...","code":"..."}
//	done   {}
func (h *Handler) chatMessage(w http.ResponseWriter, r *http.Request) {
	var req app.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		writeError(w, r, "prompt is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, "streaming not supported", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering if present

	sendSSE(w, flusher, "status", map[string]any{"status": "thinking"})

	err := h.svc.ChatStream(r.Context(), req, func(delta string) error {
		sendSSE(w, flusher, "delta", map[string]any{"text": delta})
		return nil
	})
	if err != nil {
		sendSSE(w, flusher, "error", map[string]any{"message": err.Error(), "code": "AI_ERROR"})
	}
	sendSSE(w, flusher, "done", map[string]any{})
}

// speech handles POST /api/speech — renders assistant text to WAV audio.
func (h *Handler) speech(w http.ResponseWriter, r *http.Request) {
	var req app.SpeechRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	audio, err := h.svc.Speak(r.Context(), req)
	if err != nil {
		writeError(w, r, err.Error(), "AI_ERROR", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	_, _ = w.Write(audio)
}
