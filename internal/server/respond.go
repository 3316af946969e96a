package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"santaverse/internal/compositing"
	"santaverse/internal/gallery"
	"santaverse/internal/observability"
	"santaverse/internal/storage"
)

// Error codes returned in {"error": code} bodies.
const (
	codeGalleryFull   = "gallery_full"
	codeCaptureFailed = "capture_failed"
	codeNotFound      = "not_found"
	codeTooLarge      = "too_large"
	codeInternal      = "internal server error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": codeNotFound})
	case errors.Is(err, storage.ErrStorageFull):
		writeJSON(w, http.StatusInsufficientStorage, map[string]string{"error": codeGalleryFull})
	case errors.Is(err, gallery.ErrImageTooLarge):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": codeTooLarge})
	case errors.Is(err, compositing.ErrCaptureFailed):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": codeCaptureFailed})
	default:
		observability.LoggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": codeInternal})
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
