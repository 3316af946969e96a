package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
)

const (
	maxUploadBytes = 10 << 20
	// room for form fields and multipart framing around one upload
	maxRequestBytes = maxUploadBytes + 1<<20
)

// readUpload parses a multipart request and returns the named file. Bodies
// or files over the limit are answered with 413, never truncated.
func readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			tooLargeError(w)
			return nil, nil, false
		}
		badRequest(w, "invalid multipart form")
		return nil, nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		badRequest(w, field+" is required")
		return nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		badRequest(w, "could not read "+field)
		return nil, nil, false
	}
	if len(data) > maxUploadBytes {
		tooLargeError(w)
		return nil, nil, false
	}
	return data, header, true
}

func tooLargeError(w http.ResponseWriter) {
	writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": codeTooLarge})
}
