package server

import (
	"net/http"
	"strconv"

	"santaverse/internal/compositing"
	"santaverse/internal/observability"
)

// composeRequest reads the frame and placement from a multipart form and
// runs one capture.
func (s *Server) composeRequest(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	frame, _, ok := readUpload(w, r, "frame")
	if !ok {
		return nil, "", false
	}

	cfg := s.deps.Compositing
	params := compositing.Params{OffsetX: cfg.DefaultOffsetX, Size: cfg.DefaultSize}
	var err error
	if v := r.FormValue("offset_x"); v != "" {
		if params.OffsetX, err = strconv.ParseFloat(v, 64); err != nil {
			badRequest(w, "offset_x must be a number")
			return nil, "", false
		}
	}
	if v := r.FormValue("size"); v != "" {
		if params.Size, err = strconv.ParseFloat(v, 64); err != nil {
			badRequest(w, "size must be a number")
			return nil, "", false
		}
	}

	logger := observability.LoggerFromContext(r.Context())
	studio := compositing.NewStudio(cfg, compositing.BytesFrame(frame), s.deps.Overlay, logger)
	studio.SetParams(params)
	if err := studio.Capture(r.Context()); err != nil {
		logger.Warn("capture failed", "error", err)
		writeError(w, r, err)
		return nil, "", false
	}
	out, name, err := studio.Download()
	if err != nil {
		writeError(w, r, err)
		return nil, "", false
	}
	return out, name, true
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	out, name, ok := s.composeRequest(w, r)
	if !ok {
		return
	}
	writeAttachment(w, "image/jpeg", name, out)
}

func (s *Server) handleComposeShare(w http.ResponseWriter, r *http.Request) {
	out, _, ok := s.composeRequest(w, r)
	if !ok {
		return
	}
	s.share(w, r, r.FormValue("username"), out, "image/jpeg")
}
