package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"santaverse/internal/models"
)

type galleryItemResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Likes        int       `json:"likes"`
	Views        int       `json:"views"`
	ContentType  string    `json:"contentType"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`
	ImageURL     string    `json:"imageUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
}

type sessionResponse struct {
	DisplayName *string `json:"displayName"`
}

type sessionRequest struct {
	DisplayName string `json:"displayName"`
}

func toGalleryItemResponse(it models.GalleryItem) galleryItemResponse {
	return galleryItemResponse{
		ID:           it.ID,
		Username:     it.Username,
		Likes:        it.Likes,
		Views:        it.Views,
		ContentType:  it.ContentType,
		Date:         it.DisplayDate(),
		CreatedAt:    it.CreatedAt,
		ImageURL:     "/api/gallery/" + it.ID + "/image",
		ThumbnailURL: "/api/gallery/" + it.ID + "/thumbnail",
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	name, ok, err := s.deps.Session.GetDisplayName(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var resp sessionResponse
	if ok {
		resp.DisplayName = &name
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		badRequest(w, "displayName is required")
		return
	}
	if err := s.deps.Session.SetDisplayName(r.Context(), name); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{DisplayName: &name})
}

func (s *Server) handleListGallery(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Gallery.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]galleryItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, toGalleryItemResponse(it))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": resp})
}

func (s *Server) handleShareUpload(w http.ResponseWriter, r *http.Request) {
	data, header, ok := readUpload(w, r, "image")
	if !ok {
		return
	}
	if len(data) == 0 {
		badRequest(w, "image is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		badRequest(w, "image must be an image")
		return
	}

	s.share(w, r, r.FormValue("username"), data, contentType)
}

func (s *Server) share(w http.ResponseWriter, r *http.Request, username string, data []byte, contentType string) {
	item, err := s.deps.Gallery.Share(r.Context(), username, data, contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGalleryItemResponse(item))
}

func (s *Server) handleGalleryImage(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.Gallery.Image(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", item.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(item.Image)
}

func (s *Server) handleGalleryThumbnail(w http.ResponseWriter, r *http.Request) {
	thumb, err := s.deps.Gallery.Thumbnail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(thumb)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.Gallery.Like(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGalleryItemResponse(item))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Gallery.View(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
