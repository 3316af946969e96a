package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"santaverse/internal/dialogue"
	"santaverse/internal/models"
)

type wishRequest struct {
	Name   string `json:"name"`
	Age    *int   `json:"age"`
	Action string `json:"action"`
}

const (
	wishDownload = "download"
	wishShare    = "share"
)

func (s *Server) handleWish(w http.ResponseWriter, r *http.Request) {
	var req wishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Age != nil && *req.Age < 0 {
		badRequest(w, "age must not be negative")
		return
	}
	if req.Action == "" {
		req.Action = wishDownload
	}
	if req.Action != wishDownload && req.Action != wishShare {
		badRequest(w, "action must be download or share")
		return
	}

	card, err := dialogue.NewWishCard(models.UserProfile{
		DisplayName: strings.TrimSpace(req.Name),
		Age:         req.Age,
	})
	if err != nil {
		badRequest(w, "name and age are required")
		return
	}
	png, err := dialogue.EncodeWishCard(card)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.Action == wishShare {
		s.share(w, r, card.Name, png, "image/png")
		return
	}
	writeAttachment(w, "image/png", card.Filename(), png)
}
