package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"santaverse/internal/models"
	"santaverse/internal/observability"
	ws "santaverse/internal/websocket"
)

func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Warn("websocket upgrade", "error", err)
		return
	}
	session := ws.NewChatSession(s.deps.Hub, conn, uuid.NewString(), ws.ChatOptions{
		Engine:      s.deps.Engine,
		TypingDelay: s.deps.TypingDelay,
		Transcripts: s.deps.Transcripts,
		Logger:      s.logger,
	})
	session.Serve()
}

func (s *Server) handleGallerySocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Warn("websocket upgrade", "error", err)
		return
	}
	ws.ServeGallery(s.deps.Hub, conn)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.deps.Transcripts.GetChatMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
