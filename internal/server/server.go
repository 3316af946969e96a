// Package server exposes the gallery, photo booth, wish cards and chat over
// HTTP and websockets.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"santaverse/internal/compositing"
	"santaverse/internal/dialogue"
	"santaverse/internal/gallery"
	"santaverse/internal/storage"
	ws "santaverse/internal/websocket"
)

// Deps are the services behind the HTTP API.
type Deps struct {
	Gallery     *gallery.Service
	Session     storage.SessionStore
	Transcripts storage.TranscriptStore
	Hub         *ws.Hub

	Engine      *dialogue.Engine
	TypingDelay time.Duration

	Compositing compositing.Config
	Overlay     compositing.OverlaySource

	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server handles HTTP requests.
type Server struct {
	deps     Deps
	upgrader *websocket.Upgrader
	logger   *slog.Logger
}

// New builds the router with every route registered.
func New(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Engine == nil {
		d.Engine = dialogue.NewEngine()
	}
	if d.Compositing == (compositing.Config{}) {
		d.Compositing = compositing.DefaultConfig()
	}
	if len(d.AllowedOrigins) == 0 {
		d.AllowedOrigins = []string{"*"}
	}
	s := &Server{deps: d, upgrader: ws.NewUpgrader(d.AllowedOrigins), logger: d.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(withRequestLogging(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
	}))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	RegisterRoutes(r, s)
	return r
}

// RegisterRoutes mounts the API on r.
func RegisterRoutes(r chi.Router, s *Server) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleGetSession)
		r.Put("/session", s.handlePutSession)

		r.Get("/gallery", s.handleListGallery)
		r.Post("/gallery", s.handleShareUpload)
		r.Get("/gallery/{id}/image", s.handleGalleryImage)
		r.Get("/gallery/{id}/thumbnail", s.handleGalleryThumbnail)
		r.Post("/gallery/{id}/like", s.handleLike)
		r.Post("/gallery/{id}/view", s.handleView)

		r.Post("/photo/compose", s.handleCompose)
		r.Post("/photo/share", s.handleComposeShare)

		r.Post("/wish", s.handleWish)

		r.Get("/chat/{id}/messages", s.handleTranscript)
	})

	r.Get("/ws/chat", s.handleChatSocket)
	r.Get("/ws/gallery", s.handleGallerySocket)
}
