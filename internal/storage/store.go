package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"santaverse/internal/models"
)

var (
	// ErrStorageFull is returned when a new item would exceed the quota or
	// the backend has run out of space.
	ErrStorageFull = errors.New("storage full")
	ErrNotFound    = errors.New("not found")
)

// DefaultUsername is stored when an item is shared without a name.
const DefaultUsername = "Guest"

// GalleryStore is the append-only gallery with like/view counters.
type GalleryStore interface {
	ListItems(ctx context.Context) ([]models.GalleryItem, error)
	GetItem(ctx context.Context, id string) (models.GalleryItem, error)
	AddItem(ctx context.Context, username string, image []byte, contentType string) (models.GalleryItem, error)
	IncrementLikes(ctx context.Context, id string) (models.GalleryItem, error)
	IncrementViews(ctx context.Context, id string) error
}

// SessionStore keeps the single display name of the local user.
type SessionStore interface {
	GetDisplayName(ctx context.Context) (string, bool, error)
	SetDisplayName(ctx context.Context, name string) error
}

// TranscriptStore keeps chat transcripts per conversation.
type TranscriptStore interface {
	SaveChatMessage(ctx context.Context, conversationID string, msg models.ChatMessage) error
	GetChatMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error)
}

// Store is everything a backend provides.
type Store interface {
	GalleryStore
	SessionStore
	TranscriptStore
	Close() error
}

// Options tune a backend. Zero values pick sensible defaults.
type Options struct {
	// QuotaBytes caps the total size of stored images. Zero disables the cap.
	QuotaBytes int64
	Now        func() time.Time
	NewID      func() string
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

func normalizeUsername(name string) string {
	if name == "" {
		return DefaultUsername
	}
	return name
}
