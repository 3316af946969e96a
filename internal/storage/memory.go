package storage

import (
	"context"
	"sync"

	"santaverse/internal/models"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	opts        Options
	items       []models.GalleryItem
	used        int64
	displayName *string
	transcripts map[string][]models.ChatMessage
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:        opts.withDefaults(),
		transcripts: make(map[string][]models.ChatMessage),
	}
}

func (s *MemoryStore) ListItems(ctx context.Context) ([]models.GalleryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.GalleryItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemoryStore) GetItem(ctx context.Context, id string) (models.GalleryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return models.GalleryItem{}, ErrNotFound
}

func (s *MemoryStore) AddItem(ctx context.Context, username string, image []byte, contentType string) (models.GalleryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.QuotaBytes > 0 && s.used+int64(len(image)) > s.opts.QuotaBytes {
		return models.GalleryItem{}, ErrStorageFull
	}
	item := models.GalleryItem{
		ID:          s.opts.NewID(),
		Username:    normalizeUsername(username),
		Image:       append([]byte(nil), image...),
		ContentType: contentType,
		CreatedAt:   s.opts.Now().UTC(),
	}
	s.items = append(s.items, item)
	s.used += int64(len(image))
	return item, nil
}

func (s *MemoryStore) IncrementLikes(ctx context.Context, id string) (models.GalleryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.GalleryItem{}, ErrNotFound
	}
	s.items[i].Likes++
	return s.items[i], nil
}

func (s *MemoryStore) IncrementViews(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items[i].Views++
	}
	return nil
}

func (s *MemoryStore) GetDisplayName(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.displayName == nil {
		return "", false, nil
	}
	return *s.displayName, true, nil
}

func (s *MemoryStore) SetDisplayName(ctx context.Context, name string) error {
	s.mu.Lock()
	s.displayName = &name
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SaveChatMessage(ctx context.Context, conversationID string, msg models.ChatMessage) error {
	s.mu.Lock()
	s.transcripts[conversationID] = append(s.transcripts[conversationID], msg)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetChatMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.transcripts[conversationID]...), nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
