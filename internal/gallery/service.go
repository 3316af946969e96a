// Package gallery is the community gallery: sharing images, listing them
// newest first, and counting likes and views.
package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"

	"github.com/nfnt/resize"

	"santaverse/internal/models"
	"santaverse/internal/storage"
)

const (
	ThumbnailSize    = 300
	thumbnailQuality = 85

	// MaxThumbnailSourcePixels caps the declared size of an image decoded
	// for a thumbnail.
	MaxThumbnailSourcePixels = 40_000_000
)

// ErrImageTooLarge is returned when a stored image is too big to thumbnail.
var ErrImageTooLarge = errors.New("image too large")

// User-facing notices for failed shares.
const (
	NoticeGalleryFull = "Gallery Full! Please clear some space or try a simpler picture."
	NoticeShareFailed = "The elves dropped the camera. Try again."
)

// Notifier receives gallery changes, typically to fan them out to live viewers.
type Notifier interface {
	ItemAdded(item models.GalleryItem)
	ItemLiked(item models.GalleryItem)
	ItemViewed(item models.GalleryItem)
}

// Service wraps a gallery store with session handling and thumbnails.
type Service struct {
	items    storage.GalleryStore
	session  storage.SessionStore
	thumbs   *models.ThumbnailCache
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates a gallery service. notifier may be nil.
func NewService(items storage.GalleryStore, session storage.SessionStore, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		items:    items,
		session:  session,
		thumbs:   models.NewThumbnailCache(),
		notifier: notifier,
		logger:   logger,
	}
}

// List returns every item, most recent first.
func (s *Service) List(ctx context.Context) ([]models.GalleryItem, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// Share stores an image under username. A blank username falls back to the
// session display name and then to the guest name; a given one is
// remembered for next time.
func (s *Service) Share(ctx context.Context, username string, img []byte, contentType string) (models.GalleryItem, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		name, ok, err := s.session.GetDisplayName(ctx)
		if err != nil {
			s.logger.Warn("read session display name", "error", err)
		}
		if ok {
			username = name
		}
	} else if err := s.session.SetDisplayName(ctx, username); err != nil {
		s.logger.Warn("remember display name", "error", err)
	}
	if username == "" {
		username = storage.DefaultUsername
	}

	item, err := s.items.AddItem(ctx, username, img, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrStorageFull) {
			return models.GalleryItem{}, err
		}
		return models.GalleryItem{}, fmt.Errorf("share to gallery: %w", err)
	}

	s.logger.Info("gallery item shared", "id", item.ID, "username", item.Username, "bytes", len(img))
	if s.notifier != nil {
		s.notifier.ItemAdded(item)
	}
	return item, nil
}

// Like adds one like and returns the updated item.
func (s *Service) Like(ctx context.Context, id string) (models.GalleryItem, error) {
	item, err := s.items.IncrementLikes(ctx, id)
	if err != nil {
		return models.GalleryItem{}, err
	}
	if s.notifier != nil {
		s.notifier.ItemLiked(item)
	}
	return item, nil
}

// View counts one view. Unknown ids are ignored.
func (s *Service) View(ctx context.Context, id string) error {
	if err := s.items.IncrementViews(ctx, id); err != nil {
		return fmt.Errorf("count view: %w", err)
	}
	if s.notifier == nil {
		return nil
	}
	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	s.notifier.ItemViewed(item)
	return nil
}

// Image opens an item for full-size viewing, which counts as a view.
func (s *Service) Image(ctx context.Context, id string) (models.GalleryItem, error) {
	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return models.GalleryItem{}, err
	}
	if err := s.View(ctx, id); err != nil {
		s.logger.Warn("count view", "id", id, "error", err)
	} else {
		item.Views++
	}
	return item, nil
}

// Thumbnail returns a JPEG no larger than ThumbnailSize on either side.
func (s *Service) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	if cached, ok := s.thumbs.Get(id); ok {
		return cached, nil
	}

	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(item.Image))
	if err != nil {
		return nil, fmt.Errorf("decode gallery image %s: %w", id, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxThumbnailSourcePixels {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrImageTooLarge, id, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(item.Image))
	if err != nil {
		return nil, fmt.Errorf("decode gallery image %s: %w", id, err)
	}
	thumb := resize.Thumbnail(ThumbnailSize, ThumbnailSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	s.thumbs.Put(id, buf.Bytes())
	return buf.Bytes(), nil
}

// Notice maps a share failure to the message shown to the user.
func Notice(err error) string {
	if errors.Is(err, storage.ErrStorageFull) {
		return NoticeGalleryFull
	}
	return NoticeShareFailed
}
