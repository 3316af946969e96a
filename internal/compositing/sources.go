package compositing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sync"
)

// FrameSource produces a snapshot of the camera at native resolution.
type FrameSource interface {
	Snapshot(ctx context.Context) (image.Image, error)
}

// OverlaySource loads the fixed overlay graphic.
type OverlaySource interface {
	Overlay(ctx context.Context) (image.Image, error)
}

// BytesFrame is a frame already captured by a client, e.g. an upload.
type BytesFrame []byte

// Snapshot decodes the frame.
func (b BytesFrame) Snapshot(ctx context.Context) (image.Image, error) {
	return decode(ctx, bytes.NewReader(b))
}

// FileFrame reads a frame from disk.
type FileFrame string

// Snapshot decodes the file.
func (f FileFrame) Snapshot(ctx context.Context) (image.Image, error) {
	return decodeFile(ctx, string(f))
}

// FileOverlay loads the overlay from disk once and keeps it. A failed load
// is retried on the next call.
type FileOverlay struct {
	Path string

	mu  sync.Mutex
	img image.Image
}

// Overlay returns the cached overlay, loading it on first use.
func (o *FileOverlay) Overlay(ctx context.Context) (image.Image, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.img != nil {
		return o.img, nil
	}
	if o.Path == "" {
		return nil, fmt.Errorf("overlay path not configured")
	}
	img, err := decodeFile(ctx, o.Path)
	if err != nil {
		return nil, err
	}
	o.img = img
	return img, nil
}

// StaticOverlay is an overlay already in memory.
type StaticOverlay struct {
	Image image.Image
}

// Overlay returns the image, or an error when none is set.
func (s StaticOverlay) Overlay(context.Context) (image.Image, error) {
	if s.Image == nil {
		return nil, fmt.Errorf("no overlay image")
	}
	return s.Image, nil
}

func decodeFile(ctx context.Context, path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return decode(ctx, f)
}

// MaxPixels caps the declared size of a decoded image.
const MaxPixels = 40_000_000

// ErrImageTooLarge is returned for images declaring more than MaxPixels.
var ErrImageTooLarge = errors.New("image too large")

func decode(ctx context.Context, r io.Reader) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
