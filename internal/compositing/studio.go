package compositing

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
)

var (
	ErrCaptureFailed      = errors.New("capture failed")
	ErrOverlayUnavailable = errors.New("overlay unavailable")
	ErrNoResult           = errors.New("no composed result")
)

// ResultFilename is the download name of a composed photo.
const ResultFilename = "santa-verse-memory.jpg"

// Mode tells whether the studio shows the live camera or a composed photo.
type Mode int

const (
	ModePreview Mode = iota
	ModeComposed
)

// Surface is the on-screen capture area, in client pixels.
type Surface struct {
	Left  float64
	Width float64
}

// Studio is the interactive photo booth: overlay placement, drag gesture,
// capture and the composed result.
type Studio struct {
	cfg       Config
	placement *Placement
	frames    FrameSource
	overlay   OverlaySource
	logger    *slog.Logger

	dragging   bool
	grabOffset float64
	result     []byte
}

// NewStudio creates a studio in preview mode.
func NewStudio(cfg Config, frames FrameSource, overlay OverlaySource, logger *slog.Logger) *Studio {
	if logger == nil {
		logger = slog.Default()
	}
	return &Studio{
		cfg:       cfg,
		placement: NewPlacement(cfg),
		frames:    frames,
		overlay:   overlay,
		logger:    logger,
	}
}

// Mode reports preview or composed.
func (s *Studio) Mode() Mode {
	if s.result != nil {
		return ModeComposed
	}
	return ModePreview
}

// Params returns the overlay placement.
func (s *Studio) Params() Params { return s.placement.Params() }

// SetParams applies placement from a client, clamped. Ignored once a
// result exists.
func (s *Studio) SetParams(p Params) {
	if s.Mode() == ModePreview {
		s.placement.Set(p)
	}
}

// ZoomIn grows the overlay in preview mode.
func (s *Studio) ZoomIn() {
	if s.Mode() == ModePreview {
		s.placement.ZoomIn()
	}
}

// ZoomOut shrinks the overlay in preview mode.
func (s *Studio) ZoomOut() {
	if s.Mode() == ModePreview {
		s.placement.ZoomOut()
	}
}

// Reset restores default placement in preview mode.
func (s *Studio) Reset() {
	if s.Mode() == ModePreview {
		s.placement.Reset()
	}
}

// Dragging reports whether a drag gesture is active.
func (s *Studio) Dragging() bool { return s.dragging }

// BeginDrag starts a drag at pointerX. The distance between the pointer and
// the overlay's left edge is kept so the overlay does not jump.
func (s *Studio) BeginDrag(pointerX float64, surf Surface) {
	if s.Mode() != ModePreview || surf.Width <= 0 {
		return
	}
	current := s.placement.Params().OffsetX / 100 * surf.Width
	s.grabOffset = (pointerX - surf.Left) - current
	s.dragging = true
}

// MoveDrag follows the pointer while a drag is active.
func (s *Studio) MoveDrag(pointerX float64, surf Surface) {
	if !s.dragging || s.Mode() != ModePreview || surf.Width <= 0 {
		return
	}
	px := (pointerX - surf.Left) - s.grabOffset
	s.placement.SetOffsetX(px / surf.Width * 100)
}

// EndDrag stops the gesture on pointer release or when the pointer leaves
// the surface.
func (s *Studio) EndDrag() { s.dragging = false }

// Capture snapshots the camera, composes the overlay onto it and keeps the
// encoded result. A missing overlay degrades to the frame alone; a failed
// snapshot or encode leaves the studio unchanged.
func (s *Studio) Capture(ctx context.Context) error {
	if s.frames == nil {
		return fmt.Errorf("%w: no camera", ErrCaptureFailed)
	}
	frame, err := s.frames.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("%w: snapshot: %v", ErrCaptureFailed, err)
	}

	overlay, err := s.loadOverlay(ctx)
	if err != nil {
		s.logger.Warn("capturing without overlay", "error", err)
	}

	out, err := EncodeJPEG(Compose(frame, overlay, s.placement.Params()), s.cfg.JPEGQuality)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	s.dragging = false
	s.result = out
	return nil
}

func (s *Studio) loadOverlay(ctx context.Context) (image.Image, error) {
	if s.overlay == nil {
		return nil, ErrOverlayUnavailable
	}
	img, err := s.overlay.Overlay(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOverlayUnavailable, err)
	}
	return img, nil
}

// Retake discards the result and returns to preview.
func (s *Studio) Retake() { s.result = nil }

// Download returns the composed JPEG and its filename.
func (s *Studio) Download() ([]byte, string, error) {
	if s.result == nil {
		return nil, "", ErrNoResult
	}
	return s.result, ResultFilename, nil
}
