// Package compositing places a fixed overlay graphic onto a camera frame
// and rasterises the result.
package compositing

import "math"

// Config bounds the overlay placement. Offsets and sizes are percentages of
// the frame width.
type Config struct {
	DefaultOffsetX float64
	MinOffsetX     float64
	MaxOffsetX     float64

	DefaultSize float64
	MinSize     float64
	MaxSize     float64
	SizeStep    float64

	JPEGQuality int
}

// DefaultConfig lets the overlay hang slightly off the left edge and fill
// the whole frame at most.
func DefaultConfig() Config {
	return Config{
		DefaultOffsetX: 0,
		MinOffsetX:     -10,
		MaxOffsetX:     80,
		DefaultSize:    45,
		MinSize:        20,
		MaxSize:        100,
		SizeStep:       5,
		JPEGQuality:    95,
	}
}

// Params is the overlay placement in percent of frame width.
type Params struct {
	OffsetX float64 `json:"offsetX"`
	Size    float64 `json:"size"`
}

// Placement holds the user-adjusted overlay parameters. The vertical
// position is not stored: the overlay always stands on the frame's bottom
// edge.
type Placement struct {
	cfg    Config
	params Params
}

// NewPlacement starts at the configured defaults.
func NewPlacement(cfg Config) *Placement {
	p := &Placement{cfg: cfg}
	p.Reset()
	return p
}

// Params returns the current parameters.
func (p *Placement) Params() Params {
	return p.params
}

// SetOffsetX moves the overlay horizontally, clamped to the configured range.
func (p *Placement) SetOffsetX(x float64) {
	p.params.OffsetX = clamp(x, p.cfg.MinOffsetX, p.cfg.MaxOffsetX)
}

// AdjustSize changes the size by delta, clamped to the configured range.
func (p *Placement) AdjustSize(delta float64) {
	p.params.Size = clamp(p.params.Size+delta, p.cfg.MinSize, p.cfg.MaxSize)
}

// ZoomIn grows the overlay by one step.
func (p *Placement) ZoomIn() { p.AdjustSize(p.cfg.SizeStep) }

// ZoomOut shrinks the overlay by one step.
func (p *Placement) ZoomOut() { p.AdjustSize(-p.cfg.SizeStep) }

// Reset restores the default offset and size.
func (p *Placement) Reset() {
	p.params = Params{OffsetX: p.cfg.DefaultOffsetX, Size: p.cfg.DefaultSize}
}

// Set applies externally supplied parameters, clamping both.
func (p *Placement) Set(params Params) {
	p.SetOffsetX(params.OffsetX)
	p.params.Size = clamp(params.Size, p.cfg.MinSize, p.cfg.MaxSize)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
