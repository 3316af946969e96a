package compositing

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"math"

	"github.com/nfnt/resize"
)

// OverlayRect computes where an overlay of size ovW×ovH lands on a frame of
// size frameW×frameH. Width follows Size, height keeps the overlay's aspect
// ratio, and the bottom edge sits on the frame's bottom edge.
func OverlayRect(frameW, frameH, ovW, ovH int, p Params) image.Rectangle {
	if ovW <= 0 || ovH <= 0 {
		return image.Rectangle{}
	}
	w := int(math.Round(p.Size / 100 * float64(frameW)))
	h := int(math.Round(float64(w) * float64(ovH) / float64(ovW)))
	x := int(math.Round(p.OffsetX / 100 * float64(frameW)))
	y := frameH - h
	return image.Rect(x, y, x+w, y+h)
}

// Compose draws overlay onto a copy of frame. A nil overlay yields the
// frame alone.
func Compose(frame, overlay image.Image, p Params) *image.RGBA {
	fb := frame.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, fb.Dx(), fb.Dy()))
	draw.Draw(out, out.Bounds(), frame, fb.Min, draw.Src)

	if overlay == nil {
		return out
	}
	ob := overlay.Bounds()
	rect := OverlayRect(fb.Dx(), fb.Dy(), ob.Dx(), ob.Dy(), p)
	if rect.Empty() {
		return out
	}
	scaled := resize.Resize(uint(rect.Dx()), uint(rect.Dy()), overlay, resize.Lanczos3)
	draw.Draw(out, rect, scaled, scaled.Bounds().Min, draw.Over)
	return out
}

// EncodeJPEG encodes the composed image.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
