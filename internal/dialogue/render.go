package dialogue

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	cardWidth   = 360
	cardPadding = 24
	cardBorder  = 4
	lineHeight  = 18
	paraGap     = 12
	exportScale = 2
)

var (
	cardTop    = color.RGBA{0xD4, 0x24, 0x26, 0xFF}
	cardBottom = color.RGBA{0x8B, 0x00, 0x00, 0xFF}
	cardGold   = color.RGBA{0xF8, 0xB2, 0x29, 0xFF}
)

// RenderWishCard rasterises the card and scales it up for export.
func RenderWishCard(c WishCard) image.Image {
	face := basicfont.Face7x13
	maxText := cardWidth - 2*(cardPadding+cardBorder)

	var body []string
	for _, para := range c.Body {
		body = append(body, wrap(face, para, maxText)...)
	}

	height := 2*(cardPadding+cardBorder) + lineHeight + paraGap + len(body)*lineHeight + paraGap + lineHeight
	img := image.NewRGBA(image.Rect(0, 0, cardWidth, height))
	paintGradient(img)
	paintBorder(img, cardBorder, cardGold)

	y := cardBorder + cardPadding + lineHeight
	drawCentered(img, face, c.Salutation, y, cardGold)
	y += paraGap
	for _, line := range body {
		y += lineHeight
		drawCentered(img, face, line, y, color.White)
	}
	y += paraGap + lineHeight
	drawCentered(img, face, c.Signature, y, cardGold)

	return resize.Resize(uint(cardWidth*exportScale), uint(height*exportScale), img, resize.Bilinear)
}

// EncodeWishCard renders the card as PNG bytes.
func EncodeWishCard(c WishCard) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, RenderWishCard(c)); err != nil {
		return nil, fmt.Errorf("encode wish card: %w", err)
	}
	return buf.Bytes(), nil
}

func paintGradient(img *image.RGBA) {
	b := img.Bounds()
	span := b.Dx() + b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := float64(x+y) / float64(span)
			img.SetRGBA(x, y, color.RGBA{
				R: lerp(cardTop.R, cardBottom.R, t),
				G: lerp(cardTop.G, cardBottom.G, t),
				B: lerp(cardTop.B, cardBottom.B, t),
				A: 0xFF,
			})
		}
	}
}

func paintBorder(img *image.RGBA, width int, c color.Color) {
	b := img.Bounds()
	src := image.NewUniform(c)
	draw.Draw(img, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+width), src, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(b.Min.X, b.Max.Y-width, b.Max.X, b.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(b.Max.X-width, b.Min.Y, b.Max.X, b.Max.Y), src, image.Point{}, draw.Src)
}

func drawCentered(img *image.RGBA, face font.Face, text string, baseline int, c color.Color) {
	w := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P((img.Bounds().Dx()-w)/2, baseline),
	}
	d.DrawString(text)
}

// wrap splits text into lines no wider than maxWidth pixels.
func wrap(face font.Face, text string, maxWidth int) []string {
	var lines []string
	var cur string
	for _, word := range strings.Fields(text) {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if cur != "" && font.MeasureString(face, next).Ceil() > maxWidth {
			lines = append(lines, cur)
			cur = word
			continue
		}
		cur = next
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
