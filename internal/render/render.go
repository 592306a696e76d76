// Package render draws printable ticket and receipt images as PNG.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	colorBrand = color.RGBA{R: 0x4B, G: 0x00, B: 0x82, A: 0xFF}
	colorText  = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}
	colorMuted = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xFF}
)

// Renderer holds parsed fonts. Faces are created per image because they are not safe for
// concurrent use, while the parsed fonts are.
type Renderer struct {
	regular  *opentype.Font
	bold     *opentype.Font
	currency string
}

func New(currency string) (*Renderer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("opentype.Parse regular -> %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("opentype.Parse bold -> %w", err)
	}

	return &Renderer{
		regular:  regular,
		bold:     bold,
		currency: currency,
	}, nil
}

func (r *Renderer) face(bold bool, size float64) (font.Face, error) {
	f := r.regular
	if bold {
		f = r.bold
	}

	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// canvas is an RGBA image with text helpers.
type canvas struct {
	*image.RGBA
}

func newCanvas(w, h int, bg color.Color) canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	return canvas{img}
}

func (c canvas) fill(rect image.Rectangle, col color.Color) {
	draw.Draw(c.RGBA, rect, image.NewUniform(col), image.Point{}, draw.Src)
}

// text draws s with its baseline at y.
func (c canvas) text(face font.Face, col color.Color, x, y int, s string) {
	d := font.Drawer{
		Dst:  c.RGBA,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func (c canvas) textCentered(face font.Face, col color.Color, cx, y int, s string) {
	c.text(face, col, cx-font.MeasureString(face, s).Ceil()/2, y, s)
}

func (c canvas) textRight(face font.Face, col color.Color, right, y int, s string) {
	c.text(face, col, right-font.MeasureString(face, s).Ceil(), y, s)
}

// ring strokes a circle of the given outer radius and width.
func (c canvas) ring(cx, cy, radius, width int, col color.Color) {
	outer := radius * radius
	inner := (radius - width) * (radius - width)
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			d := (x-cx)*(x-cx) + (y-cy)*(y-cy)
			if d <= outer && d >= inner {
				c.Set(x, y, col)
			}
		}
	}
}

func (c canvas) hline(x0, x1, y int, col color.Color) {
	c.fill(image.Rect(x0, y, x1, y+1), col)
}

func (c canvas) paste(src image.Image, at image.Point) {
	b := src.Bounds()
	draw.Draw(c.RGBA, image.Rectangle{Min: at, Max: at.Add(b.Size())}, src, b.Min, draw.Over)
}

// rotate90 turns an image a quarter turn counter-clockwise.
func rotate90(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(y-b.Min.Y, b.Max.X-1-x, src.At(x, y))
		}
	}

	return dst
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png.Encode -> %w", err)
	}

	return buf.Bytes(), nil
}
