package render

import (
	"fmt"
	"image"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
)

// code128Image renders content at least w×h pixels; long content grows wider than w.
func code128Image(content string, w, h int) (image.Image, error) {
	bc, err := code128.Encode(content)
	if err != nil {
		return nil, fmt.Errorf("code128.Encode -> %w", err)
	}
	if dx := bc.Bounds().Dx(); dx > w {
		w = dx
	}

	scaled, err := barcode.Scale(bc, w, h)
	if err != nil {
		return nil, fmt.Errorf("barcode.Scale -> %w", err)
	}

	return scaled, nil
}

// qrImage renders a square QR code of at least size pixels.
func qrImage(content string, size int) (image.Image, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qr.Encode -> %w", err)
	}
	if dx := code.Bounds().Dx(); dx > size {
		size = dx
	}

	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("barcode.Scale -> %w", err)
	}

	return scaled, nil
}
