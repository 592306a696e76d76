package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/homeloto/retail-api/internal/domain"
)

const (
	ReceiptWidth = 300

	receiptBaseHeight  = 450
	receiptLineHeight  = 20
	addressWrap        = 30
	addressLineHeight  = 16
	addressLinesInBase = 3
	receiptQRSize      = 100
)

// ReceiptHeight is the image height for n tickets and the given number of address lines.
func ReceiptHeight(n, addressLines int) int {
	h := receiptBaseHeight + receiptLineHeight*n
	if extra := addressLines - addressLinesInBase; extra > 0 {
		h += extra * addressLineHeight
	}

	return h
}

// Receipt draws the sale receipt with one line per ticket and a QR for the payout check.
func (r *Renderer) Receipt(tr domain.Transaction, tickets []domain.Ticket, shopAddress string, loc *time.Location) ([]byte, error) {
	title, err := r.face(true, 22)
	if err != nil {
		return nil, err
	}
	body, err := r.face(false, 14)
	if err != nil {
		return nil, err
	}
	small, err := r.face(false, 13)
	if err != nil {
		return nil, err
	}
	strong, err := r.face(true, 16)
	if err != nil {
		return nil, err
	}

	address := wrap(shopAddress, addressWrap)
	c := newCanvas(ReceiptWidth, ReceiptHeight(len(tickets), len(address)), color.White)
	mid := ReceiptWidth / 2

	y := 40
	c.textCentered(title, colorBrand, mid, y, "HOMELOTO 7/49")
	y += 25
	for _, line := range address {
		c.textCentered(small, colorMuted, mid, y, line)
		y += addressLineHeight
	}
	if len(address) < addressLinesInBase {
		y += (addressLinesInBase - len(address)) * addressLineHeight
	}

	if loc == nil {
		loc = time.Local
	}
	y += 10
	c.text(body, colorText, 15, y, "Date: "+tr.CreatedAt.In(loc).Format("2006-01-02 15:04"))
	y += receiptLineHeight
	c.text(body, colorText, 15, y, "Receipt: "+tr.ID)
	y += receiptLineHeight
	c.text(body, colorText, 15, y, "Payment: "+string(tr.PaymentMethod))
	y += 12
	c.hline(15, ReceiptWidth-15, y, colorMuted)
	y += receiptLineHeight + 5

	var total int64
	for _, t := range tickets {
		total += t.Price
		c.text(body, colorText, 15, y, fmt.Sprintf("#%s (T-%s)", t.TicketNumber, t.DrawID))
		c.textRight(body, colorText, ReceiptWidth-15, y, fmt.Sprintf("%dr", t.Price))
		y += receiptLineHeight
	}

	c.hline(15, ReceiptWidth-15, y-8, colorMuted)
	y += 15
	c.text(strong, colorText, 15, y, fmt.Sprintf("TOTAL: %d %s", total, r.currency))
	y += 20

	code, err := qrImage("CHECK:"+tr.ID, receiptQRSize)
	if err != nil {
		return nil, err
	}
	c.paste(code, image.Pt(mid-code.Bounds().Dx()/2, y))
	y += code.Bounds().Dy() + 25
	c.textCentered(small, colorMuted, mid, y, "Good luck!")

	return encode(c)
}

// wrap breaks s into lines of at most width runes, on spaces where possible.
func wrap(s string, width int) []string {
	var lines []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
	}

	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > width {
			flush()
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}

		switch {
		case len(cur) == 0:
			cur = append(cur, w...)
		case len(cur)+1+len(w) <= width:
			cur = append(cur, ' ')
			cur = append(cur, w...)
		default:
			flush()
			cur = append(cur, w...)
		}
	}
	flush()

	return lines
}
