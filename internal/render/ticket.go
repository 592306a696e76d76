package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/homeloto/retail-api/internal/domain"
)

const (
	TicketWidth  = 650
	TicketHeight = 280

	headerHeight = 50
	ballRadius   = 24
	ballStep     = 62
	qrSize       = 80
)

// Ticket draws one printable ticket. The barcode carries the transaction id, or the ticket id
// when the ticket was never sold.
func (r *Renderer) Ticket(t domain.Ticket, draw domain.Draw) ([]byte, error) {
	title, err := r.face(true, 24)
	if err != nil {
		return nil, err
	}
	body, err := r.face(false, 16)
	if err != nil {
		return nil, err
	}
	ball, err := r.face(true, 20)
	if err != nil {
		return nil, err
	}
	small, err := r.face(false, 12)
	if err != nil {
		return nil, err
	}

	c := newCanvas(TicketWidth, TicketHeight, color.White)

	c.fill(image.Rect(0, 0, TicketWidth, headerHeight), colorBrand)
	c.text(title, color.White, 20, 34, "HOMELOTO 7/49")
	c.textRight(body, color.White, TicketWidth-90, 32, "#"+t.ID)

	date := t.DrawDate
	if date == "" {
		date = draw.Date
	}
	c.text(body, colorText, 20, 85, fmt.Sprintf("Draw %s   |   %s   |   %d %s", t.DrawID, date, t.Price, r.currency))

	for i, n := range t.Numbers {
		cx := 20 + ballRadius + i*ballStep
		cy := 150
		c.ring(cx, cy, ballRadius, 3, colorBrand)
		c.textCentered(ball, colorText, cx, cy+7, fmt.Sprintf("%d", n))
	}

	code := t.TransactionID
	if code == "" {
		code = t.ID
	}
	bar, err := code128Image(code, 200, 50)
	if err != nil {
		return nil, err
	}
	c.paste(rotate90(bar), image.Pt(TicketWidth-70, headerHeight+10))

	caption := newCanvas(200, 16, color.White)
	caption.text(small, colorMuted, 0, 12, "Check: "+code)
	c.paste(rotate90(caption), image.Pt(TicketWidth-90, headerHeight+10))

	if draw.BroadcastLink != "" {
		live, err := qrImage(draw.BroadcastLink, qrSize)
		if err != nil {
			return nil, err
		}
		c.paste(live, image.Pt(450, 185))
		c.textCentered(small, colorBrand, 450+qrSize/2, 182, "Live")
	}

	return encode(c)
}
