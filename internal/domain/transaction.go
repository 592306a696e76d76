package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// Transaction is one point-of-sale event. Its id is printed as the ticket barcode.
type Transaction struct {
	ID            string        `json:"id"`
	DrawID        string        `json:"draw_id"`
	Seller        string        `json:"seller"`
	TicketIDs     []string      `json:"tickets"`
	TicketURLs    []string      `json:"ticket_urls"`
	ReceiptURL    string        `json:"receipt_url"`
	Amount        int64         `json:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CreatedAt     time.Time     `json:"date"`
}

// HasImages reports whether every printable image was uploaded.
func (t Transaction) HasImages() bool {
	if t.ReceiptURL == "" || len(t.TicketURLs) != len(t.TicketIDs) {
		return false
	}
	for _, u := range t.TicketURLs {
		if u == "" {
			return false
		}
	}
	return true
}

// NewTransactionID returns a numeric id: the local timestamp followed by two random digits.
func NewTransactionID(now time.Time, rng *rand.Rand) string {
	return now.Format("20060102150405") + fmt.Sprintf("%02d", 10+rng.Intn(90))
}
