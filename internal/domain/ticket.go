package domain

import "time"

type TicketStatus string

const (
	TicketAvailable TicketStatus = "available"
	TicketSold      TicketStatus = "sold"
	TicketChecked   TicketStatus = "checked"
	TicketPaid      TicketStatus = "paid"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

type Ticket struct {
	ID            string        `json:"id"`
	DrawID        string        `json:"draw_id"`
	TicketNumber  string        `json:"ticket_number"`
	Numbers       Numbers       `json:"numbers"`
	Price         int64         `json:"price"`
	DrawDate      string        `json:"draw_date"`
	Status        TicketStatus  `json:"status"`
	MatchesCount  int           `json:"matches_count"`
	WinAmount     int64         `json:"win_amount"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	SoldBy        string        `json:"sold_by,omitempty"`
	PurchasedAt   *time.Time    `json:"purchased_at,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	PaidBy        string        `json:"paid_by,omitempty"`
}

func (t Ticket) IsWinner() bool {
	return t.WinAmount > 0
}

// CanPay reports whether the ticket may move to paid.
func (t Ticket) CanPay() bool {
	return t.Status == TicketChecked && t.IsWinner()
}
