package response

import "github.com/homeloto/retail-api/internal/domain"

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
	User      domain.User `json:"user"`
}

type SettingsResponse struct {
	ShopAddress string `json:"shop_address"`
}

// TicketCheck is the public view of a ticket: no seller or transaction details.
type TicketCheck struct {
	ID           string              `json:"id"`
	DrawID       string              `json:"draw_id"`
	DrawDate     string              `json:"draw_date"`
	Numbers      []int               `json:"numbers"`
	Status       domain.TicketStatus `json:"status"`
	MatchesCount int                 `json:"matches_count"`
	WinAmount    int64               `json:"win_amount"`
	Payable      bool                `json:"payable"`
}

func NewTicketCheck(t domain.Ticket) TicketCheck {
	return TicketCheck{
		ID:           t.ID,
		DrawID:       t.DrawID,
		DrawDate:     t.DrawDate,
		Numbers:      t.Numbers,
		Status:       t.Status,
		MatchesCount: t.MatchesCount,
		WinAmount:    t.WinAmount,
		Payable:      t.CanPay(),
	}
}

type PrintResponse struct {
	TransactionID string   `json:"transaction_id"`
	TicketURLs    []string `json:"ticket_urls"`
	ReceiptURL    string   `json:"receipt_url"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
