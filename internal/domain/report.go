package domain

type SellerTotal struct {
	Email string `json:"email"`
	Count int64  `json:"count"`
	Total int64  `json:"total"`
}

type DrawSummary struct {
	DrawID     string                 `json:"draw_id"`
	Status     DrawStatus             `json:"status"`
	ByStatus   map[TicketStatus]int64 `json:"by_status"`
	SoldAmount int64                  `json:"sold_amount"`
	WinAmount  int64                  `json:"win_amount"`
	PaidAmount int64                  `json:"paid_amount"`
}
