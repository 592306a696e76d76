package domain

import (
	"fmt"
	"time"
)

type DrawStatus string

const (
	DrawOpen   DrawStatus = "open"
	DrawClosed DrawStatus = "closed"
)

const (
	MaxTicketsPerDraw = 10000
	MaxTicketsPerSale = 100
)

type Draw struct {
	ID             string     `json:"id"`
	Date           string     `json:"date"`
	Jackpot        int64      `json:"jackpot"`
	TotalTickets   int        `json:"total_tickets"`
	BroadcastLink  string     `json:"broadcast_link,omitempty"`
	Status         DrawStatus `json:"status"`
	WinningNumbers Numbers    `json:"winning_numbers"`
	CreatedBy      string     `json:"created_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (d Draw) IsOpen() bool {
	return d.Status == DrawOpen
}

// TicketNumber formats the position of a ticket inside its draw.
func TicketNumber(n int) string {
	return fmt.Sprintf("%03d", n)
}

// TicketID builds the printed ticket identifier "<draw>-<NNN>".
func TicketID(drawID string, n int) string {
	return drawID + "-" + TicketNumber(n)
}
