package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/homeloto/retail-api/internal/domain"
)

const DrawDateLayout = "2006-01-02"

var drawIDExp = regexp.MustCompile(`^[0-9A-Za-z_-]{1,24}$`)

type CreateDrawRequest struct {
	DrawID        string `json:"draw_id"`
	Date          string `json:"date"`
	Jackpot       int64  `json:"jackpot"`
	TicketCount   int    `json:"ticket_count"`
	BroadcastLink string `json:"broadcast_link"`
}

func (req *CreateDrawRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DrawID, validation.Required, validation.Match(drawIDExp)),
		validation.Field(&req.Date, validation.Required, validation.Date(DrawDateLayout)),
		validation.Field(&req.Jackpot, validation.Min(int64(0))),
		validation.Field(&req.TicketCount, validation.Required, validation.Min(1), validation.Max(domain.MaxTicketsPerDraw)),
		validation.Field(&req.BroadcastLink, is.URL),
	)
}

type ResolveDrawRequest struct {
	Numbers []int `json:"numbers"`
}

func (req *ResolveDrawRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Numbers, validation.Required, validation.Length(domain.NumbersPerTicket, domain.NumbersPerTicket)),
	)
}
