package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/homeloto/retail-api/internal/domain"
)

var errEmptyTicketID = errors.New("ticket ids must not be empty")

type SaleRequest struct {
	DrawID        string   `json:"draw_id"`
	TicketIDs     []string `json:"ticket_ids"`
	PaymentMethod string   `json:"payment_method"`
}

func (req *SaleRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.DrawID, validation.Required),
		validation.Field(&req.TicketIDs, validation.Required, validation.Length(1, domain.MaxTicketsPerSale)),
		validation.Field(&req.PaymentMethod, validation.Required,
			validation.In(string(domain.PaymentCash), string(domain.PaymentCard))),
	)
	if err != nil {
		return err
	}

	for _, id := range req.TicketIDs {
		if id == "" {
			return errEmptyTicketID
		}
	}

	return nil
}

type PayoutRequest struct {
	TicketID      string `json:"ticket_id"`
	TransactionID string `json:"transaction_id"`
}

func (req *PayoutRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TicketID, validation.Required),
	)
}
