package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homeloto/retail-api/internal/api/handler/v1/request"
	"github.com/homeloto/retail-api/internal/api/handler/v1/response"
	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/service"
)

type PayoutService interface {
	ScanTransaction(ctx context.Context, code string) ([]domain.Ticket, error)
	Pay(ctx context.Context, ticketID, transactionID, cashier string) (domain.Ticket, error)
	CheckTicket(ctx context.Context, ticketID string) (domain.Ticket, error)
}

type PayoutHandler struct {
	svc PayoutService
}

func NewPayoutHandler(svc PayoutService) *PayoutHandler {
	return &PayoutHandler{
		svc: svc,
	}
}

// HandleScanTransaction godoc
// @Summary      Tickets of a scanned transaction
// @Description  Accepts the bare id or the CHECK:<id> payload of the receipt QR code.
// @Tags         payouts
// @Produce      json
// @Param        trID  path      string  true  "transaction id"
// @Success      200   {array}   domain.Ticket
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /transactions/{trID}/tickets [get]
// @Security BearerAuth
func (h *PayoutHandler) HandleScanTransaction(ctx *gin.Context) {
	code := ctx.Param("trID")

	tickets, err := h.svc.ScanTransaction(ctx.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("transaction", "ID", code))
			return
		}
		err = fmt.Errorf("v1.HandleScanTransaction -> h.svc.ScanTransaction -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandlePay godoc
// @Summary      Pay out a winning ticket
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Param        input  body      request.PayoutRequest  true  "ticket"
// @Success      200    {object}  domain.Ticket
// @Failure      400    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      422    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /payouts [post]
// @Security BearerAuth
func (h *PayoutHandler) HandlePay(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.PayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.Pay(ctx.Request.Context(), req.TicketID, req.TransactionID, user.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", req.TicketID))
		case errors.Is(err, service.ErrTicketNotInTransaction):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrTicketAlreadyPaid):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrTicketNotWinner):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		default:
			err = fmt.Errorf("v1.HandlePay -> h.svc.Pay -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

// HandleCheckTicket godoc
// @Summary      Public ticket check
// @Tags         payouts
// @Produce      json
// @Param        ticketID  path      string  true  "ticket id"
// @Success      200       {object}  response.TicketCheck
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /tickets/{ticketID}/check [get]
func (h *PayoutHandler) HandleCheckTicket(ctx *gin.Context) {
	ticketID := ctx.Param("ticketID")

	ticket, err := h.svc.CheckTicket(ctx.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", ticketID))
			return
		}
		err = fmt.Errorf("v1.HandleCheckTicket -> h.svc.CheckTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewTicketCheck(ticket))
}
