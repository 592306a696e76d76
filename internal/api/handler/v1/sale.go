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

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 128
	pngContentType       = "image/png"
)

type SaleService interface {
	Sell(ctx context.Context, seller domain.User, req service.SaleRequest) (domain.Transaction, bool, error)
	History(ctx context.Context, seller string) ([]domain.Transaction, error)
	Reprint(ctx context.Context, transactionID string) (domain.Transaction, error)
	ReceiptPNG(ctx context.Context, transactionID string) ([]byte, error)
	TicketPNG(ctx context.Context, ticketID string) ([]byte, error)
}

type SaleHandler struct {
	svc SaleService
}

func NewSaleHandler(svc SaleService) *SaleHandler {
	return &SaleHandler{
		svc: svc,
	}
}

// HandleSell godoc
// @Summary      Sell tickets
// @Description  Marks the tickets sold in one transaction and publishes the ticket and receipt
// @Description  images. Repeating a request with the same Idempotency-Key returns the first result.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string               false  "client generated key"
// @Param        input            body      request.SaleRequest  true   "sale"
// @Success      201              {object}  domain.Transaction
// @Success      200              {object}  domain.Transaction   "replayed"
// @Failure      400              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /sales [post]
// @Security BearerAuth
func (h *SaleHandler) HandleSell(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	key := ctx.GetHeader(idempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLen {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("%s is longer than %d bytes", idempotencyKeyHeader, maxIdempotencyKeyLen)))
		return
	}

	tr, replayed, err := h.svc.Sell(ctx.Request.Context(), user, service.SaleRequest{
		DrawID:         req.DrawID,
		TicketIDs:      req.TicketIDs,
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		IdempotencyKey: key,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySale),
			errors.Is(err, service.ErrDuplicateTickets),
			errors.Is(err, service.ErrInvalidPaymentMethod):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrDrawNotFound):
			response.RenderErr(ctx, response.ErrNotFound("draw", "ID", req.DrawID))
		case errors.Is(err, service.ErrDrawClosed),
			errors.Is(err, service.ErrTicketUnavailable),
			errors.Is(err, service.ErrSaleInProgress):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleSell -> h.svc.Sell -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	if replayed {
		ctx.Header(replayedHeader, "true")
		ctx.JSON(http.StatusOK, tr)
		return
	}

	ctx.JSON(http.StatusCreated, tr)
}

// HandleHistory godoc
// @Summary      The caller's sales, newest first
// @Tags         sales
// @Produce      json
// @Success      200  {array}   domain.Transaction
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /sales/history [get]
// @Security BearerAuth
func (h *SaleHandler) HandleHistory(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	trs, err := h.svc.History(ctx.Request.Context(), user.Email)
	if err != nil {
		err = fmt.Errorf("v1.HandleHistory -> h.svc.History -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, trs)
}

// HandlePrint godoc
// @Summary      Image urls of a transaction
// @Description  Images that failed to upload at sale time are rendered again first.
// @Tags         sales
// @Produce      json
// @Param        trID  path      string  true  "transaction id"
// @Success      200   {object}  response.PrintResponse
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /transactions/{trID}/print [get]
// @Security BearerAuth
func (h *SaleHandler) HandlePrint(ctx *gin.Context) {
	trID := ctx.Param("trID")

	tr, err := h.svc.Reprint(ctx.Request.Context(), trID)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("transaction", "ID", trID))
			return
		}
		err = fmt.Errorf("v1.HandlePrint -> h.svc.Reprint -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.PrintResponse{
		TransactionID: tr.ID,
		TicketURLs:    tr.TicketURLs,
		ReceiptURL:    tr.ReceiptURL,
	})
}

// HandleReceiptImage godoc
// @Summary      Render the receipt of a transaction
// @Tags         sales
// @Produce      png
// @Param        trID  path  string  true  "transaction id"
// @Success      200
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /transactions/{trID}/receipt.png [get]
// @Security BearerAuth
func (h *SaleHandler) HandleReceiptImage(ctx *gin.Context) {
	trID := ctx.Param("trID")

	png, err := h.svc.ReceiptPNG(ctx.Request.Context(), trID)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("transaction", "ID", trID))
			return
		}
		err = fmt.Errorf("v1.HandleReceiptImage -> h.svc.ReceiptPNG -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, pngContentType, png)
}

// HandleTicketImage godoc
// @Summary      Render a ticket
// @Tags         sales
// @Produce      png
// @Param        ticketID  path  string  true  "ticket id"
// @Success      200
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /tickets/{ticketID}/image.png [get]
// @Security BearerAuth
func (h *SaleHandler) HandleTicketImage(ctx *gin.Context) {
	ticketID := ctx.Param("ticketID")

	png, err := h.svc.TicketPNG(ctx.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", ticketID))
			return
		}
		err = fmt.Errorf("v1.HandleTicketImage -> h.svc.TicketPNG -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, pngContentType, png)
}
