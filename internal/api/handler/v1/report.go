package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homeloto/retail-api/internal/api/handler/v1/response"
	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/service"
)

type ReportService interface {
	Sellers(ctx context.Context) ([]domain.SellerTotal, error)
	SellerTransactions(ctx context.Context, email string) ([]domain.Transaction, error)
	DrawSummary(ctx context.Context, drawID string) (domain.DrawSummary, error)
}

type ReportHandler struct {
	svc ReportService
}

func NewReportHandler(svc ReportService) *ReportHandler {
	return &ReportHandler{
		svc: svc,
	}
}

// HandleSellers godoc
// @Summary      Tickets sold per seller
// @Tags         reports
// @Produce      json
// @Success      200  {array}   domain.SellerTotal
// @Failure      500  {object}  response.Err
// @Router       /reports/sellers [get]
// @Security BearerAuth
func (h *ReportHandler) HandleSellers(ctx *gin.Context) {
	totals, err := h.svc.Sellers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleSellers -> h.svc.Sellers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, totals)
}

// HandleSellerTransactions godoc
// @Summary      Transactions of a seller
// @Tags         reports
// @Produce      json
// @Param        email  path      string  true  "seller email"
// @Success      200    {array}   domain.Transaction
// @Failure      500    {object}  response.Err
// @Router       /reports/sellers/{email}/transactions [get]
// @Security BearerAuth
func (h *ReportHandler) HandleSellerTransactions(ctx *gin.Context) {
	trs, err := h.svc.SellerTransactions(ctx.Request.Context(), ctx.Param("email"))
	if err != nil {
		err = fmt.Errorf("v1.HandleSellerTransactions -> h.svc.SellerTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, trs)
}

// HandleDrawSummary godoc
// @Summary      Ticket counts and amounts of a draw
// @Tags         reports
// @Produce      json
// @Param        drawID  path      string  true  "draw id"
// @Success      200     {object}  domain.DrawSummary
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /reports/draws/{drawID} [get]
// @Security BearerAuth
func (h *ReportHandler) HandleDrawSummary(ctx *gin.Context) {
	drawID := ctx.Param("drawID")

	summary, err := h.svc.DrawSummary(ctx.Request.Context(), drawID)
	if err != nil {
		if errors.Is(err, service.ErrDrawNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("draw", "ID", drawID))
			return
		}
		err = fmt.Errorf("v1.HandleDrawSummary -> h.svc.DrawSummary -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
