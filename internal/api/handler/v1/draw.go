package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/homeloto/retail-api/internal/api/handler/v1/request"
	"github.com/homeloto/retail-api/internal/api/handler/v1/response"
	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/service"
)

type DrawService interface {
	CreateDraw(ctx context.Context, draw domain.Draw, count int, createdBy string) (domain.Draw, error)
	GetDraw(ctx context.Context, id string) (domain.Draw, error)
	ListDraws(ctx context.Context, status domain.DrawStatus) ([]domain.Draw, error)
	DrawTickets(ctx context.Context, drawID string, status domain.TicketStatus) ([]domain.Ticket, error)
	Resolve(ctx context.Context, drawID string, numbers domain.Numbers, resolvedBy string) (domain.DrawResult, error)
	Winners(ctx context.Context, drawID string, matches int) ([]domain.Ticket, error)
}

type DrawHandler struct {
	svc DrawService
}

func NewDrawHandler(svc DrawService) *DrawHandler {
	return &DrawHandler{
		svc: svc,
	}
}

// HandleCreateDraw godoc
// @Summary      Create a draw and print its tickets
// @Tags         draws
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateDrawRequest  true  "draw"
// @Success      201    {object}  domain.Draw
// @Failure      400    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /draws [post]
// @Security BearerAuth
func (h *DrawHandler) HandleCreateDraw(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateDrawRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	draw, err := h.svc.CreateDraw(ctx.Request.Context(), domain.Draw{
		ID:            req.DrawID,
		Date:          req.Date,
		Jackpot:       req.Jackpot,
		BroadcastLink: req.BroadcastLink,
	}, req.TicketCount, user.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDrawExists):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrInvalidTicketCount):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleCreateDraw -> h.svc.CreateDraw -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, draw)
}

// HandleListDraws godoc
// @Summary      List draws, newest first
// @Tags         draws
// @Produce      json
// @Param        status  query     string  false  "open or closed"
// @Success      200     {array}   domain.Draw
// @Failure      400     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /draws [get]
// @Security BearerAuth
func (h *DrawHandler) HandleListDraws(ctx *gin.Context) {
	status := domain.DrawStatus(ctx.Query("status"))
	if status != "" && status != domain.DrawOpen && status != domain.DrawClosed {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("unknown draw status %q", status)))
		return
	}

	draws, err := h.svc.ListDraws(ctx.Request.Context(), status)
	if err != nil {
		err = fmt.Errorf("v1.HandleListDraws -> h.svc.ListDraws -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, draws)
}

// HandleGetDraw godoc
// @Summary      Get a draw
// @Tags         draws
// @Produce      json
// @Param        drawID  path      string  true  "draw id"
// @Success      200     {object}  domain.Draw
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /draws/{drawID} [get]
// @Security BearerAuth
func (h *DrawHandler) HandleGetDraw(ctx *gin.Context) {
	drawID := ctx.Param("drawID")

	draw, err := h.svc.GetDraw(ctx.Request.Context(), drawID)
	if err != nil {
		if errors.Is(err, service.ErrDrawNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("draw", "ID", drawID))
			return
		}
		err = fmt.Errorf("v1.HandleGetDraw -> h.svc.GetDraw -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, draw)
}

// HandleDrawTickets godoc
// @Summary      List the tickets of a draw
// @Description  Cashiers ask for status=available; organizers read the whole draw map.
// @Tags         draws
// @Produce      json
// @Param        drawID  path      string  true   "draw id"
// @Param        status  query     string  false  "available, sold, checked or paid"
// @Success      200     {array}   domain.Ticket
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /draws/{drawID}/tickets [get]
// @Security BearerAuth
func (h *DrawHandler) HandleDrawTickets(ctx *gin.Context) {
	drawID := ctx.Param("drawID")

	status := domain.TicketStatus(ctx.Query("status"))
	switch status {
	case "", domain.TicketAvailable, domain.TicketSold, domain.TicketChecked, domain.TicketPaid:
	default:
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("unknown ticket status %q", status)))
		return
	}

	tickets, err := h.svc.DrawTickets(ctx.Request.Context(), drawID, status)
	if err != nil {
		if errors.Is(err, service.ErrDrawNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("draw", "ID", drawID))
			return
		}
		err = fmt.Errorf("v1.HandleDrawTickets -> h.svc.DrawTickets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandleResolveDraw godoc
// @Summary      Enter the winning numbers and grade the sold tickets
// @Tags         draws
// @Accept       json
// @Produce      json
// @Param        drawID  path      string                      true  "draw id"
// @Param        input   body      request.ResolveDrawRequest  true  "winning numbers"
// @Success      200     {object}  domain.DrawResult
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      409     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /draws/{drawID}/resolve [post]
// @Security BearerAuth
func (h *DrawHandler) HandleResolveDraw(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	drawID := ctx.Param("drawID")

	var req request.ResolveDrawRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.Resolve(ctx.Request.Context(), drawID, domain.Numbers(req.Numbers), user.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidNumbers):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrDrawNotFound):
			response.RenderErr(ctx, response.ErrNotFound("draw", "ID", drawID))
		case errors.Is(err, service.ErrDrawClosed):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleResolveDraw -> h.svc.Resolve -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleWinners godoc
// @Summary      List winning tickets, biggest win first
// @Tags         draws
// @Produce      json
// @Param        drawID   path      string  true   "draw id"
// @Param        matches  query     string  false  "match count or all"
// @Success      200      {array}   domain.Ticket
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /draws/{drawID}/winners [get]
// @Security BearerAuth
func (h *DrawHandler) HandleWinners(ctx *gin.Context) {
	drawID := ctx.Param("drawID")

	matches := -1
	if q := ctx.Query("matches"); q != "" && q != "all" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 || n > domain.NumbersPerTicket {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("matches must be 0..%d or all", domain.NumbersPerTicket)))
			return
		}
		matches = n
	}

	winners, err := h.svc.Winners(ctx.Request.Context(), drawID, matches)
	if err != nil {
		if errors.Is(err, service.ErrDrawNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("draw", "ID", drawID))
			return
		}
		err = fmt.Errorf("v1.HandleWinners -> h.svc.Winners -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, winners)
}
