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
	"github.com/homeloto/retail-api/internal/api/middleware"
	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetRole(ctx context.Context, id uint, role domain.Role) (domain.User, error)
	UpdateShopAddress(ctx context.Context, id uint, address string) (domain.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// getUserFromContext returns the caller loaded by the role gate.
func getUserFromContext(ctx *gin.Context) (domain.User, *response.Err) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errors.New("no user on context"))
	}

	return user, nil
}

// HandleListUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users [get]
// @Security BearerAuth
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	users, err := h.svc.ListUsers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListUsers -> h.svc.ListUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleUpdateRole godoc
// @Summary      Change the role of a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userID  path      int                        true  "user id"
// @Param        input   body      request.UpdateRoleRequest  true  "new role"
// @Success      200     {object}  domain.User
// @Failure      400     {object}  response.Err
// @Failure      403     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /users/{userID}/role [patch]
// @Security BearerAuth
func (h *UserHandler) HandleUpdateRole(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("userID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid user ID: %w", err)))
		return
	}

	var req request.UpdateRoleRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.SetRole(ctx.Request.Context(), uint(userID), domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
		case errors.Is(err, service.ErrInvalidRole):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateRole -> h.svc.SetRole -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleGetSettings godoc
// @Summary      Get the caller's shop settings
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.SettingsResponse
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Router       /me/settings [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetSettings(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, response.SettingsResponse{ShopAddress: user.ShopAddress})
}

// HandleUpdateSettings godoc
// @Summary      Update the caller's shop address
// @Description  The address is printed on every receipt the caller sells.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input  body      request.SettingsRequest  true  "settings"
// @Success      200    {object}  response.SettingsResponse
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /me/settings [put]
// @Security BearerAuth
func (h *UserHandler) HandleUpdateSettings(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateShopAddress(ctx.Request.Context(), user.ID, req.ShopAddress)
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateSettings -> h.svc.UpdateShopAddress -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.SettingsResponse{ShopAddress: updated.ShopAddress})
}
