package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/homeloto/retail-api/internal/api/handler/v1/response"
	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/pkg/jwthelper"
	"github.com/homeloto/retail-api/internal/service"
)

const (
	claimsKey = "claims"
	userKey   = "user"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errUserAgent    = errors.New("token was issued to another client")
	errRevoked      = errors.New("token has been revoked")
)

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type UserFinder interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type Authenticator struct {
	key     []byte
	revoked RevocationChecker
	users   UserFinder
}

func NewAuthenticator(signingKey string, revoked RevocationChecker, users UserFinder) *Authenticator {
	return &Authenticator{
		key:     []byte(signingKey),
		revoked: revoked,
		users:   users,
	}
}

// VerifyJWT rejects requests without a valid, unrevoked bearer token issued to the same
// user agent. The parsed claims are stored on the context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.key, tokenString)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		if claims.UserAgent != ctx.Request.UserAgent() {
			response.RenderErr(ctx, response.ErrUnauthorized(errUserAgent))
			return
		}

		revoked, err := a.revoked.IsRevoked(ctx.Request.Context(), claims.TokenID())
		if err != nil {
			err = fmt.Errorf("middleware.VerifyJWT -> a.revoked.IsRevoked -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}
		if revoked {
			response.RenderErr(ctx, response.ErrUnauthorized(errRevoked))
			return
		}

		ctx.Set(claimsKey, claims)
		ctx.Next()
	}
}

// RequireRoles loads the caller from the database, so role changes apply to tokens already
// issued. Admins pass every gate. Without roles any activated user passes.
func (a *Authenticator) RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := Claims(ctx)
		if !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		user, err := a.users.GetUser(ctx.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				response.RenderErr(ctx, response.ErrUnauthorized(err))
				return
			}
			err = fmt.Errorf("middleware.RequireRoles -> a.users.GetUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
			return
		}

		allowed := user.Role != domain.RoleNone
		if len(roles) > 0 {
			allowed = user.Role.Allows(roles...)
		}
		if !allowed {
			response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %d with role %q", user.ID, user.Role)))
			return
		}

		ctx.Set(userKey, user)
		ctx.Next()
	}
}

func Claims(ctx *gin.Context) (*jwthelper.UserClaims, bool) {
	v, ok := ctx.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwthelper.UserClaims)
	return claims, ok
}

// CurrentUser returns the user loaded by RequireRoles.
func CurrentUser(ctx *gin.Context) (domain.User, bool) {
	v, ok := ctx.Get(userKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}
