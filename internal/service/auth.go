package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/identity"
	"github.com/homeloto/retail-api/internal/repository"
)

var (
	ErrUserEmailExists  = repository.ErrUserEmailExists
	ErrWrongCredentials = errors.New("wrong email or password")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByExternalID(ctx context.Context, externalID string) (domain.User, error)
}

type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (domain.Account, error)
	VerifyPassword(ctx context.Context, email, password string) (domain.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// Notifier queues an email without waiting for delivery.
type Notifier interface {
	Async(to, subject, body string)
}

type AuthService struct {
	repo        AuthUserRepository
	identity    IdentityProvider
	revoker     TokenRevoker
	notifier    Notifier
	adminNotify string
}

func NewAuthService(repo AuthUserRepository, identity IdentityProvider, revoker TokenRevoker, notifier Notifier, adminNotify string) *AuthService {
	return &AuthService{
		repo:        repo,
		identity:    identity,
		revoker:     revoker,
		notifier:    notifier,
		adminNotify: adminNotify,
	}
}

// Register creates the identity and a local user without any role. An admin has to grant
// one before the user can work.
func (s *AuthService) Register(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)
	account, err := s.identity.CreateAccount(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return domain.User{}, ErrUserEmailExists
		}

		return domain.User{}, fmt.Errorf("s.identity.CreateAccount -> %w", err)
	}

	user, err := s.repo.Create(ctx, domain.User{
		Email:        email,
		ExternalID:   account.UID,
		PasswordHash: account.PasswordHash,
		Role:         domain.RoleNone,
	})
	if err != nil {
		s.dropAccount(ctx, account, err)
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.notifier.Async(s.adminNotify, "HOMELOTO: new user awaiting activation",
		fmt.Sprintf("User %s registered at %s and is waiting for a role.", user.Email, user.CreatedAt.Format(time.RFC3339)))

	return user, nil
}

// Login checks the credentials with the identity provider. Accounts created directly in the
// provider get a local user on first login.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)
	account, err := s.identity.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return domain.User{}, ErrWrongCredentials
		}

		return domain.User{}, fmt.Errorf("s.identity.VerifyPassword -> %w", err)
	}

	user, err := s.findAccountUser(ctx, account, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return domain.User{}, err
	}

	user, err = s.repo.Create(ctx, domain.User{
		Email:      email,
		ExternalID: account.UID,
		Role:       domain.RoleNone,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserEmailExists) {
			// Lost a race with a concurrent first login.
			return s.findAccountUser(ctx, account, email)
		}

		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}
	zap.L().Info("created local user on first login", zap.String("email", email))

	return user, nil
}

// findAccountUser prefers the provider uid, which survives a change of the email's case.
func (s *AuthService) findAccountUser(ctx context.Context, account domain.Account, email string) (domain.User, error) {
	if account.UID != "" {
		user, err := s.repo.FindByExternalID(ctx, account.UID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, fmt.Errorf("s.repo.FindByExternalID -> %w", err)
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	return user, nil
}

// dropAccount removes a provider account whose local user could not be stored, so the email
// can be registered again.
func (s *AuthService) dropAccount(ctx context.Context, account domain.Account, cause error) {
	if account.UID == "" {
		return
	}

	if err := s.identity.DeleteAccount(context.WithoutCancel(ctx), account.UID); err != nil {
		zap.L().Error("orphaned identity account",
			zap.String("uid", account.UID),
			zap.String("email", account.Email),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return
	}
	zap.L().Warn("removed identity account after failed registration",
		zap.String("uid", account.UID), zap.NamedError("cause", cause))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Logout revokes the token id for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, tokenID string, remaining time.Duration) error {
	if err := s.revoker.Revoke(ctx, tokenID, remaining); err != nil {
		return fmt.Errorf("s.revoker.Revoke -> %w", err)
	}

	return nil
}
