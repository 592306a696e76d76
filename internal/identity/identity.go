// Package identity verifies email/password credentials against the configured provider.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/homeloto/retail-api/internal/config"
	"github.com/homeloto/retail-api/internal/domain"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Provider is implemented by Local and Firebase.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (domain.Account, error)
	VerifyPassword(ctx context.Context, email, password string) (domain.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
}

// New builds the provider selected by conf.Provider.
func New(ctx context.Context, conf *config.AuthConfig, store CredentialStore) (Provider, error) {
	switch conf.Provider {
	case config.AuthProviderFirebase:
		p, err := NewFirebase(ctx, conf)
		if err != nil {
			return nil, fmt.Errorf("identity.NewFirebase -> %w", err)
		}
		return p, nil
	case config.AuthProviderLocal, "":
		return NewLocal(store), nil
	default:
		return nil, fmt.Errorf("identity: unknown provider %q", conf.Provider)
	}
}
