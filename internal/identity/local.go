package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository"
)

// CredentialStore returns the bcrypt hash stored for an email.
type CredentialStore interface {
	PasswordHash(ctx context.Context, email string) (string, error)
}

// Local keeps bcrypt hashes on the user rows.
type Local struct {
	store CredentialStore
	cost  int
}

func NewLocal(store CredentialStore) *Local {
	return &Local{
		store: store,
		cost:  bcrypt.DefaultCost,
	}
}

// CreateAccount only hashes the password; uniqueness is enforced when the user row is stored.
func (p *Local) CreateAccount(_ context.Context, email, password string) (domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return domain.Account{
		Email:        email,
		PasswordHash: string(hash),
	}, nil
}

// DeleteAccount is a no-op: the account only exists as the user row.
func (p *Local) DeleteAccount(_ context.Context, _ string) error {
	return nil
}

func (p *Local) VerifyPassword(ctx context.Context, email, password string) (domain.Account, error) {
	hash, err := p.store.PasswordHash(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.Account{}, ErrInvalidCredentials
		}

		return domain.Account{}, fmt.Errorf("p.store.PasswordHash -> %w", err)
	}
	if hash == "" {
		return domain.Account{}, ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.Account{}, ErrInvalidCredentials
	}

	return domain.Account{
		Email:        email,
		PasswordHash: hash,
	}, nil
}
