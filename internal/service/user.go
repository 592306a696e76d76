package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
	ErrInvalidRole  = errors.New("invalid role")
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id uint, role domain.Role) (domain.User, error)
	UpdateShopAddress(ctx context.Context, id uint, address string) (domain.User, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return users, nil
}

func (s *UserService) SetRole(ctx context.Context, id uint, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.UpdateRole -> %w", err)
	}

	return user, nil
}

func (s *UserService) UpdateShopAddress(ctx context.Context, id uint, address string) (domain.User, error) {
	user, err := s.repo.UpdateShopAddress(ctx, id, strings.TrimSpace(address))
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.UpdateShopAddress -> %w", err)
	}

	return user, nil
}
