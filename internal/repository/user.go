package repository

import (
	"context"
	"fmt"

	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	FindByExternalID(ctx context.Context, externalID string) (dao.User, error)
	FindAll(ctx context.Context) ([]dao.User, error)
	Update(ctx context.Context, id uint, columns map[string]any) (dao.User, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	role := user.Role
	if role == "" {
		role = domain.RoleNone
	}

	row := dao.User{
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(role),
		ShopAddress:  user.ShopAddress,
	}
	if user.ExternalID != "" {
		externalID := user.ExternalID
		row.ExternalID = &externalID
	}

	created, err := r.dao.Insert(ctx, row)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (domain.User, error) {
	found, err := r.dao.FindByExternalID(ctx, externalID)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByExternalID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	users := make([]domain.User, 0, len(found))
	for _, u := range found {
		users = append(users, r.daoToDomain(u))
	}

	return users, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uint, role domain.Role) (domain.User, error) {
	updated, err := r.dao.Update(ctx, id, map[string]any{"role": string(role)})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *UserRepository) UpdateShopAddress(ctx context.Context, id uint, address string) (domain.User, error) {
	updated, err := r.dao.Update(ctx, id, map[string]any{"shop_address": address})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

// PasswordHash returns the stored bcrypt hash for the local identity provider.
func (r *UserRepository) PasswordHash(ctx context.Context, email string) (string, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return found.PasswordHash, nil
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	user := domain.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         domain.Role(u.Role),
		ShopAddress:  u.ShopAddress,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.ExternalID != nil {
		user.ExternalID = *u.ExternalID
	}

	return user
}
