package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Email        string  `gorm:"unique;not null"`
	ExternalID   *string `gorm:"uniqueIndex"`
	PasswordHash string

	Role        string `gorm:"not null;default:none"`
	ShopAddress string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	return d.first(ctx, "id = ?", id)
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	return d.first(ctx, "email = ?", email)
}

func (d *UserDAO) FindByExternalID(ctx context.Context, externalID string) (User, error) {
	return d.first(ctx, "external_id = ?", externalID)
}

func (d *UserDAO) first(ctx context.Context, query string, args ...any) (User, error) {
	var user User

	result := d.db.WithContext(ctx).Where(query, args...).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindAll(ctx context.Context) ([]User, error) {
	var users []User

	result := d.db.WithContext(ctx).Order("email").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

// Update writes the given columns and returns the fresh row.
func (d *UserDAO) Update(ctx context.Context, id uint, columns map[string]any) (User, error) {
	result := d.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return User{}, ErrUserNotFound
	}

	return d.FindByID(ctx, id)
}
