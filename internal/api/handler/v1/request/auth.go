package request

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/homeloto/retail-api/internal/domain"
)

const (
	passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`
	maxShopAddressLength = 200
)

var (
	errInvalidPassword = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")
	errInvalidRole     = errors.New("role must be one of none, cashier, organizer, admin")

	// Go's regexp has no look-ahead.
	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *RegisterRequest) Validate() error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
	if err != nil {
		return err
	}

	ok, err := passwordExp.MatchString(req.Password)
	if err != nil || !ok {
		return errInvalidPassword
	}

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (req *UpdateRoleRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Role, validation.Required),
	)
	if err != nil {
		return err
	}
	if !domain.Role(req.Role).Valid() {
		return errInvalidRole
	}

	return nil
}

type SettingsRequest struct {
	ShopAddress string `json:"shop_address"`
}

func (req *SettingsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ShopAddress, validation.Length(0, maxShopAddressLength)),
	)
}
