package domain

import "time"

type Role string

const (
	RoleNone      Role = "none"
	RoleCashier   Role = "cashier"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleNone, RoleCashier, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// Allows reports whether a user with role r passes a gate open to any of roles.
// Admins pass every gate.
func (r Role) Allows(roles ...Role) bool {
	if r == RoleAdmin {
		return true
	}
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	ExternalID   string    `json:"external_id,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	ShopAddress  string    `json:"shop_address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Account is an identity as seen by the identity provider.
type Account struct {
	UID          string
	Email        string
	PasswordHash string
}
