package models

import "time"

type UserRole string

const (
	UserRoleCitizen  UserRole = "citizen"
	UserRoleOperator UserRole = "operator"
	UserRoleAdmin    UserRole = "admin"
)

// User is a registered citizen account. RefreshTokenHash holds the sha256 of
// the single currently-valid refresh token, or nil when no session exists.
type User struct {
	ID               string
	Email            string
	PasswordHash     []byte
	FirstName        string
	LastName         string
	Phone            string
	AvatarURL        *string
	Role             UserRole
	RefreshTokenHash []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
