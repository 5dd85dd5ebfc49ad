package domain

import "time"

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User is an operator account. SecretKey binds issued tokens to the account;
// rotating it invalidates every outstanding token.
type User struct {
	ID           int64
	RealName     string
	Role         string
	PasswordHash string
	SecretKey    string
	IsDeleted    bool
	CreatedAt    time.Time
}

// UserUpdate carries optional account changes; nil fields keep the stored
// value.
type UserUpdate struct {
	RealName     *string
	Role         *string
	PasswordHash *string
}
