package model

import "time"

// UserType is the coarse role of an account. Fine-grained capabilities are
// permission grants; the type only drives type-based policies.
type UserType string

const (
	UserTypeAdmin   UserType = "admin"
	UserTypeTeacher UserType = "teacher"
	UserTypeStudent UserType = "student"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeTeacher, UserTypeStudent:
		return true
	}
	return false
}

// UserStatus is the account lifecycle state. Accounts are never deleted,
// only disabled.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User represents a system account (admin, teacher, or student).
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	UserType     UserType   `json:"user_type"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token       string   `json:"token"`
	User        User     `json:"user"`
	Permissions []string `json:"permissions"`
}

// RefreshRequest carries the token to renew.
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// CreateUserRequest is the payload for creating a new account.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	UserType string `json:"user_type" binding:"required,oneof=admin teacher student"`
}

// UpdateUserRequest is the payload for updating an existing account.
type UpdateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
	UserType string `json:"user_type" binding:"required,oneof=admin teacher student"`
}
