package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the access level of a user. Stored as a string column.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

var ErrInvalidRole = errors.New("invalid role (expected admin or user)")

// ParseRole validates an externally supplied role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// AuthProvider identifies how an account was created.
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "email"
	ProviderGoogle AuthProvider = "google"
	ProviderKakao  AuthProvider = "kakao"
)

// User is the credential store record. PasswordHash is set only for
// email-provider accounts; ProviderID only for social accounts.
type User struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string       `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash *string      `gorm:"size:255" json:"-"`
	Name         string       `gorm:"size:100;not null" json:"name"`
	Phone        *string      `gorm:"size:20" json:"phone,omitempty"`
	Role         Role         `gorm:"size:20;default:'user'" json:"role"`
	Provider     AuthProvider `gorm:"size:20;default:'email';uniqueIndex:idx_users_provider_identity" json:"provider"`
	ProviderID   *string      `gorm:"size:255;uniqueIndex:idx_users_provider_identity" json:"-"`
	FCMToken     *string      `gorm:"size:500" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsAdmin reports whether the user may access admin-only routes.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
