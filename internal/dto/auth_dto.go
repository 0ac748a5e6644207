package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/jangbuk/volunteer-backend/internal/models"
)

type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SocialCallbackRequest struct {
	Code string `json:"code"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type RoleUpdateRequest struct {
	Role string `json:"role"`
}

type FCMTokenRequest struct {
	Token string `json:"token"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID           `json:"id"`
	Email     string              `json:"email"`
	Name      string              `json:"name"`
	Phone     *string             `json:"phone,omitempty"`
	Role      models.Role         `json:"role"`
	Provider  models.AuthProvider `json:"provider"`
	CreatedAt time.Time           `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
	}
}

type AuthURLResponse struct {
	URL string `json:"url"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
