package dto

import (
	"time"

	"github.com/yigit/unicampus/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"3600"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token   TokenResponse   `json:"token"`
	Account AccountResponse `json:"account"`
}

// CreateAccountRequest creates a login account; without a password a temporary one is issued
type CreateAccountRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Role     string  `json:"role" binding:"required,oneof=ADMIN STAFF STUDENT PARENT"`
	Password string  `json:"password" binding:"omitempty,min=8"`
	EntityID *string `json:"entityId"`
}

// BindEntityRequest points an account at an existing profile entity
type BindEntityRequest struct {
	EntityID string `json:"entityId" binding:"required"`
}

// UpdateProfileRequest writes attributes to the caller's profile entity
type UpdateProfileRequest struct {
	Type        string                 `json:"type"` // profile type when the entity does not exist yet
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Attributes  map[string]interface{} `json:"attributes" binding:"required"`
}

// AccountResponse represents account information
type AccountResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	IsActive           bool       `json:"isActive"`
	MustChangePassword bool       `json:"mustChangePassword"`
	TempPassword       *string    `json:"tempPassword,omitempty"` // only in the creation response
	EntityID           *string    `json:"entityId,omitempty"`
	LastLogin          *time.Time `json:"lastLogin,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// NewAccountResponse maps an account; the temporary password is never included
func NewAccountResponse(account *models.Account) AccountResponse {
	return AccountResponse{
		ID:                 account.ID,
		Email:              account.Email,
		Role:               string(account.Role),
		IsActive:           account.IsActive,
		MustChangePassword: account.MustChangePassword,
		EntityID:           account.EntityID,
		LastLogin:          account.LastLogin,
		CreatedAt:          account.CreatedAt,
	}
}
