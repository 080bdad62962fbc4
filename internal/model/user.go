package model

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes buyers from suppliers.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
)

// User is a marketplace account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Company      string    `json:"company"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	SupplierID   string    `json:"supplierId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated caller extracted from a token.
type Principal struct {
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Company    string    `json:"company"`
	SupplierID string    `json:"supplierId,omitempty"`
	TokenID    string    `json:"-"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// RegisterRequest is the payload of POST /api/auth/register.
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Name       string `json:"name" validate:"required"`
	Company    string `json:"company" validate:"required"`
	Phone      string `json:"phone"`
	Role       Role   `json:"role" validate:"required,oneof=buyer supplier"`
	SupplierID string `json:"supplierId" validate:"required_if=Role supplier"`
}

// LoginRequest is the payload of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}
