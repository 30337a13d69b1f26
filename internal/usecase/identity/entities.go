package identity

import (
	"errors"
	"time"

	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/user"
)

var (
	ErrBadCredentials  = errors.New("invalid email or password")
	ErrBanned          = errors.New("account is banned")
	ErrWeakPassword    = errors.New("password must be at least 8 characters")
	ErrRoleNotAllowed  = errors.New("role not available for sign-up")
	ErrOrgNameRequired = errors.New("organization name is required for partners")
)

const MinPasswordLen = 8

type SignUpInput struct {
	Email        string    `json:"email" validate:"required,email,max=255"`
	Password     string    `json:"password" validate:"required,min=8,max=72"`
	Name         string    `json:"name" validate:"required,max=255"`
	Phone        string    `json:"phone" validate:"omitempty,max=64"`
	Role         user.Role `json:"role" validate:"required,oneof=donor partner volunteer"`
	OrgName      string    `json:"org_name" validate:"omitempty,max=255"`
	BusinessName string    `json:"business_name" validate:"omitempty,max=255"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Session   *session.Session `json:"session"`
}
