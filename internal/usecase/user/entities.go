package user

import (
	"encoding/json"
	"errors"
	"time"

	domainUser "foodrescue-backend/internal/domain/user"
)

var (
	ErrSelfChange = errors.New("admins cannot change their own account")
	ErrBadFilter  = errors.New("unknown user status filter")
)

// Status filters for List.
const (
	StatusAll    = "all"
	StatusActive = "active"
	StatusBanned = "banned"
)

type ListInput struct {
	Role   domainUser.Role `query:"role"`
	Status string          `query:"status"`
	Search string          `query:"q"`
}

type ChangeRoleInput struct {
	Role domainUser.Role `json:"role" validate:"required,oneof=admin donor partner volunteer"`
}

type DonorProfileInput struct {
	Name         string          `json:"name" validate:"max=255"`
	Phone        string          `json:"phone" validate:"max=64"`
	BusinessName string          `json:"business_name" validate:"max=255"`
	Address      string          `json:"address" validate:"max=1000"`
	City         string          `json:"city" validate:"max=128"`
	Latitude     *float64        `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64        `json:"longitude" validate:"omitempty,longitude"`
	OpeningHours json.RawMessage `json:"opening_hours"`
}

type PartnerProfileInput struct {
	Name            string          `json:"name" validate:"max=255"`
	Phone           string          `json:"phone" validate:"max=64"`
	OrgName         string          `json:"org_name" validate:"required,max=255"`
	Address         string          `json:"address" validate:"max=1000"`
	City            string          `json:"city" validate:"max=128"`
	Latitude        *float64        `json:"latitude" validate:"omitempty,latitude"`
	Longitude       *float64        `json:"longitude" validate:"omitempty,longitude"`
	CapacityInfo    json.RawMessage `json:"capacity_info"`
	CollectionPrefs json.RawMessage `json:"collection_prefs"`
}

type UserDTO struct {
	UserID    string                   `json:"id"`
	Email     string                   `json:"email"`
	Name      string                   `json:"name"`
	Phone     string                   `json:"phone"`
	Role      domainUser.Role          `json:"role"`
	Approval  domainUser.ApprovalState `json:"approval"`
	Banned    bool                     `json:"banned"`
	CreatedAt time.Time                `json:"created_at"`
}

type ProfileDTO struct {
	User    UserDTO                    `json:"user"`
	Donor   *domainUser.DonorProfile   `json:"donor_profile,omitempty"`
	Partner *domainUser.PartnerProfile `json:"partner_profile,omitempty"`
}

func toUserDTO(u *domainUser.User) UserDTO {
	return UserDTO{
		UserID:    u.UserID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		Approval:  u.ApprovalState(),
		Banned:    u.Banned,
		CreatedAt: u.CreatedAt,
	}
}
