package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailTaken  = errors.New("email already registered")
	ErrNotPartner  = errors.New("user is not a partner")
	ErrInvalidRole = errors.New("invalid role")
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDonor     Role = "donor"
	RolePartner   Role = "partner"
	RoleVolunteer Role = "volunteer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDonor, RolePartner, RoleVolunteer:
		return true
	}
	return false
}

// ApprovalState is the readable form of the tri-state users.approved column.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	ApprovalRejected ApprovalState = "rejected"
)

// StateOf maps approved (NULL / true / false) to an ApprovalState.
func StateOf(approved *bool) ApprovalState {
	switch {
	case approved == nil:
		return ApprovalPending
	case *approved:
		return ApprovalApproved
	default:
		return ApprovalRejected
	}
}

// Table: users
type User struct {
	ID              uint64     `gorm:"primaryKey;column:id" json:"-"`
	UserID          string     `gorm:"column:user_id;size:32;uniqueIndex:ux_users_user_id" json:"id"`
	Email           string     `gorm:"column:email;size:255;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash    string     `gorm:"column:password_hash;size:255" json:"-"`
	Name            string     `gorm:"column:name;size:255" json:"name"`
	Phone           string     `gorm:"column:phone;size:64" json:"phone"`
	Role            Role       `gorm:"column:role;type:varchar(16);not null;default:'donor';index:idx_users_role" json:"role"`
	Approved        *bool      `gorm:"column:approved" json:"approved"`
	Banned          bool       `gorm:"column:banned;not null;default:false" json:"banned"`
	RejectionReason *string    `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	ApprovedBy      *string    `gorm:"column:approved_by;size:32" json:"approved_by,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) ApprovalState() ApprovalState { return StateOf(u.Approved) }

// DisplayName falls back to the local part of the email when no name is set.
func (u *User) DisplayName() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

// NormalizeEmail lower-cases and trims an address before lookup or insert.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
