package assignment

import (
	"errors"
	"time"

	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/user"
)

var (
	ErrNotFound          = errors.New("assignment not found")
	ErrInvalidTransition = errors.New("assignment not in a state that allows this action")
	ErrActiveExists      = errors.New("offer already has an active assignment")
	ErrInvalidOTP        = errors.New("invalid OTP code")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ActiveStatuses are the statuses that hold an offer.
var ActiveStatuses = []Status{StatusPending, StatusInProgress}

// Table: assignments
type Assignment struct {
	ID           uint64       `gorm:"primaryKey;column:id" json:"-"`
	AssignmentID string       `gorm:"column:assignment_id;size:32;uniqueIndex:ux_assignments_assignment_id" json:"assignment_id"`
	OfferID      uint64       `gorm:"column:offer_id;not null;index:idx_assignments_offer_status" json:"-"`
	PartnerID    uint64       `gorm:"column:partner_id;not null;index:idx_assignments_partner" json:"-"`
	Status       Status       `gorm:"column:status;type:varchar(16);not null;default:'pending';index:idx_assignments_offer_status" json:"status"`
	OTPCode      string       `gorm:"column:otp_code;size:6" json:"-"`
	Notes        string       `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CompletedAt  *time.Time   `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Offer        *offer.Offer `gorm:"foreignKey:OfferID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Partner      *user.User   `gorm:"foreignKey:PartnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Assignment) TableName() string { return "assignments" }

func (a *Assignment) Active() bool {
	return a.Status == StatusPending || a.Status == StatusInProgress
}
