package approval

import (
	"time"

	"foodrescue-backend/internal/domain/user"
)

// Application filters accepted by ListApplications.
const (
	FilterPending  = "pending"
	FilterApproved = "approved"
	FilterRejected = "rejected"
	FilterAll      = "all"
)

const dateLayout = "January 2, 2006"

type RejectInput struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type ApplicationDTO struct {
	UserID          string             `json:"user_id"`
	Email           string             `json:"email"`
	Name            string             `json:"name"`
	Phone           string             `json:"phone"`
	State           user.ApprovalState `json:"state"`
	OrgName         string             `json:"org_name"`
	Address         string             `json:"address"`
	City            string             `json:"city"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
	ApprovedBy      string             `json:"approved_by,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// StatusDTO backs the pending and rejected partner views.
type StatusDTO struct {
	State           user.ApprovalState `json:"state"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
	SupportEmail    string             `json:"support_email,omitempty"`
}

func toApplicationDTO(u *user.User, p *user.PartnerProfile) ApplicationDTO {
	dto := ApplicationDTO{
		UserID:     u.UserID,
		Email:      u.Email,
		Name:       u.Name,
		Phone:      u.Phone,
		State:      u.ApprovalState(),
		ApprovedAt: u.ApprovedAt,
		CreatedAt:  u.CreatedAt,
	}
	if u.RejectionReason != nil {
		dto.RejectionReason = *u.RejectionReason
	}
	if u.ApprovedBy != nil {
		dto.ApprovedBy = *u.ApprovedBy
	}
	if p != nil {
		dto.OrgName = p.OrgName
		dto.Address = p.Address
		dto.City = p.City
	}
	return dto
}
