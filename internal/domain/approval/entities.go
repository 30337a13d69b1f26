package approval

import (
	"errors"

	"foodrescue-backend/internal/domain/user"
)

var (
	ErrAlreadyApproved = errors.New("partner already approved")
	ErrAlreadyRejected = errors.New("partner already rejected")
)

// Gate is where a signed-in user lands on the partner dashboard.
type Gate string

const (
	GateDashboard Gate = "dashboard"
	GatePending   Gate = "pending"
	GateRejected  Gate = "rejected"
)

// GateFor: non-partner roles always pass.
func GateFor(role user.Role, state user.ApprovalState) Gate {
	if role != user.RolePartner {
		return GateDashboard
	}
	switch state {
	case user.ApprovalApproved:
		return GateDashboard
	case user.ApprovalRejected:
		return GateRejected
	default:
		return GatePending
	}
}

// Redirect is the view a gated request is sent to, empty for GateDashboard.
func (g Gate) Redirect() string {
	switch g {
	case GatePending:
		return "/dashboard/partner/pending"
	case GateRejected:
		return "/dashboard/partner/rejected"
	}
	return ""
}
