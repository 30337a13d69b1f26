package approval

import (
	"testing"

	"foodrescue-backend/internal/domain/user"
)

func TestGateFor(t *testing.T) {
	tests := []struct {
		role     user.Role
		state    user.ApprovalState
		want     Gate
		redirect string
	}{
		{user.RolePartner, user.ApprovalPending, GatePending, "/dashboard/partner/pending"},
		{user.RolePartner, user.ApprovalRejected, GateRejected, "/dashboard/partner/rejected"},
		{user.RolePartner, user.ApprovalApproved, GateDashboard, ""},
		{user.RoleDonor, user.ApprovalPending, GateDashboard, ""},
		{user.RoleAdmin, user.ApprovalRejected, GateDashboard, ""},
		{user.RoleVolunteer, user.ApprovalPending, GateDashboard, ""},
	}
	for _, tt := range tests {
		got := GateFor(tt.role, tt.state)
		if got != tt.want || got.Redirect() != tt.redirect {
			t.Errorf("%s/%s: got %s (%q), want %s (%q)", tt.role, tt.state, got, got.Redirect(), tt.want, tt.redirect)
		}
	}
}
