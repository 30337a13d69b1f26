package approval

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	domainApproval "foodrescue-backend/internal/domain/approval"
	"foodrescue-backend/internal/domain/notification"
	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/uow"
	"foodrescue-backend/internal/domain/user"
	"foodrescue-backend/internal/domain/validation"
)

type Usecase struct {
	users    user.Repository
	uow      uow.UnitOfWork
	sessions session.Store
	sender   notification.Sender
	log      *zap.Logger

	appURL       string
	supportEmail string
	now          func() time.Time
}

// NewUsecase: sender may be nil, in which case no email is attempted.
func NewUsecase(users user.Repository, tx uow.UnitOfWork, sessions session.Store, sender notification.Sender, appURL, supportEmail string, log *zap.Logger) *Usecase {
	return &Usecase{
		users:        users,
		uow:          tx,
		sessions:     sessions,
		sender:       sender,
		log:          log,
		appURL:       strings.TrimRight(appURL, "/"),
		supportEmail: supportEmail,
		now:          time.Now,
	}
}

// Approve marks a pending or rejected partner approved. The email that follows
// is best-effort and never reverts the approval.
func (u *Usecase) Approve(ctx context.Context, s *session.Session, userID string) (*ApplicationDTO, error) {
	if err := s.Require(user.RoleAdmin); err != nil {
		return nil, err
	}
	now := u.now().UTC()
	partner, err := u.decide(ctx, userID, func(p *user.User) error {
		if p.ApprovalState() == user.ApprovalApproved {
			return domainApproval.ErrAlreadyApproved
		}
		approved := true
		p.Approved = &approved
		p.ApprovedAt = &now
		p.ApprovedBy = &s.UserID
		p.RejectionReason = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("partner approved", zap.String("user_id", userID), zap.String("by", s.UserID))

	profile := u.profile(ctx, partner.ID)
	u.refreshSessions(ctx, partner)
	u.notify(ctx, partner, notification.TemplatePartnerApproved, map[string]string{
		"partner_name":   partner.DisplayName(),
		"org_name":       orgName(profile),
		"email":          partner.Email,
		"approved_date":  now.Format(dateLayout),
		"dashboard_link": u.appURL + "/dashboard/partner",
		"support_email":  u.supportEmail,
	})
	dto := toApplicationDTO(partner, profile)
	return &dto, nil
}

// Reject requires a non-empty reason; it is checked before anything is read.
func (u *Usecase) Reject(ctx context.Context, s *session.Session, userID, reason string) (*ApplicationDTO, error) {
	if err := s.Require(user.RoleAdmin); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		var v validation.Error
		v.Add("reason", "rejection reason is required")
		return nil, v.Err()
	}
	now := u.now().UTC()
	partner, err := u.decide(ctx, userID, func(p *user.User) error {
		if p.ApprovalState() == user.ApprovalRejected {
			return domainApproval.ErrAlreadyRejected
		}
		rejected := false
		p.Approved = &rejected
		p.ApprovedAt = &now
		p.ApprovedBy = &s.UserID
		p.RejectionReason = &reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("partner rejected", zap.String("user_id", userID), zap.String("by", s.UserID))

	profile := u.profile(ctx, partner.ID)
	u.refreshSessions(ctx, partner)
	u.notify(ctx, partner, notification.TemplatePartnerRejected, map[string]string{
		"partner_name":     partner.DisplayName(),
		"org_name":         orgName(profile),
		"email":            partner.Email,
		"reviewed_date":    now.Format(dateLayout),
		"rejection_reason": reason,
		"support_email":    u.supportEmail,
		"support_link":     "mailto:" + u.supportEmail,
	})
	dto := toApplicationDTO(partner, profile)
	return &dto, nil
}

// decide locks the partner row, applies fn and saves, all in one transaction.
func (u *Usecase) decide(ctx context.Context, userID string, fn func(p *user.User) error) (*user.User, error) {
	var out *user.User
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Users.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if p.Role != user.RolePartner {
			return user.ErrNotPartner
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := r.Users.Save(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (u *Usecase) profile(ctx context.Context, userPK uint64) *user.PartnerProfile {
	p, err := u.users.GetPartnerProfile(ctx, userPK)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			u.log.Warn("load partner profile", zap.Uint64("user_pk", userPK), zap.Error(err))
		}
		return nil
	}
	return p
}

func orgName(p *user.PartnerProfile) string {
	if p == nil {
		return ""
	}
	return p.OrgName
}

func (u *Usecase) refreshSessions(ctx context.Context, p *user.User) {
	if u.sessions == nil {
		return
	}
	if err := u.sessions.RefreshUser(ctx, p); err != nil {
		u.log.Warn("refresh partner sessions", zap.String("user_id", p.UserID), zap.Error(err))
	}
}

func (u *Usecase) notify(ctx context.Context, p *user.User, key string, vars map[string]string) {
	if u.sender == nil {
		return
	}
	if err := u.sender.SendTemplatedEmail(ctx, p.Email, key, vars); err != nil {
		u.log.Warn("approval email failed", zap.String("user_id", p.UserID), zap.String("template", key), zap.Error(err))
	}
}

func filterState(filter string) (user.ApprovalState, bool) {
	switch filter {
	case FilterPending:
		return user.ApprovalPending, true
	case FilterApproved:
		return user.ApprovalApproved, true
	case FilterRejected:
		return user.ApprovalRejected, true
	case FilterAll, "":
		return "", true
	}
	return "", false
}

// ListApplications lists partners with their profile, newest first.
func (u *Usecase) ListApplications(ctx context.Context, s *session.Session, filter string) ([]ApplicationDTO, error) {
	if err := s.Require(user.RoleAdmin); err != nil {
		return nil, err
	}
	state, ok := filterState(filter)
	if !ok {
		var v validation.Error
		v.Add("filter", "must be one of pending, approved, rejected, all")
		return nil, v.Err()
	}
	partners, err := u.users.List(ctx, user.ListFilter{Role: user.RolePartner, Approval: state})
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(partners))
	for _, p := range partners {
		ids = append(ids, p.ID)
	}
	byUser := map[uint64]*user.PartnerProfile{}
	if len(ids) > 0 {
		profiles, err := u.users.GetPartnerProfiles(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range profiles {
			byUser[profiles[i].UserID] = &profiles[i]
		}
	}
	out := make([]ApplicationDTO, 0, len(partners))
	for i := range partners {
		out = append(out, toApplicationDTO(&partners[i], byUser[partners[i].ID]))
	}
	return out, nil
}

// Gate decides the partner landing view from the session snapshot.
func (u *Usecase) Gate(s *session.Session) domainApproval.Gate {
	return domainApproval.GateFor(s.Role, s.ApprovalState())
}

// Status reads the current decision from the store, not the snapshot.
func (u *Usecase) Status(ctx context.Context, s *session.Session) (*StatusDTO, error) {
	if err := s.Require(user.RolePartner); err != nil {
		return nil, err
	}
	p, err := u.users.GetByUserID(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	dto := &StatusDTO{State: p.ApprovalState(), ApprovedAt: p.ApprovedAt, SupportEmail: u.supportEmail}
	if p.RejectionReason != nil {
		dto.RejectionReason = *p.RejectionReason
	}
	return dto, nil
}
