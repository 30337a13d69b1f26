package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"foodrescue-backend/internal/domain/geo"
	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/uow"
	domainUser "foodrescue-backend/internal/domain/user"
)

type Usecase struct {
	users    domainUser.Repository
	uow      uow.UnitOfWork
	sessions session.Store
	geocoder geo.Geocoder
	log      *zap.Logger
}

// NewUsecase: geocoder may be nil.
func NewUsecase(users domainUser.Repository, tx uow.UnitOfWork, sessions session.Store, geocoder geo.Geocoder, log *zap.Logger) *Usecase {
	return &Usecase{users: users, uow: tx, sessions: sessions, geocoder: geocoder, log: log}
}

func (u *Usecase) List(ctx context.Context, s *session.Session, in ListInput) ([]UserDTO, error) {
	if err := s.Require(domainUser.RoleAdmin); err != nil {
		return nil, err
	}
	f := domainUser.ListFilter{Role: in.Role, Search: in.Search}
	if f.Role != "" && !f.Role.Valid() {
		return nil, domainUser.ErrInvalidRole
	}
	switch in.Status {
	case "", StatusAll:
	case StatusActive:
		f.Banned = new(bool)
	case StatusBanned:
		banned := true
		f.Banned = &banned
	default:
		return nil, ErrBadFilter
	}
	rows, err := u.users.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toUserDTO(&rows[i]))
	}
	return out, nil
}

// adminUpdate applies fn to the locked target row. Admins cannot target themselves.
func (u *Usecase) adminUpdate(ctx context.Context, s *session.Session, userID string, fn func(t *domainUser.User) error) (*domainUser.User, error) {
	if err := s.Require(domainUser.RoleAdmin); err != nil {
		return nil, err
	}
	if userID == s.UserID {
		return nil, ErrSelfChange
	}
	var out *domainUser.User
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Users.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := r.Users.Save(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

func (u *Usecase) invalidate(ctx context.Context, userID string) {
	if err := u.sessions.InvalidateUser(ctx, userID); err != nil {
		u.log.Warn("invalidate sessions", zap.String("user_id", userID), zap.Error(err))
	}
}

// SetBanned bans or unbans a user. A ban ends every live session.
func (u *Usecase) SetBanned(ctx context.Context, s *session.Session, userID string, banned bool) (*UserDTO, error) {
	t, err := u.adminUpdate(ctx, s, userID, func(t *domainUser.User) error {
		t.Banned = banned
		return nil
	})
	if err != nil {
		return nil, err
	}
	if banned {
		u.invalidate(ctx, userID)
	}
	u.log.Info("user ban updated", zap.String("user_id", userID), zap.Bool("banned", banned), zap.String("by", s.UserID))
	dto := toUserDTO(t)
	return &dto, nil
}

func (u *Usecase) ChangeRole(ctx context.Context, s *session.Session, userID string, role domainUser.Role) (*UserDTO, error) {
	if !role.Valid() {
		return nil, domainUser.ErrInvalidRole
	}
	t, err := u.adminUpdate(ctx, s, userID, func(t *domainUser.User) error {
		t.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.invalidate(ctx, userID)
	u.log.Info("user role changed", zap.String("user_id", userID), zap.String("role", string(role)), zap.String("by", s.UserID))
	dto := toUserDTO(t)
	return &dto, nil
}

// locate fills lat/lng from the address when the caller gave none and the
// address is new or was never resolved.
func (u *Usecase) locate(ctx context.Context, address string, lat, lng *float64, prevAddress string, prevLoc *geo.Point) (*float64, *float64) {
	if lat != nil && lng != nil {
		return lat, lng
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}
	if address == prevAddress && prevLoc != nil {
		return &prevLoc.Lat, &prevLoc.Lng
	}
	if u.geocoder == nil {
		return nil, nil
	}
	p, err := u.geocoder.Geocode(ctx, address)
	if err != nil || p == nil {
		u.log.Info("profile address not geocoded", zap.String("address", address), zap.Error(err))
		return nil, nil
	}
	return &p.Lat, &p.Lng
}

func applyContact(t *domainUser.User, name, phone string) {
	if n := strings.TrimSpace(name); n != "" {
		t.Name = n
	}
	if p := strings.TrimSpace(phone); p != "" {
		t.Phone = p
	}
}

func (u *Usecase) refresh(ctx context.Context, t *domainUser.User) {
	if err := u.sessions.RefreshUser(ctx, t); err != nil {
		u.log.Warn("refresh sessions", zap.String("user_id", t.UserID), zap.Error(err))
	}
}

// SaveDonorProfile creates the donor profile on first save and updates it after.
func (u *Usecase) SaveDonorProfile(ctx context.Context, s *session.Session, in DonorProfileInput) (*ProfileDTO, error) {
	if err := s.Require(domainUser.RoleDonor); err != nil {
		return nil, err
	}
	hours, err := domainUser.DecodeOpeningHours(in.OpeningHours)
	if err != nil {
		return nil, err
	}
	prev, err := u.users.GetDonorProfile(ctx, s.UserPK)
	if err != nil && !errors.Is(err, domainUser.ErrNotFound) {
		return nil, err
	}
	var prevAddr string
	var prevLoc *geo.Point
	if prev != nil {
		prevAddr, prevLoc = prev.Address, geo.PointOf(prev.Latitude, prev.Longitude)
	}
	lat, lng := u.locate(ctx, in.Address, in.Latitude, in.Longitude, prevAddr, prevLoc)

	out := &ProfileDTO{}
	var saved *domainUser.User
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Users.GetByUserIDForUpdate(ctx, s.UserID)
		if err != nil {
			return err
		}
		applyContact(t, in.Name, in.Phone)
		if err := r.Users.Save(ctx, t); err != nil {
			return err
		}
		p := &domainUser.DonorProfile{UserID: t.ID}
		if prev != nil {
			*p = *prev
		}
		p.BusinessName = strings.TrimSpace(in.BusinessName)
		p.Address = strings.TrimSpace(in.Address)
		p.City = strings.TrimSpace(in.City)
		p.Latitude, p.Longitude = lat, lng
		p.OpeningHours = hours
		if err := r.Users.SaveDonorProfile(ctx, p); err != nil {
			return err
		}
		out.User, out.Donor = toUserDTO(t), p
		saved = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.refresh(ctx, saved)
	return out, nil
}

func (u *Usecase) SavePartnerProfile(ctx context.Context, s *session.Session, in PartnerProfileInput) (*ProfileDTO, error) {
	if err := s.Require(domainUser.RolePartner); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.OrgName) == "" {
		return nil, &domainUser.SchemaError{Field: "org_name", Message: "is required"}
	}
	capacity, err := domainUser.DecodeCapacityInfo(in.CapacityInfo)
	if err != nil {
		return nil, err
	}
	prefs, err := domainUser.DecodeCollectionPrefs(in.CollectionPrefs)
	if err != nil {
		return nil, err
	}
	prev, err := u.users.GetPartnerProfile(ctx, s.UserPK)
	if err != nil && !errors.Is(err, domainUser.ErrNotFound) {
		return nil, err
	}
	var prevAddr string
	var prevLoc *geo.Point
	if prev != nil {
		prevAddr, prevLoc = prev.Address, geo.PointOf(prev.Latitude, prev.Longitude)
	}
	lat, lng := u.locate(ctx, in.Address, in.Latitude, in.Longitude, prevAddr, prevLoc)

	out := &ProfileDTO{}
	var saved *domainUser.User
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Users.GetByUserIDForUpdate(ctx, s.UserID)
		if err != nil {
			return err
		}
		applyContact(t, in.Name, in.Phone)
		if err := r.Users.Save(ctx, t); err != nil {
			return err
		}
		p := &domainUser.PartnerProfile{UserID: t.ID}
		if prev != nil {
			*p = *prev
		}
		p.OrgName = strings.TrimSpace(in.OrgName)
		p.Address = strings.TrimSpace(in.Address)
		p.City = strings.TrimSpace(in.City)
		p.Latitude, p.Longitude = lat, lng
		p.CapacityInfo = capacity
		p.CollectionPrefs = prefs
		if err := r.Users.SavePartnerProfile(ctx, p); err != nil {
			return err
		}
		out.User, out.Partner = toUserDTO(t), p
		saved = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.refresh(ctx, saved)
	return out, nil
}

// GetProfile returns the caller with the profile matching their role, if any.
func (u *Usecase) GetProfile(ctx context.Context, s *session.Session) (*ProfileDTO, error) {
	if err := s.Require(domainUser.RoleAdmin, domainUser.RoleDonor, domainUser.RolePartner, domainUser.RoleVolunteer); err != nil {
		return nil, err
	}
	t, err := u.users.GetByUserID(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	out := &ProfileDTO{User: toUserDTO(t)}
	switch t.Role {
	case domainUser.RoleDonor:
		p, err := u.users.GetDonorProfile(ctx, t.ID)
		if err != nil && !errors.Is(err, domainUser.ErrNotFound) {
			return nil, err
		}
		out.Donor = p
	case domainUser.RolePartner:
		p, err := u.users.GetPartnerProfile(ctx, t.ID)
		if err != nil && !errors.Is(err, domainUser.ErrNotFound) {
			return nil, err
		}
		out.Partner = p
	}
	return out, nil
}
