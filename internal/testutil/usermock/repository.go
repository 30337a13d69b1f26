package usermock

import (
	"context"
	"errors"

	domain "foodrescue-backend/internal/domain/user"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("usermock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return errUnimplemented, unset writers succeed.
type Repo struct {
	CreateFn               func(ctx context.Context, u *domain.User) error
	GetByIDFn              func(ctx context.Context, id uint64) (*domain.User, error)
	GetByUserIDFn          func(ctx context.Context, userID string) (*domain.User, error)
	GetByUserIDForUpdateFn func(ctx context.Context, userID string) (*domain.User, error)
	GetByEmailFn           func(ctx context.Context, email string) (*domain.User, error)
	GetByIDsFn             func(ctx context.Context, ids []uint64) ([]domain.User, error)
	SaveFn                 func(ctx context.Context, u *domain.User) error
	ListFn                 func(ctx context.Context, f domain.ListFilter) ([]domain.User, error)
	GetDonorProfileFn      func(ctx context.Context, userID uint64) (*domain.DonorProfile, error)
	GetDonorProfilesFn     func(ctx context.Context, userIDs []uint64) ([]domain.DonorProfile, error)
	SaveDonorProfileFn     func(ctx context.Context, p *domain.DonorProfile) error
	GetPartnerProfileFn    func(ctx context.Context, userID uint64) (*domain.PartnerProfile, error)
	GetPartnerProfilesFn   func(ctx context.Context, userIDs []uint64) ([]domain.PartnerProfile, error)
	SavePartnerProfileFn   func(ctx context.Context, p *domain.PartnerProfile) error
}

func (m *Repo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetByUserIDForUpdateFn != nil {
		return m.GetByUserIDForUpdateFn(ctx, userID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByIDs(ctx context.Context, ids []uint64) ([]domain.User, error) {
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, u *domain.User) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, u)
	}
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) GetDonorProfile(ctx context.Context, userID uint64) (*domain.DonorProfile, error) {
	if m.GetDonorProfileFn != nil {
		return m.GetDonorProfileFn(ctx, userID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetDonorProfiles(ctx context.Context, userIDs []uint64) ([]domain.DonorProfile, error) {
	if m.GetDonorProfilesFn != nil {
		return m.GetDonorProfilesFn(ctx, userIDs)
	}
	return nil, nil
}

func (m *Repo) SaveDonorProfile(ctx context.Context, p *domain.DonorProfile) error {
	if m.SaveDonorProfileFn != nil {
		return m.SaveDonorProfileFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetPartnerProfile(ctx context.Context, userID uint64) (*domain.PartnerProfile, error) {
	if m.GetPartnerProfileFn != nil {
		return m.GetPartnerProfileFn(ctx, userID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetPartnerProfiles(ctx context.Context, userIDs []uint64) ([]domain.PartnerProfile, error) {
	if m.GetPartnerProfilesFn != nil {
		return m.GetPartnerProfilesFn(ctx, userIDs)
	}
	return nil, nil
}

func (m *Repo) SavePartnerProfile(ctx context.Context, p *domain.PartnerProfile) error {
	if m.SavePartnerProfileFn != nil {
		return m.SavePartnerProfileFn(ctx, p)
	}
	return nil
}
