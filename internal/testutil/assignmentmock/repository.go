package assignmentmock

import (
	"context"
	"errors"

	domain "foodrescue-backend/internal/domain/assignment"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("assignmentmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                     func(ctx context.Context, a *domain.Assignment) error
	GetByAssignmentIDFn          func(ctx context.Context, assignmentID string) (*domain.Assignment, error)
	GetByAssignmentIDForUpdateFn func(ctx context.Context, assignmentID string) (*domain.Assignment, error)
	GetActiveByOfferIDFn         func(ctx context.Context, offerID uint64) (*domain.Assignment, error)
	ListByOfferIDsFn             func(ctx context.Context, offerIDs []uint64) ([]domain.Assignment, error)
	ListByPartnerIDFn            func(ctx context.Context, partnerID uint64) ([]domain.Assignment, error)
	SaveFn                       func(ctx context.Context, a *domain.Assignment) error
	DeleteByOfferIDFn            func(ctx context.Context, offerID uint64) error
}

func (m *Repo) Create(ctx context.Context, a *domain.Assignment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByAssignmentID(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	if m.GetByAssignmentIDFn != nil {
		return m.GetByAssignmentIDFn(ctx, assignmentID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByAssignmentIDForUpdate(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	if m.GetByAssignmentIDForUpdateFn != nil {
		return m.GetByAssignmentIDForUpdateFn(ctx, assignmentID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetActiveByOfferID(ctx context.Context, offerID uint64) (*domain.Assignment, error) {
	if m.GetActiveByOfferIDFn != nil {
		return m.GetActiveByOfferIDFn(ctx, offerID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByOfferIDs(ctx context.Context, offerIDs []uint64) ([]domain.Assignment, error) {
	if m.ListByOfferIDsFn != nil {
		return m.ListByOfferIDsFn(ctx, offerIDs)
	}
	return nil, nil
}

func (m *Repo) ListByPartnerID(ctx context.Context, partnerID uint64) ([]domain.Assignment, error) {
	if m.ListByPartnerIDFn != nil {
		return m.ListByPartnerIDFn(ctx, partnerID)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, a *domain.Assignment) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) DeleteByOfferID(ctx context.Context, offerID uint64) error {
	if m.DeleteByOfferIDFn != nil {
		return m.DeleteByOfferIDFn(ctx, offerID)
	}
	return nil
}
