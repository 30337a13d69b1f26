package uowmock

import (
	"context"
	"errors"

	"foodrescue-backend/internal/domain/assignment"
	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn           func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinOfferTxFn      func(ctx context.Context, offerID string, fn func(r uow.Repos, o *offer.Offer) error) error
	WithinAssignmentTxFn func(ctx context.Context, assignmentID string, fn func(r uow.Repos, a *assignment.Assignment, o *offer.Offer) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinOfferTx(fn func(context.Context, string, func(uow.Repos, *offer.Offer) error) error) *UoW {
	m.WithinOfferTxFn = fn
	return m
}
func (m *UoW) WithWithinAssignmentTx(fn func(context.Context, string, func(uow.Repos, *assignment.Assignment, *offer.Offer) error) error) *UoW {
	m.WithinAssignmentTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough wires every method to run fn against repos, resolving locked
// rows through them the way the gorm implementation does.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinOfferTxFn: func(ctx context.Context, offerID string, fn func(uow.Repos, *offer.Offer) error) error {
			o, err := repos.Offers.GetByOfferIDForUpdate(ctx, offerID)
			if err != nil {
				return err
			}
			return fn(repos, o)
		},
		WithinAssignmentTxFn: func(ctx context.Context, assignmentID string, fn func(uow.Repos, *assignment.Assignment, *offer.Offer) error) error {
			a, err := repos.Assignments.GetByAssignmentIDForUpdate(ctx, assignmentID)
			if err != nil {
				return err
			}
			o, err := repos.Offers.GetByIDForUpdate(ctx, a.OfferID)
			if err != nil {
				return err
			}
			return fn(repos, a, o)
		},
	}
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinOfferTx(ctx context.Context, offerID string, fn func(r uow.Repos, o *offer.Offer) error) error {
	if m.WithinOfferTxFn != nil {
		return m.WithinOfferTxFn(ctx, offerID, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinAssignmentTx(ctx context.Context, assignmentID string, fn func(r uow.Repos, a *assignment.Assignment, o *offer.Offer) error) error {
	if m.WithinAssignmentTxFn != nil {
		return m.WithinAssignmentTxFn(ctx, assignmentID, fn)
	}
	return errUnimplemented
}
