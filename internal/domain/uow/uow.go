package uow

import (
	"context"

	"foodrescue-backend/internal/domain/assignment"
	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/user"
)

// domain/uow/uow.go
type Repos struct {
	Users       user.Repository
	Offers      offer.Repository
	Assignments assignment.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the offer row first, then pass it in
	WithinOfferTx(ctx context.Context, offerID string, fn func(r Repos, o *offer.Offer) error) error
	// lock the assignment's offer, then the assignment itself
	WithinAssignmentTx(ctx context.Context, assignmentID string, fn func(r Repos, a *assignment.Assignment, o *offer.Offer) error) error
}
