package mysql

import (
	"context"

	"gorm.io/gorm"

	"foodrescue-backend/internal/domain/assignment"
	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Users:       &UserRepository{db: tx},
		Offers:      &OfferRepository{db: tx},
		Assignments: &AssignmentRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinOfferTx(ctx context.Context, offerID string, fn func(r uow.Repos, o *offer.Offer) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the offer row up-front to prevent races
		o, err := r.Offers.GetByOfferIDForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		return fn(r, o)
	})
}

// WithinAssignmentTx resolves the assignment, then locks its offer before
// locking the assignment row, keeping lock order offer -> assignment.
func (u *GormUoW) WithinAssignmentTx(ctx context.Context, assignmentID string, fn func(r uow.Repos, a *assignment.Assignment, o *offer.Offer) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		a, err := r.Assignments.GetByAssignmentID(ctx, assignmentID)
		if err != nil {
			return err
		}
		o, err := r.Offers.GetByIDForUpdate(ctx, a.OfferID)
		if err != nil {
			return err
		}
		a, err = r.Assignments.GetByAssignmentIDForUpdate(ctx, assignmentID)
		if err != nil {
			return err
		}
		return fn(r, a, o)
	})
}
