package assignment

import "context"

type Repository interface {
	Create(ctx context.Context, a *Assignment) error
	GetByAssignmentID(ctx context.Context, assignmentID string) (*Assignment, error)
	GetByAssignmentIDForUpdate(ctx context.Context, assignmentID string) (*Assignment, error)
	// Returns ErrNotFound when the offer has no pending/in_progress assignment
	GetActiveByOfferID(ctx context.Context, offerID uint64) (*Assignment, error)
	ListByOfferIDs(ctx context.Context, offerIDs []uint64) ([]Assignment, error)
	ListByPartnerID(ctx context.Context, partnerID uint64) ([]Assignment, error)
	Save(ctx context.Context, a *Assignment) error
	DeleteByOfferID(ctx context.Context, offerID uint64) error
}
