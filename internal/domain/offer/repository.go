package offer

import (
	"context"

	"foodrescue-backend/internal/domain/geo"
)

type ListFilter struct {
	DonorID uint64
	Status  Status
	// Search matches title, food type or address.
	Search string
	Limit  int
	// OrderBy defaults to "created_at DESC".
	OrderBy string
	// Near, when set, orders nearest first (rows without coordinates last)
	// and takes precedence over OrderBy, so Limit keeps the closest rows.
	Near *geo.Point
}

type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id uint64) (*Offer, error)
	GetByOfferID(ctx context.Context, offerID string) (*Offer, error)
	// Locks the offer row until the surrounding tx ends
	GetByOfferIDForUpdate(ctx context.Context, offerID string) (*Offer, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Offer, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]Offer, error)
	Save(ctx context.Context, o *Offer) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, f ListFilter) ([]Offer, error)
}
