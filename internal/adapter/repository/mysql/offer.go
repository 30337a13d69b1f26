package mysql

import (
	"context"
	"math"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	offerDomain "foodrescue-backend/internal/domain/offer"
)

type OfferRepository struct{ db *gorm.DB }

func NewOfferRepository(db *gorm.DB) *OfferRepository { return &OfferRepository{db: db} }

// Create maps driver failures onto the offer insert errors.
func (r *OfferRepository) Create(ctx context.Context, o *offerDomain.Offer) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return offerDomain.ErrDonorProfileMissing
	case isPermissionDenied(err):
		return offerDomain.ErrPermissionDenied
	default:
		return err
	}
}

func (r *OfferRepository) GetByID(ctx context.Context, id uint64) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, notFound(err, offerDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *OfferRepository) GetByOfferID(ctx context.Context, offerID string) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	if err := r.db.WithContext(ctx).Where("offer_id = ?", offerID).First(&out).Error; err != nil {
		return nil, notFound(err, offerDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *OfferRepository) GetByOfferIDForUpdate(ctx context.Context, offerID string) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("offer_id = ?", offerID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, offerDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *OfferRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*offerDomain.Offer, error) {
	var out offerDomain.Offer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&out, id).Error
	if err != nil {
		return nil, notFound(err, offerDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *OfferRepository) GetByIDs(ctx context.Context, ids []uint64) ([]offerDomain.Offer, error) {
	var out []offerDomain.Offer
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *OfferRepository) Save(ctx context.Context, o *offerDomain.Offer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

func (r *OfferRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&offerDomain.Offer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return offerDomain.ErrNotFound
	}
	return nil
}

var offerOrderings = map[string]string{
	"":                        "created_at DESC, id DESC",
	"created_at DESC":         "created_at DESC, id DESC",
	"created_at ASC":          "created_at ASC, id ASC",
	"pickup_window_start ASC": "pickup_window_start ASC, id ASC",
}

// nearestFirst orders by equirectangular squared distance, which only needs
// arithmetic and so runs the same on mysql, postgres and sqlite. Callers
// compute exact haversine distances on the rows they get back.
func nearestFirst(lat, lng float64) clause.OrderBy {
	k := math.Cos(lat * math.Pi / 180)
	return clause.OrderBy{Expression: clause.Expr{
		SQL: "CASE WHEN latitude IS NULL OR longitude IS NULL THEN 1 ELSE 0 END, " +
			"(latitude - ?) * (latitude - ?) + (longitude - ?) * (longitude - ?) * ?, " +
			"created_at DESC, id DESC",
		Vars:               []any{lat, lat, lng, lng, k * k},
		WithoutParentheses: true,
	}}
}

func (r *OfferRepository) List(ctx context.Context, f offerDomain.ListFilter) ([]offerDomain.Offer, error) {
	q := r.db.WithContext(ctx).Model(&offerDomain.Offer{})
	if f.DonorID != 0 {
		q = q.Where("donor_id = ?", f.DonorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(food_type) LIKE ? OR LOWER(address) LIKE ?", like, like, like)
	}
	if f.Near != nil {
		q = q.Order(nearestFirst(f.Near.Lat, f.Near.Lng))
	} else {
		order, ok := offerOrderings[f.OrderBy]
		if !ok {
			order = offerOrderings[""]
		}
		q = q.Order(order)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []offerDomain.Offer
	err := q.Find(&out).Error
	return out, err
}
