package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	assignmentDomain "foodrescue-backend/internal/domain/assignment"
)

type AssignmentRepository struct{ db *gorm.DB }

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *assignmentDomain.Assignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
}

func (r *AssignmentRepository) GetByAssignmentID(ctx context.Context, assignmentID string) (*assignmentDomain.Assignment, error) {
	var out assignmentDomain.Assignment
	err := r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).First(&out).Error
	if err != nil {
		return nil, notFound(err, assignmentDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *AssignmentRepository) GetByAssignmentIDForUpdate(ctx context.Context, assignmentID string) (*assignmentDomain.Assignment, error) {
	var out assignmentDomain.Assignment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("assignment_id = ?", assignmentID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, assignmentDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *AssignmentRepository) GetActiveByOfferID(ctx context.Context, offerID uint64) (*assignmentDomain.Assignment, error) {
	var out assignmentDomain.Assignment
	err := r.db.WithContext(ctx).
		Where("offer_id = ? AND status IN ?", offerID, assignmentDomain.ActiveStatuses).
		Order("created_at DESC, id DESC").
		First(&out).Error
	if err != nil {
		return nil, notFound(err, assignmentDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *AssignmentRepository) ListByOfferIDs(ctx context.Context, offerIDs []uint64) ([]assignmentDomain.Assignment, error) {
	var out []assignmentDomain.Assignment
	if len(offerIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Where("offer_id IN ?", offerIDs).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *AssignmentRepository) ListByPartnerID(ctx context.Context, partnerID uint64) ([]assignmentDomain.Assignment, error) {
	var out []assignmentDomain.Assignment
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *AssignmentRepository) Save(ctx context.Context, a *assignmentDomain.Assignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}

func (r *AssignmentRepository) DeleteByOfferID(ctx context.Context, offerID uint64) error {
	return r.db.WithContext(ctx).Where("offer_id = ?", offerID).Delete(&assignmentDomain.Assignment{}).Error
}
