package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userDomain "foodrescue-backend/internal/domain/user"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return userDomain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*userDomain.User, error) {
	var out userDomain.User
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, notFound(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*userDomain.User, error) {
	var out userDomain.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, notFound(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*userDomain.User, error) {
	var out userDomain.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	var out userDomain.User
	err := r.db.WithContext(ctx).Where("email = ?", userDomain.NormalizeEmail(email)).First(&out).Error
	if err != nil {
		return nil, notFound(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint64) ([]userDomain.User, error) {
	var out []userDomain.User
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *UserRepository) Save(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepository) List(ctx context.Context, f userDomain.ListFilter) ([]userDomain.User, error) {
	q := r.db.WithContext(ctx).Model(&userDomain.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	switch f.Approval {
	case userDomain.ApprovalPending:
		q = q.Where("approved IS NULL")
	case userDomain.ApprovalApproved:
		q = q.Where("approved = ?", true)
	case userDomain.ApprovalRejected:
		q = q.Where("approved = ?", false)
	}
	if f.Banned != nil {
		q = q.Where("banned = ?", *f.Banned)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	var out []userDomain.User
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *UserRepository) GetDonorProfile(ctx context.Context, userID uint64) (*userDomain.DonorProfile, error) {
	var out userDomain.DonorProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, notFound(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) GetDonorProfiles(ctx context.Context, userIDs []uint64) ([]userDomain.DonorProfile, error) {
	var out []userDomain.DonorProfile
	if len(userIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&out).Error
	return out, err
}

// SaveDonorProfile upserts on user_id.
func (r *UserRepository) SaveDonorProfile(ctx context.Context, p *userDomain.DonorProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"business_name", "address", "city", "latitude", "longitude", "opening_hours", "updated_at",
		}),
	}).Create(p).Error
}

func (r *UserRepository) GetPartnerProfile(ctx context.Context, userID uint64) (*userDomain.PartnerProfile, error) {
	var out userDomain.PartnerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, notFound(err, userDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *UserRepository) GetPartnerProfiles(ctx context.Context, userIDs []uint64) ([]userDomain.PartnerProfile, error) {
	var out []userDomain.PartnerProfile
	if len(userIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&out).Error
	return out, err
}

func (r *UserRepository) SavePartnerProfile(ctx context.Context, p *userDomain.PartnerProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"org_name", "address", "city", "latitude", "longitude", "capacity_info", "collection_prefs", "updated_at",
		}),
	}).Create(p).Error
}
