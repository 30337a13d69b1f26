package user

import "context"

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	Role     Role
	Approval ApprovalState
	Banned   *bool
	// Search matches name or email (case-insensitive substring).
	Search string
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uint64) (*User, error)
	GetByUserID(ctx context.Context, userID string) (*User, error)
	// Row-locking variant for approval / admin changes inside a tx
	GetByUserIDForUpdate(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]User, error)
	Save(ctx context.Context, u *User) error
	List(ctx context.Context, f ListFilter) ([]User, error)

	GetDonorProfile(ctx context.Context, userID uint64) (*DonorProfile, error)
	GetDonorProfiles(ctx context.Context, userIDs []uint64) ([]DonorProfile, error)
	SaveDonorProfile(ctx context.Context, p *DonorProfile) error
	GetPartnerProfile(ctx context.Context, userID uint64) (*PartnerProfile, error)
	GetPartnerProfiles(ctx context.Context, userIDs []uint64) ([]PartnerProfile, error)
	SavePartnerProfile(ctx context.Context, p *PartnerProfile) error
}
