package sessionmock

import (
	"context"
	"errors"
	"time"

	domain "foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/user"
)

var _ domain.Store = (*Store)(nil)

var errUnimplemented = errors.New("sessionmock: method not implemented")

// Store is a function-backed mock that satisfies domain.Store.
type Store struct {
	SaveFn           func(ctx context.Context, s *domain.Session, ttl time.Duration) error
	GetFn            func(ctx context.Context, sid string) (*domain.Session, error)
	DeleteFn         func(ctx context.Context, sid string) error
	RefreshUserFn    func(ctx context.Context, u *user.User) error
	InvalidateUserFn func(ctx context.Context, userID string) error
}

func (m *Store) Save(ctx context.Context, s *domain.Session, ttl time.Duration) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, s, ttl)
	}
	return nil
}

func (m *Store) Get(ctx context.Context, sid string) (*domain.Session, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, sid)
	}
	return nil, errUnimplemented
}

func (m *Store) Delete(ctx context.Context, sid string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, sid)
	}
	return nil
}

func (m *Store) RefreshUser(ctx context.Context, u *user.User) error {
	if m.RefreshUserFn != nil {
		return m.RefreshUserFn(ctx, u)
	}
	return nil
}

func (m *Store) InvalidateUser(ctx context.Context, userID string) error {
	if m.InvalidateUserFn != nil {
		return m.InvalidateUserFn(ctx, userID)
	}
	return nil
}
