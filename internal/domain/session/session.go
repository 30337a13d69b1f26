package session

import (
	"context"
	"errors"
	"time"

	"foodrescue-backend/internal/domain/user"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrExpired         = errors.New("session expired")
	ErrForbidden       = errors.New("permission denied")
)

// Session is the signed-in user as seen by every workflow call. It is acquired at
// sign-in/sign-up, refreshed by token refresh or by admin changes to the user, and
// invalidated by sign-out, ban and role change.
type Session struct {
	ID        string    `json:"sid"`
	UserPK    uint64    `json:"upk"`
	UserID    string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      user.Role `json:"role"`
	Approved  *bool     `json:"approved"`
	Banned    bool      `json:"banned"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// FromUser builds the user part of a session snapshot.
func FromUser(u *user.User) Session {
	return Session{
		UserPK:   u.ID,
		UserID:   u.UserID,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		Approved: u.Approved,
		Banned:   u.Banned,
	}
}

// Apply copies the mutable user fields into the snapshot.
func (s *Session) Apply(u *user.User) {
	s.Email = u.Email
	s.Name = u.Name
	s.Role = u.Role
	s.Approved = u.Approved
	s.Banned = u.Banned
}

func (s Session) Is(role user.Role) bool { return s.Role == role }

func (s Session) ApprovalState() user.ApprovalState { return user.StateOf(s.Approved) }

// Require returns ErrForbidden unless the session has one of roles.
func (s Session) Require(roles ...user.Role) error {
	if s.UserID == "" {
		return ErrUnauthenticated
	}
	if s.Banned {
		return ErrForbidden
	}
	for _, r := range roles {
		if s.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// Store keeps session snapshots server-side.
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, sid string) (*Session, error)
	Delete(ctx context.Context, sid string) error
	// Rewrite every live snapshot of the user
	RefreshUser(ctx context.Context, u *user.User) error
	// Drop every live session of the user
	InvalidateUser(ctx context.Context, userID string) error
}

// Tokens signs and verifies the bearer token that references a stored session.
type Tokens interface {
	Issue(s *Session) (string, error)
	Parse(token string) (sid string, err error)
}

type ctxKey struct{}

func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
