package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/uow"
	"foodrescue-backend/internal/domain/user"
	"foodrescue-backend/pkg/id"
)

// compared against when the email is unknown, so both paths pay for bcrypt
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)

type Usecase struct {
	users    user.Repository
	uow      uow.UnitOfWork
	sessions session.Store
	tokens   session.Tokens
	ttl      time.Duration
	log      *zap.Logger

	hashCost int
	now      func() time.Time
}

func NewUsecase(users user.Repository, tx uow.UnitOfWork, sessions session.Store, tokens session.Tokens, ttl time.Duration, log *zap.Logger) *Usecase {
	return &Usecase{
		users:    users,
		uow:      tx,
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		log:      log,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (u *Usecase) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	switch in.Role {
	case user.RoleDonor, user.RolePartner, user.RoleVolunteer:
	default:
		return nil, ErrRoleNotAllowed
	}
	if len(in.Password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}
	orgName := strings.TrimSpace(in.OrgName)
	if in.Role == user.RolePartner && orgName == "" {
		return nil, ErrOrgNameRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.hashCost)
	if err != nil {
		return nil, err
	}
	usr := &user.User{
		UserID:       id.NewID32(),
		Email:        user.NormalizeEmail(in.Email),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         in.Role,
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByEmail(ctx, usr.Email); err == nil {
			return user.ErrEmailTaken
		} else if !errors.Is(err, user.ErrNotFound) {
			return err
		}
		if err := r.Users.Create(ctx, usr); err != nil {
			return err
		}
		switch usr.Role {
		case user.RolePartner:
			return r.Users.SavePartnerProfile(ctx, &user.PartnerProfile{UserID: usr.ID, OrgName: orgName})
		case user.RoleDonor:
			return r.Users.SaveDonorProfile(ctx, &user.DonorProfile{UserID: usr.ID, BusinessName: strings.TrimSpace(in.BusinessName)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("user signed up", zap.String("user_id", usr.UserID), zap.String("role", string(usr.Role)))
	return u.start(ctx, usr)
}

func (u *Usecase) SignIn(ctx context.Context, in SignInInput) (*AuthResult, error) {
	usr, err := u.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, user.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrBadCredentials
	}
	if usr.Banned {
		return nil, ErrBanned
	}
	return u.start(ctx, usr)
}

func (u *Usecase) start(ctx context.Context, usr *user.User) (*AuthResult, error) {
	s := session.FromUser(usr)
	s.ID = uuid.NewString()
	s.IssuedAt = u.now().UTC()
	s.ExpiresAt = s.IssuedAt.Add(u.ttl)
	return u.persist(ctx, &s)
}

func (u *Usecase) persist(ctx context.Context, s *session.Session) (*AuthResult, error) {
	if err := u.sessions.Save(ctx, s, u.ttl); err != nil {
		return nil, err
	}
	tok, err := u.tokens.Issue(s)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: tok, ExpiresAt: s.ExpiresAt, Session: s}, nil
}

// Current resolves a bearer token to its live session snapshot.
func (u *Usecase) Current(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, session.ErrUnauthenticated
	}
	sid, err := u.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	s, err := u.sessions.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !s.ExpiresAt.IsZero() && u.now().After(s.ExpiresAt) {
		return nil, session.ErrExpired
	}
	return s, nil
}

// Refresh re-reads the user, extends the session and issues a new token.
func (u *Usecase) Refresh(ctx context.Context, s *session.Session) (*AuthResult, error) {
	usr, err := u.users.GetByUserID(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	if usr.Banned {
		if err := u.sessions.InvalidateUser(ctx, usr.UserID); err != nil {
			u.log.Warn("invalidate banned user sessions", zap.String("user_id", usr.UserID), zap.Error(err))
		}
		return nil, ErrBanned
	}
	next := *s
	next.Apply(usr)
	next.ExpiresAt = u.now().UTC().Add(u.ttl)
	return u.persist(ctx, &next)
}

func (u *Usecase) SignOut(ctx context.Context, s *session.Session) error {
	return u.sessions.Delete(ctx, s.ID)
}

func (u *Usecase) Me(ctx context.Context, s *session.Session) (*user.User, error) {
	return u.users.GetByUserID(ctx, s.UserID)
}
