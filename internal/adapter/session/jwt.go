package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domain "foodrescue-backend/internal/domain/session"
)

type claims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// JWTTokens issues HS256 tokens carrying the user id as sub and the session id as sid.
type JWTTokens struct {
	secret []byte
	issuer string
}

func NewJWTTokens(secret, issuer string) *JWTTokens {
	return &JWTTokens{secret: []byte(secret), issuer: issuer}
}

func (t *JWTTokens) Issue(s *domain.Session) (string, error) {
	c := claims{
		SID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

func (t *JWTTokens) Parse(token string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", domain.ErrExpired
	default:
		return "", domain.ErrUnauthenticated
	}
	if c.SID == "" || c.Subject == "" {
		return "", domain.ErrUnauthenticated
	}
	return c.SID, nil
}
