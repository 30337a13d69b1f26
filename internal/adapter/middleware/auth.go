package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	domainApproval "foodrescue-backend/internal/domain/approval"
	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/user"
)

const sessionKey = "session"

// SessionResolver turns a bearer token into the live session.
type SessionResolver interface {
	Current(ctx context.Context, token string) (*session.Session, error)
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Auth rejects requests without a live session and stores the session on
// both the echo context and the request context.
func Auth(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := bearerToken(c.Request())
			if tok == "" {
				return c.JSON(http.StatusUnauthorized, errorBody("missing bearer token"))
			}
			s, err := resolver.Current(c.Request().Context(), tok)
			switch {
			case err == nil:
			case errors.Is(err, session.ErrExpired):
				return c.JSON(http.StatusUnauthorized, errorBody("session expired"))
			case errors.Is(err, session.ErrUnauthenticated):
				return c.JSON(http.StatusUnauthorized, errorBody("not authenticated"))
			default:
				return err
			}
			if s.Banned {
				return c.JSON(http.StatusForbidden, errorBody("account is banned"))
			}
			c.Set(sessionKey, s)
			c.SetRequest(c.Request().WithContext(session.WithContext(c.Request().Context(), s)))
			return next(c)
		}
	}
}

func SessionFrom(c echo.Context) (*session.Session, bool) {
	s, ok := c.Get(sessionKey).(*session.Session)
	return s, ok && s != nil
}

// RequireRole must run after Auth.
func RequireRole(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := SessionFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorBody("not authenticated"))
			}
			if err := s.Require(roles...); err != nil {
				return c.JSON(http.StatusForbidden, errorBody("permission denied"))
			}
			return next(c)
		}
	}
}

// PartnerGate keeps pending and rejected partners on their status views.
func PartnerGate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := SessionFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorBody("not authenticated"))
			}
			g := domainApproval.GateFor(s.Role, s.ApprovalState())
			if g != domainApproval.GateDashboard {
				return c.JSON(http.StatusForbidden, errorResponse{
					Error:    "partner account is " + string(g),
					Redirect: g.Redirect(),
				})
			}
			return next(c)
		}
	}
}
