package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/user"
)

type fakeResolver map[string]*session.Session

func (f fakeResolver) Current(_ context.Context, token string) (*session.Session, error) {
	if token == "expired" {
		return nil, session.ErrExpired
	}
	s, ok := f[token]
	if !ok {
		return nil, session.ErrUnauthenticated
	}
	return s, nil
}

func boolPtr(b bool) *bool { return &b }

func newAuthEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	resolver := fakeResolver{
		"donor":    {UserID: "d1", Role: user.RoleDonor},
		"admin":    {UserID: "a1", Role: user.RoleAdmin},
		"banned":   {UserID: "b1", Role: user.RoleDonor, Banned: true},
		"pending":  {UserID: "p1", Role: user.RolePartner},
		"approved": {UserID: "p2", Role: user.RolePartner, Approved: boolPtr(true)},
		"rejected": {UserID: "p3", Role: user.RolePartner, Approved: boolPtr(false)},
	}
	all := append([]echo.MiddlewareFunc{Auth(resolver)}, mw...)
	e.GET("/private", func(c echo.Context) error {
		s, ok := SessionFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		if ctxS, ok := session.FromContext(c.Request().Context()); !ok || ctxS.UserID != s.UserID {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, s.UserID)
	}, all...)
	return e
}

func get(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	e := newAuthEcho()
	tests := []struct {
		token string
		want  int
	}{
		{"", http.StatusUnauthorized},
		{"unknown", http.StatusUnauthorized},
		{"expired", http.StatusUnauthorized},
		{"banned", http.StatusForbidden},
		{"donor", http.StatusOK},
	}
	for _, tt := range tests {
		if rec := get(e, tt.token); rec.Code != tt.want {
			t.Errorf("token %q: got %d want %d", tt.token, rec.Code, tt.want)
		}
	}
	if rec := get(e, "donor"); rec.Body.String() != "d1" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "bearer   abc ")
	if got := bearerToken(req); got != "abc" {
		t.Fatalf("got %q", got)
	}
	req.Header.Set(echo.HeaderAuthorization, "Basic abc")
	if got := bearerToken(req); got != "" {
		t.Fatalf("basic auth should not yield a token, got %q", got)
	}
}

func TestRequireRole(t *testing.T) {
	e := newAuthEcho(RequireRole(user.RoleAdmin))
	if rec := get(e, "donor"); rec.Code != http.StatusForbidden {
		t.Fatalf("donor: got %d", rec.Code)
	}
	if rec := get(e, "admin"); rec.Code != http.StatusOK {
		t.Fatalf("admin: got %d", rec.Code)
	}
}

func TestPartnerGate(t *testing.T) {
	e := newAuthEcho(PartnerGate())
	tests := []struct {
		token    string
		want     int
		redirect string
	}{
		{"pending", http.StatusForbidden, "/dashboard/partner/pending"},
		{"rejected", http.StatusForbidden, "/dashboard/partner/rejected"},
		{"approved", http.StatusOK, ""},
		{"donor", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			rec := get(e, tt.token)
			if rec.Code != tt.want {
				t.Fatalf("got %d want %d", rec.Code, tt.want)
			}
			if tt.redirect == "" {
				return
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Redirect != tt.redirect {
				t.Fatalf("redirect = %q want %q", body.Redirect, tt.redirect)
			}
		})
	}
}
