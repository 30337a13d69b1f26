package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainApproval "foodrescue-backend/internal/domain/approval"
	"foodrescue-backend/internal/domain/assignment"
	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/user"
	"foodrescue-backend/internal/domain/validation"
	"foodrescue-backend/internal/usecase/dashboard"
	"foodrescue-backend/internal/usecase/identity"
	ucOffer "foodrescue-backend/internal/usecase/offer"
	ucUser "foodrescue-backend/internal/usecase/user"
)

var statusByErr = []struct {
	err  error
	code int
}{
	{session.ErrUnauthenticated, http.StatusUnauthorized},
	{session.ErrExpired, http.StatusUnauthorized},
	{identity.ErrBadCredentials, http.StatusUnauthorized},

	{session.ErrForbidden, http.StatusForbidden},
	{offer.ErrPermissionDenied, http.StatusForbidden},
	{identity.ErrBanned, http.StatusForbidden},
	{ucOffer.ErrNotApproved, http.StatusForbidden},
	{ucUser.ErrSelfChange, http.StatusForbidden},

	{user.ErrNotFound, http.StatusNotFound},
	{offer.ErrNotFound, http.StatusNotFound},
	{assignment.ErrNotFound, http.StatusNotFound},

	{user.ErrEmailTaken, http.StatusConflict},
	{offer.ErrInvalidTransition, http.StatusConflict},
	{offer.ErrAlreadyAccepted, http.StatusConflict},
	{offer.ErrCompleted, http.StatusConflict},
	{assignment.ErrInvalidTransition, http.StatusConflict},
	{assignment.ErrActiveExists, http.StatusConflict},
	{domainApproval.ErrAlreadyApproved, http.StatusConflict},
	{domainApproval.ErrAlreadyRejected, http.StatusConflict},

	{assignment.ErrInvalidOTP, http.StatusUnprocessableEntity},

	{identity.ErrWeakPassword, http.StatusBadRequest},
	{identity.ErrRoleNotAllowed, http.StatusBadRequest},
	{identity.ErrOrgNameRequired, http.StatusBadRequest},
	{user.ErrNotPartner, http.StatusBadRequest},
	{user.ErrInvalidRole, http.StatusBadRequest},
	{offer.ErrDonorProfileMissing, http.StatusBadRequest},
	{ucUser.ErrBadFilter, http.StatusBadRequest},
	{dashboard.ErrBadStatus, http.StatusBadRequest},
}

// respondErr writes the JSON error for a known usecase error. Anything else
// is returned unchanged so the echo error handler logs it as a 500.
func respondErr(c echo.Context, err error) error {
	var ve *validation.Error
	if errors.As(err, &ve) {
		details := make([]FieldError, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			details = append(details, FieldError{Field: f.Field, Message: f.Message})
		}
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: details})
	}
	var se *user.SchemaError
	if errors.As(err, &se) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: se.Field, Message: se.Message}},
		})
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(vErrs)})
	}
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return c.JSON(m.code, ErrorResponse{Error: m.err.Error()})
		}
	}
	return err
}

// bindValid binds and validates req, writing the 400/422 itself.
// ok is false when the response has already been written.
func bindValid(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// ErrorHandler renders every error as ErrorResponse and logs server errors.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		}
		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, ErrorResponse{Error: msg})
	}
}
