package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"foodrescue-backend/internal/adapter/middleware"
	"foodrescue-backend/internal/usecase/identity"
)

type AuthHandler struct{ uc *identity.Usecase }

func NewAuthHandler(uc *identity.Usecase) *AuthHandler { return &AuthHandler{uc: uc} }

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req identity.SignUpInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.uc.SignUp(c.Request().Context(), req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var req identity.SignInInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.uc.SignIn(c.Request().Context(), req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	res, err := h.uc.Refresh(c.Request().Context(), s)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	if err := h.uc.SignOut(c.Request().Context(), s); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	u, err := h.uc.Me(c.Request().Context(), s)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
