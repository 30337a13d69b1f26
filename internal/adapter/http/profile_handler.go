package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"foodrescue-backend/internal/adapter/middleware"
	ucUser "foodrescue-backend/internal/usecase/user"
)

type ProfileHandler struct{ uc *ucUser.Usecase }

func NewProfileHandler(uc *ucUser.Usecase) *ProfileHandler { return &ProfileHandler{uc: uc} }

func (h *ProfileHandler) Get(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	dto, err := h.uc.GetProfile(c.Request().Context(), s)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProfileHandler) SaveDonor(c echo.Context) error {
	var req ucUser.DonorProfileInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	dto, err := h.uc.SaveDonorProfile(c.Request().Context(), s, req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProfileHandler) SavePartner(c echo.Context) error {
	var req ucUser.PartnerProfileInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	dto, err := h.uc.SavePartnerProfile(c.Request().Context(), s, req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
