package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"foodrescue-backend/internal/adapter/middleware"
	domainApproval "foodrescue-backend/internal/domain/approval"
	"foodrescue-backend/internal/domain/user"
	"foodrescue-backend/internal/usecase/approval"
	"foodrescue-backend/internal/usecase/dashboard"
)

type DashboardHandler struct {
	views    *dashboard.Usecase
	approval *approval.Usecase
}

func NewDashboardHandler(views *dashboard.Usecase, approval *approval.Usecase) *DashboardHandler {
	return &DashboardHandler{views: views, approval: approval}
}

func (h *DashboardHandler) Donor(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	ctx := c.Request().Context()
	impact, err := h.views.DonorImpact(ctx, s)
	if err != nil {
		return respondErr(c, err)
	}
	offers, err := h.views.DonorOffers(ctx, s, "")
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"impact": impact, "offers": offers})
}

func (h *DashboardHandler) DonorOffers(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	rows, err := h.views.DonorOffers(c.Request().Context(), s, c.QueryParam("status"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"offers": rows})
}

func (h *DashboardHandler) DonorImpact(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	impact, err := h.views.DonorImpact(c.Request().Context(), s)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, impact)
}

func (h *DashboardHandler) Partner(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	sum, err := h.views.PartnerSummary(c.Request().Context(), s)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *DashboardHandler) PartnerPickups(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	rows, err := h.views.PartnerPickups(c.Request().Context(), s)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"pickups": rows})
}

// PartnerStatus serves both gate views. A partner whose state does not
// match the view is pointed at the right one.
func (h *DashboardHandler) PartnerStatus(want user.ApprovalState) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, _ := middleware.SessionFrom(c)
		st, err := h.approval.Status(c.Request().Context(), s)
		if err != nil {
			return respondErr(c, err)
		}
		if st.State != want {
			redirect := domainApproval.GateFor(s.Role, st.State).Redirect()
			if redirect == "" {
				redirect = "/dashboard/partner"
			}
			return c.JSON(http.StatusConflict, ErrorResponse{
				Error:    "partner account is " + string(st.State),
				Redirect: redirect,
			})
		}
		return c.JSON(http.StatusOK, st)
	}
}

func (h *DashboardHandler) Admin(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	ov, err := h.views.AdminOverview(c.Request().Context(), s)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, ov)
}

func (h *DashboardHandler) AdminOffers(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	rows, err := h.views.AdminOffers(c.Request().Context(), s, c.QueryParam("status"), c.QueryParam("q"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"offers": rows})
}
