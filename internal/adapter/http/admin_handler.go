package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"foodrescue-backend/internal/adapter/middleware"
	"foodrescue-backend/internal/usecase/approval"
	ucUser "foodrescue-backend/internal/usecase/user"
)

type AdminHandler struct {
	approval *approval.Usecase
	users    *ucUser.Usecase
}

func NewAdminHandler(approval *approval.Usecase, users *ucUser.Usecase) *AdminHandler {
	return &AdminHandler{approval: approval, users: users}
}

func (h *AdminHandler) Applications(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	filter := c.QueryParam("status")
	if filter == "" {
		filter = approval.FilterPending
	}
	rows, err := h.approval.ListApplications(c.Request().Context(), s, filter)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"applications": rows})
}

func (h *AdminHandler) Approve(c echo.Context) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	dto, err := h.approval.Approve(c.Request().Context(), s, userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Reject leaves the reason check to the usecase so a blank reason is refused
// before anything is read.
func (h *AdminHandler) Reject(c echo.Context) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	var req approval.RejectInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	s, _ := middleware.SessionFrom(c)
	dto, err := h.approval.Reject(c.Request().Context(), s, userID, req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) Users(c echo.Context) error {
	var in ucUser.ListInput
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &in); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}
	s, _ := middleware.SessionFrom(c)
	rows, err := h.users.List(c.Request().Context(), s, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"users": rows})
}

func (h *AdminHandler) Ban(c echo.Context) error   { return h.setBanned(c, true) }
func (h *AdminHandler) Unban(c echo.Context) error { return h.setBanned(c, false) }

func (h *AdminHandler) setBanned(c echo.Context, banned bool) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	dto, err := h.users.SetBanned(c.Request().Context(), s, userID, banned)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) ChangeRole(c echo.Context) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	var req ucUser.ChangeRoleInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	dto, err := h.users.ChangeRole(c.Request().Context(), s, userID, req.Role)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
