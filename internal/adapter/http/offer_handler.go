package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"foodrescue-backend/internal/adapter/middleware"
	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/validation"
	ucOffer "foodrescue-backend/internal/usecase/offer"
)

const maxImageBytes = 5 << 20

// accepted by multipart pickup window fields besides RFC3339
const localMinuteLayout = "2006-01-02T15:04"

type OfferHandler struct{ uc *ucOffer.Usecase }

func NewOfferHandler(uc *ucOffer.Usecase) *OfferHandler { return &OfferHandler{uc: uc} }

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func parseFormTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation(localMinuteLayout, raw, time.UTC)
}

func parseFormFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// offerFromForm reads the multipart fields; malformed values are collected
// as field errors rather than failing on the first one.
func offerFromForm(c echo.Context) (ucOffer.CreateOfferInput, error) {
	ve := &validation.Error{}
	in := ucOffer.CreateOfferInput{
		Title:        c.FormValue("title"),
		Description:  c.FormValue("description"),
		QuantityUnit: c.FormValue("quantity_unit"),
		FoodType:     c.FormValue("food_type"),
		Address:      c.FormValue("address"),
	}
	if q, err := parseFormFloat(c.FormValue("quantity_est")); err != nil {
		ve.Add("quantity_est", "must be a number")
	} else if q != nil {
		in.QuantityEst = *q
	}
	for _, f := range []struct {
		name string
		dst  *time.Time
	}{
		{"pickup_window_start", &in.PickupWindowStart},
		{"pickup_window_end", &in.PickupWindowEnd},
	} {
		raw := c.FormValue(f.name)
		if raw == "" {
			continue
		}
		t, err := parseFormTime(raw)
		if err != nil {
			ve.Add(f.name, "must be RFC3339 or YYYY-MM-DDTHH:MM")
			continue
		}
		*f.dst = t
	}
	var err error
	if in.Latitude, err = parseFormFloat(c.FormValue("latitude")); err != nil {
		ve.Add("latitude", "must be a number")
	}
	if in.Longitude, err = parseFormFloat(c.FormValue("longitude")); err != nil {
		ve.Add("longitude", "must be a number")
	}
	return in, ve.Err()
}

func (h *OfferHandler) Create(c echo.Context) error {
	var in ucOffer.CreateOfferInput
	var img *ucOffer.Image

	if isMultipart(c) {
		var err error
		if in, err = offerFromForm(c); err != nil {
			return respondErr(c, err)
		}
		fh, err := c.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image upload"})
		case fh.Size > maxImageBytes:
			return respondErr(c, &validation.Error{Fields: []validation.FieldError{{Field: "image", Message: "must be at most 5 MB"}}})
		case !strings.HasPrefix(fh.Header.Get(echo.HeaderContentType), "image/"):
			return respondErr(c, &validation.Error{Fields: []validation.FieldError{{Field: "image", Message: "must be an image"}}})
		default:
			f, err := fh.Open()
			if err != nil {
				return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image upload"})
			}
			defer f.Close()
			img = &ucOffer.Image{Filename: fh.Filename, Body: f}
		}
	} else if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&in); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	s, _ := middleware.SessionFrom(c)
	res, err := h.uc.Create(c.Request().Context(), s, in, img)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *OfferHandler) Get(c echo.Context) error {
	offerID, ok, err := pathID(c, "offer_id")
	if !ok {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	dto, err := h.uc.Get(c.Request().Context(), s, offerID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *OfferHandler) Browse(c echo.Context) error {
	near, err := queryPoint(c)
	if err != nil {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	rows, err := h.uc.ListAvailable(c.Request().Context(), s, near)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"offers": rows})
}

func (h *OfferHandler) Cancel(c echo.Context) error {
	offerID, ok, err := pathID(c, "offer_id")
	if !ok {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	dto, err := h.uc.CancelOffer(c.Request().Context(), s, offerID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *OfferHandler) Delete(c echo.Context) error {
	offerID, ok, err := pathID(c, "offer_id")
	if !ok {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	if err := h.uc.Delete(c.Request().Context(), s, offerID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OfferHandler) Accept(c echo.Context) error {
	offerID, ok, err := pathID(c, "offer_id")
	if !ok {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	dto, err := h.uc.Accept(c.Request().Context(), s, offerID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type completeReq struct {
	OTP string `json:"otp" form:"otp" validate:"required,otp"`
}

func (h *OfferHandler) StartPickup(c echo.Context) error {
	return h.assignmentAction(c, h.uc.StartPickup)
}

func (h *OfferHandler) CancelPickup(c echo.Context) error {
	return h.assignmentAction(c, h.uc.CancelAssignment)
}

func (h *OfferHandler) Complete(c echo.Context) error {
	var req completeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	return h.assignmentAction(c, func(ctx context.Context, s *session.Session, id string) (*ucOffer.AssignmentDTO, error) {
		return h.uc.Complete(ctx, s, id, req.OTP)
	})
}

func (h *OfferHandler) assignmentAction(c echo.Context, fn func(ctx context.Context, s *session.Session, assignmentID string) (*ucOffer.AssignmentDTO, error)) error {
	assignmentID, ok, err := pathID(c, "assignment_id")
	if !ok {
		return err
	}
	s, _ := middleware.SessionFrom(c)
	dto, err := fn(c.Request().Context(), s, assignmentID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
