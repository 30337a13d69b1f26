package offer

import (
	"context"
	"errors"
	"io"
	"time"

	"foodrescue-backend/internal/domain/assignment"
	domainOffer "foodrescue-backend/internal/domain/offer"
)

var ErrNotApproved = errors.New("partner account is not approved")

const imageUploadWarning = "image upload failed; offer created without image"

// ImageStore is the object storage used for offer photos.
type ImageStore interface {
	NewKey(prefix, filename string) (string, error)
	Upload(ctx context.Context, bucket, key string, r io.Reader) (string, error)
	PublicURL(bucket, key string) string
	KeyFromURL(bucket, url string) (string, bool)
	Remove(ctx context.Context, bucket, key string) error
}

type Image struct {
	Filename string
	Body     io.Reader
}

type CreateOfferInput struct {
	Title             string    `json:"title" form:"title" validate:"required,max=255"`
	Description       string    `json:"description" form:"description" validate:"max=5000"`
	QuantityEst       float64   `json:"quantity_est" form:"quantity_est" validate:"gt=0"`
	QuantityUnit      string    `json:"quantity_unit" form:"quantity_unit" validate:"omitempty,max=32"`
	FoodType          string    `json:"food_type" form:"food_type" validate:"required,max=64"`
	PickupWindowStart time.Time `json:"pickup_window_start" form:"pickup_window_start" validate:"required"`
	PickupWindowEnd   time.Time `json:"pickup_window_end" form:"pickup_window_end" validate:"required"`
	Address           string    `json:"address" form:"address" validate:"max=1000"`
	Latitude          *float64  `json:"latitude" form:"latitude" validate:"omitempty,latitude"`
	Longitude         *float64  `json:"longitude" form:"longitude" validate:"omitempty,longitude"`
}

type OfferDTO struct {
	OfferID           string    `json:"offer_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	QuantityEst       float64   `json:"quantity_est"`
	QuantityUnit      string    `json:"quantity_unit"`
	FoodType          string    `json:"food_type"`
	PickupWindowStart time.Time `json:"pickup_window_start"`
	PickupWindowEnd   time.Time `json:"pickup_window_end"`
	Address           string    `json:"address"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	ImagePath         string    `json:"image_path,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	DonorName         string    `json:"donor_name,omitempty"`
	DistanceKm        *float64  `json:"distance_km,omitempty"`
}

type CreateResult struct {
	Offer    OfferDTO `json:"offer"`
	Warnings []string `json:"warnings,omitempty"`
}

type AssignmentDTO struct {
	AssignmentID string     `json:"assignment_id"`
	OfferID      string     `json:"offer_id"`
	Status       string     `json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toOfferDTO(o *domainOffer.Offer) OfferDTO {
	return OfferDTO{
		OfferID:           o.OfferID,
		Title:             o.Title,
		Description:       o.Description,
		QuantityEst:       o.QuantityEst,
		QuantityUnit:      o.QuantityUnit,
		FoodType:          o.FoodType,
		PickupWindowStart: o.PickupWindowStart,
		PickupWindowEnd:   o.PickupWindowEnd,
		Address:           o.Address,
		Latitude:          o.Latitude,
		Longitude:         o.Longitude,
		ImagePath:         o.ImagePath,
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
	}
}

func toAssignmentDTO(a *assignment.Assignment, offerID string) *AssignmentDTO {
	return &AssignmentDTO{
		AssignmentID: a.AssignmentID,
		OfferID:      offerID,
		Status:       string(a.Status),
		CompletedAt:  a.CompletedAt,
		CreatedAt:    a.CreatedAt,
	}
}
