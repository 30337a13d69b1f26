package offer

import (
	"errors"
	"time"

	"foodrescue-backend/internal/domain/user"
)

var (
	ErrNotFound          = errors.New("offer not found")
	ErrInvalidTransition = errors.New("offer not in a state that allows this action")
	ErrAlreadyAccepted   = errors.New("offer already accepted")
	ErrCompleted         = errors.New("offer already delivered")
	// insert failures, mapped from driver errors by the repository
	ErrDonorProfileMissing = errors.New("donor profile missing")
	ErrPermissionDenied    = errors.New("permission denied")
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusAccepted  Status = "accepted"
	StatusPickedUp  Status = "picked_up"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Table: offers
type Offer struct {
	ID                uint64     `gorm:"primaryKey;column:id" json:"-"`
	OfferID           string     `gorm:"column:offer_id;size:32;uniqueIndex:ux_offers_offer_id" json:"offer_id"`
	DonorID           uint64     `gorm:"column:donor_id;not null;index:idx_offers_donor" json:"-"`
	Title             string     `gorm:"column:title;size:255;not null" json:"title"`
	Description       string     `gorm:"column:description;type:text" json:"description"`
	QuantityEst       float64    `gorm:"column:quantity_est" json:"quantity_est"`
	QuantityUnit      string     `gorm:"column:quantity_unit;size:32" json:"quantity_unit"`
	FoodType          string     `gorm:"column:food_type;size:64" json:"food_type"`
	PickupWindowStart time.Time  `gorm:"column:pickup_window_start;not null" json:"pickup_window_start"`
	PickupWindowEnd   time.Time  `gorm:"column:pickup_window_end;not null" json:"pickup_window_end"`
	Address           string     `gorm:"column:address;type:text" json:"address"`
	Latitude          *float64   `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude         *float64   `gorm:"column:longitude" json:"longitude,omitempty"`
	ImagePath         string     `gorm:"column:image_path;type:text" json:"image_path,omitempty"`
	Status            Status     `gorm:"column:status;type:varchar(16);not null;default:'available';index:idx_offers_status" json:"status"`
	StatusUpdatedAt   time.Time  `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Donor             *user.User `gorm:"foreignKey:DonorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	// offers hang off the donor profile; inserting without one fails the FK
	DonorProfile *user.DonorProfile `gorm:"foreignKey:DonorID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Offer) TableName() string { return "offers" }

// HasLocation reports whether both coordinates are set.
func (o *Offer) HasLocation() bool { return o.Latitude != nil && o.Longitude != nil }
