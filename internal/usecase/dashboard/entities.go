package dashboard

import (
	"errors"
	"math"
	"time"

	"foodrescue-backend/internal/domain/offer"
)

var ErrBadStatus = errors.New("unknown offer status filter")

const (
	co2PerKg      = 2.5
	kgPerMeal     = 0.4
	recentLimit   = 10
	adminRecent   = 10
	adminOfferMax = 500
)

// CO2SavedKg estimates the CO2 avoided by rescuing kg of food.
func CO2SavedKg(kg float64) float64 { return kg * co2PerKg }

// Meals rounds down; a partial meal is not a meal. The epsilon absorbs
// float error such as 1.2/0.4 = 2.9999999999999996.
func Meals(kg float64) int { return int(math.Floor(kg/kgPerMeal + 1e-9)) }

type OfferView struct {
	OfferID           string    `json:"offer_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
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
	StatusUpdatedAt   time.Time `json:"status_updated_at"`
	CreatedAt         time.Time `json:"created_at"`
	DonorName         string    `json:"donor_name,omitempty"`
}

// DonorAssignmentView carries the OTP only while the assignment is active.
type DonorAssignmentView struct {
	AssignmentID string     `json:"assignment_id"`
	Status       string     `json:"status"`
	PartnerName  string     `json:"partner_name"`
	PartnerPhone string     `json:"partner_phone,omitempty"`
	OTPCode      string     `json:"otp_code,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type DonorOfferView struct {
	OfferView
	Assignments []DonorAssignmentView `json:"assignments"`
}

type Impact struct {
	TotalOffers     int            `json:"total_offers"`
	DeliveredOffers int            `json:"delivered_offers"`
	ByStatus        map[string]int `json:"by_status"`
	TotalKg         float64        `json:"total_kg"`
	CO2SavedKg      float64        `json:"co2_saved_kg"`
	MealsProvided   int            `json:"meals_provided"`
	PartnersHelped  int            `json:"partners_helped"`
	RecentDelivered []OfferView    `json:"recent_delivered"`
}

type PickupView struct {
	AssignmentID string     `json:"assignment_id"`
	Status       string     `json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Offer        OfferView  `json:"offer"`
	DonorName    string     `json:"donor_name"`
	DonorAddress string     `json:"donor_address,omitempty"`
}

type PartnerSummary struct {
	ByStatus      map[string]int `json:"by_status"`
	Active        int            `json:"active"`
	Completed     int            `json:"completed"`
	KgCollected   float64        `json:"kg_collected"`
	AvailableNow  int            `json:"available_now"`
	MealsProvided int            `json:"meals_provided"`
}

type AdminOverview struct {
	TotalUsers       int            `json:"total_users"`
	Donors           int            `json:"donors"`
	ApprovedPartners int            `json:"approved_partners"`
	PendingPartners  int            `json:"pending_partners"`
	RejectedPartners int            `json:"rejected_partners"`
	TotalOffers      int            `json:"total_offers"`
	OffersByStatus   map[string]int `json:"offers_by_status"`
	TotalKg          float64        `json:"total_kg"`
	CO2SavedKg       float64        `json:"co2_saved_kg"`
	MealsProvided    int            `json:"meals_provided"`
	RecentOffers     []OfferView    `json:"recent_offers"`
}

func toOfferView(o *offer.Offer) OfferView {
	return OfferView{
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
		StatusUpdatedAt:   o.StatusUpdatedAt,
		CreatedAt:         o.CreatedAt,
	}
}

func parseStatus(s string) (offer.Status, error) {
	if s == "" || s == "all" {
		return "", nil
	}
	st := offer.Status(s)
	if !st.Valid() {
		return "", ErrBadStatus
	}
	return st, nil
}
