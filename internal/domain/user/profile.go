package user

import "time"

// Table: donor_profiles
type DonorProfile struct {
	ID           uint64        `gorm:"primaryKey;column:id" json:"-"`
	UserID       uint64        `gorm:"column:user_id;not null;uniqueIndex:ux_donor_profiles_user" json:"-"`
	BusinessName string        `gorm:"column:business_name;size:255" json:"business_name"`
	Address      string        `gorm:"column:address;type:text" json:"address"`
	City         string        `gorm:"column:city;size:128" json:"city"`
	Latitude     *float64      `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude    *float64      `gorm:"column:longitude" json:"longitude,omitempty"`
	OpeningHours *OpeningHours `gorm:"column:opening_hours;type:text;serializer:json" json:"opening_hours,omitempty"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DonorProfile) TableName() string { return "donor_profiles" }

// Table: partner_profiles
type PartnerProfile struct {
	ID              uint64           `gorm:"primaryKey;column:id" json:"-"`
	UserID          uint64           `gorm:"column:user_id;not null;uniqueIndex:ux_partner_profiles_user" json:"-"`
	OrgName         string           `gorm:"column:org_name;size:255;not null" json:"org_name"`
	Address         string           `gorm:"column:address;type:text" json:"address"`
	City            string           `gorm:"column:city;size:128" json:"city"`
	Latitude        *float64         `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude       *float64         `gorm:"column:longitude" json:"longitude,omitempty"`
	CapacityInfo    *CapacityInfo    `gorm:"column:capacity_info;type:text;serializer:json" json:"capacity_info,omitempty"`
	CollectionPrefs *CollectionPrefs `gorm:"column:collection_prefs;type:text;serializer:json" json:"collection_prefs,omitempty"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PartnerProfile) TableName() string { return "partner_profiles" }

// HasLocation reports whether both coordinates are set.
func (p *PartnerProfile) HasLocation() bool { return p != nil && p.Latitude != nil && p.Longitude != nil }
