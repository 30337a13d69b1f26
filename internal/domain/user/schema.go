package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// SchemaVersion is the only profile document version currently accepted.
const SchemaVersion = 1

// SchemaError reports a profile JSON document that does not match its schema.
type SchemaError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string { return e.Field + ": " + e.Message }

var reClock = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var weekdays = map[string]bool{
	"mon": true, "tue": true, "wed": true, "thu": true, "fri": true, "sat": true, "sun": true,
}

type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// OpeningHours v1: {"version":1,"days":{"mon":{"open":"08:00","close":"17:00"}}}
type OpeningHours struct {
	Version int                 `json:"version"`
	Days    map[string]DayHours `json:"days"`
}

// CapacityInfo v1
type CapacityInfo struct {
	Version      int     `json:"version"`
	StorageKg    float64 `json:"storage_kg"`
	Refrigerated bool    `json:"refrigerated"`
	Frozen       bool    `json:"frozen"`
	Vehicles     int     `json:"vehicles"`
}

// CollectionPrefs v1
type CollectionPrefs struct {
	Version       int      `json:"version"`
	FoodTypes     []string `json:"food_types"`
	MaxDistanceKm float64  `json:"max_distance_km"`
	PickupDays    []string `json:"pickup_days"`
}

func decodeStrict(field string, raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &SchemaError{Field: field, Message: "must be valid JSON matching the schema: " + err.Error()}
	}
	if dec.More() {
		return &SchemaError{Field: field, Message: "must contain a single JSON object"}
	}
	return nil
}

func checkVersion(field string, v int) error {
	if v != SchemaVersion {
		return &SchemaError{Field: field, Message: fmt.Sprintf("unsupported version %d (want %d)", v, SchemaVersion)}
	}
	return nil
}

func isEmptyDoc(raw []byte) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// DecodeOpeningHours returns (nil, nil) for an empty document.
func DecodeOpeningHours(raw []byte) (*OpeningHours, error) {
	if isEmptyDoc(raw) {
		return nil, nil
	}
	var oh OpeningHours
	if err := decodeStrict("opening_hours", raw, &oh); err != nil {
		return nil, err
	}
	if err := checkVersion("opening_hours", oh.Version); err != nil {
		return nil, err
	}
	for day, h := range oh.Days {
		if !weekdays[day] {
			return nil, &SchemaError{Field: "opening_hours", Message: "unknown day " + day}
		}
		if h.Closed {
			continue
		}
		if !reClock.MatchString(h.Open) || !reClock.MatchString(h.Close) {
			return nil, &SchemaError{Field: "opening_hours", Message: day + ": open/close must be HH:MM"}
		}
		if h.Close <= h.Open {
			return nil, &SchemaError{Field: "opening_hours", Message: day + ": close must be after open"}
		}
	}
	return &oh, nil
}

func DecodeCapacityInfo(raw []byte) (*CapacityInfo, error) {
	if isEmptyDoc(raw) {
		return nil, nil
	}
	var ci CapacityInfo
	if err := decodeStrict("capacity_info", raw, &ci); err != nil {
		return nil, err
	}
	if err := checkVersion("capacity_info", ci.Version); err != nil {
		return nil, err
	}
	if ci.StorageKg < 0 || ci.Vehicles < 0 {
		return nil, &SchemaError{Field: "capacity_info", Message: "storage_kg and vehicles must not be negative"}
	}
	return &ci, nil
}

func DecodeCollectionPrefs(raw []byte) (*CollectionPrefs, error) {
	if isEmptyDoc(raw) {
		return nil, nil
	}
	var cp CollectionPrefs
	if err := decodeStrict("collection_prefs", raw, &cp); err != nil {
		return nil, err
	}
	if err := checkVersion("collection_prefs", cp.Version); err != nil {
		return nil, err
	}
	if cp.MaxDistanceKm < 0 {
		return nil, &SchemaError{Field: "collection_prefs", Message: "max_distance_km must not be negative"}
	}
	for _, d := range cp.PickupDays {
		if !weekdays[d] {
			return nil, &SchemaError{Field: "collection_prefs", Message: "unknown pickup day " + d}
		}
	}
	return &cp, nil
}

// IsSchemaError reports whether err (or anything it wraps) is a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
