package http

import (
	"errors"
	"strings"
	"testing"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestHex32Validation(t *testing.T) {
	type P struct {
		OfferID string `json:"offer_id" validate:"hex32"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{OfferID: strings.Repeat("a", 32)}); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}

	for _, s := range []string{
		"",                                  // empty
		strings.Repeat("A", 32),             // uppercase
		"deadbeef",                          // too short
		strings.Repeat("g", 32),             // non-hex char
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x", // 33 with extra
	} {
		err := cv.Validate(P{OfferID: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "offer_id", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestOTPValidation(t *testing.T) {
	type P struct {
		OTP string `json:"otp" validate:"otp"`
	}
	cv := NewValidator()

	for _, s := range []string{"000000", "123456", " 654321 "} {
		if err := cv.Validate(P{OTP: s}); err != nil {
			t.Fatalf("expected otp OK for %q, got %v", s, err)
		}
	}
	for _, s := range []string{"", "12345", "1234567", "12a456", "１２３４５６"} {
		err := cv.Validate(P{OTP: s})
		if err == nil {
			t.Fatalf("expected otp error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "otp", "6-digit") {
			t.Fatalf("expected '6-digit' for %q, got %+v", s, fe)
		}
	}
}

func TestFieldNamesAndMessages(t *testing.T) {
	type P struct {
		Email    string   `json:"email" validate:"required,email"`
		Password string   `json:"password" validate:"min=8"`
		Role     string   `json:"role" validate:"oneof=donor partner"`
		Quantity float64  `json:"quantity_est" validate:"gt=0"`
		Lat      *float64 `json:"latitude" validate:"omitempty,latitude"`
		Lng      *float64 `json:"longitude" validate:"omitempty,longitude"`
		Note     string   `form:"note" validate:"max=3"`
	}
	lat, lng := 91.0, -181.0
	err := NewValidator().Validate(P{
		Email:    "nope",
		Password: "short",
		Role:     "admin",
		Quantity: 0,
		Lat:      &lat,
		Lng:      &lng,
		Note:     "toolong",
	})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	fe := ToFieldErrors(err)
	for _, want := range []struct{ field, msg string }{
		{"email", "valid email"},
		{"password", "at least 8"},
		{"role", "one of: donor partner"},
		{"quantity_est", "greater than 0"},
		{"latitude", "between -90 and 90"},
		{"longitude", "between -180 and 180"},
		{"note", "at most 3"},
	} {
		if !containsFieldMsg(fe, want.field, want.msg) {
			t.Errorf("missing %q for %s: %+v", want.msg, want.field, fe)
		}
	}

	if err := NewValidator().Validate(P{Email: "a@b.co", Password: "long enough", Role: "donor", Quantity: 1}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
}

func TestRequiredMapping(t *testing.T) {
	type P struct {
		Name string `json:"name" validate:"required"`
	}
	fe := ToFieldErrors(NewValidator().Validate(P{}))
	if !containsFieldMsg(fe, "name", "is required") {
		t.Fatalf("missing 'is required' for name: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}
