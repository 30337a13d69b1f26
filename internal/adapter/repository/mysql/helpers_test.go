package mysql

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/user"
	"foodrescue-backend/internal/infrastructure/db"
	"foodrescue-backend/pkg/id"
)

// openTestDB creates an in-memory sqlite DB with the full schema. One
// connection only, so every query sees the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, email string, role user.Role) *user.User {
	t.Helper()
	u := &user.User{UserID: id.NewID32(), Email: email, Name: "User " + email, Role: role}
	if err := NewUserRepository(gdb).Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedOffer(t *testing.T, gdb *gorm.DB, donorID uint64, status offer.Status) *offer.Offer {
	t.Helper()
	now := time.Now().UTC()
	o := &offer.Offer{
		OfferID:           id.NewID32(),
		DonorID:           donorID,
		Title:             "Bread",
		QuantityEst:       5,
		QuantityUnit:      "kg",
		FoodType:          "bakery",
		PickupWindowStart: now.Add(time.Hour),
		PickupWindowEnd:   now.Add(3 * time.Hour),
		Address:           "1 Main St",
		Status:            status,
		StatusUpdatedAt:   now,
	}
	if err := NewOfferRepository(gdb).Create(context.Background(), o); err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	return o
}

func boolPtr(b bool) *bool { return &b }
