package mysql

import (
	"context"
	"errors"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"foodrescue-backend/internal/domain/geo"
	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/user"
)

func TestOfferRepository_CreateGetDelete(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewOfferRepository(gdb)
	ctx := context.Background()

	donor := seedUser(t, gdb, "d@example.com", user.RoleDonor)
	o := seedOffer(t, gdb, donor.ID, offer.StatusAvailable)
	if o.ID == 0 {
		t.Fatal("Create did not set ID")
	}

	got, err := repo.GetByOfferID(ctx, o.OfferID)
	if err != nil {
		t.Fatalf("GetByOfferID: %v", err)
	}
	if got.Status != offer.StatusAvailable || got.QuantityEst != 5 {
		t.Fatalf("unexpected offer: %+v", got)
	}

	locked, err := repo.GetByIDForUpdate(ctx, o.ID)
	if err != nil || locked.OfferID != o.OfferID {
		t.Fatalf("GetByIDForUpdate: %v %+v", err, locked)
	}

	if err := repo.Delete(ctx, o.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByOfferID(ctx, o.OfferID); !errors.Is(err, offer.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, o.ID); !errors.Is(err, offer.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestOfferRepository_List(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewOfferRepository(gdb)
	ctx := context.Background()

	d1 := seedUser(t, gdb, "d1@example.com", user.RoleDonor)
	d2 := seedUser(t, gdb, "d2@example.com", user.RoleDonor)
	a := seedOffer(t, gdb, d1.ID, offer.StatusAvailable)
	b := seedOffer(t, gdb, d1.ID, offer.StatusDelivered)
	c := seedOffer(t, gdb, d2.ID, offer.StatusAvailable)
	c.Title = "Fresh Apples"
	if err := repo.Save(ctx, c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	byDonor, err := repo.List(ctx, offer.ListFilter{DonorID: d1.ID})
	if err != nil || len(byDonor) != 2 {
		t.Fatalf("by donor: %v %d", err, len(byDonor))
	}
	// newest first
	if byDonor[0].ID != b.ID || byDonor[1].ID != a.ID {
		t.Fatalf("unexpected order: %d, %d", byDonor[0].ID, byDonor[1].ID)
	}

	avail, err := repo.List(ctx, offer.ListFilter{Status: offer.StatusAvailable, Limit: 1})
	if err != nil || len(avail) != 1 {
		t.Fatalf("available limit 1: %v %d", err, len(avail))
	}

	search, err := repo.List(ctx, offer.ListFilter{Search: "apples"})
	if err != nil || len(search) != 1 || search[0].ID != c.ID {
		t.Fatalf("search: %v %+v", err, search)
	}

	byIDs, err := repo.GetByIDs(ctx, []uint64{a.ID, c.ID})
	if err != nil || len(byIDs) != 2 {
		t.Fatalf("GetByIDs: %v %d", err, len(byIDs))
	}
}

func TestOfferRepository_ListNearestFirst(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewOfferRepository(gdb)
	ctx := context.Background()

	d := seedUser(t, gdb, "d@example.com", user.RoleDonor)
	place := func(lat, lng *float64) *offer.Offer {
		o := seedOffer(t, gdb, d.ID, offer.StatusAvailable)
		o.Latitude, o.Longitude = lat, lng
		if err := repo.Save(ctx, o); err != nil {
			t.Fatalf("Save: %v", err)
		}
		return o
	}
	f := func(v float64) *float64 { return &v }
	mid := place(f(0), f(0.5))
	near := place(f(0), f(0.1))
	nowhere := place(nil, nil)
	far := place(f(0), f(3)) // newest

	got, err := repo.List(ctx, offer.ListFilter{Status: offer.StatusAvailable, Near: &geo.Point{}, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != near.ID || got[1].ID != mid.ID {
		t.Fatalf("limited nearest = %+v", got)
	}

	all, err := repo.List(ctx, offer.ListFilter{Status: offer.StatusAvailable, Near: &geo.Point{}})
	if err != nil || len(all) != 4 {
		t.Fatalf("all: %v %d", err, len(all))
	}
	if all[2].ID != far.ID || all[3].ID != nowhere.ID {
		t.Fatalf("tail order = %d, %d", all[2].ID, all[3].ID)
	}
}

func TestInsertErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fk, perm bool
	}{
		{"mysql fk", &mysqlDriver.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, true, false},
		{"mysql denied", &mysqlDriver.MySQLError{Number: 1142, Message: "INSERT command denied"}, false, true},
		{"pg fk", &pgconn.PgError{Code: "23503"}, true, false},
		{"pg denied", &pgconn.PgError{Code: "42501"}, false, true},
		{"other", errors.New("connection reset"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isForeignKeyViolation(tt.err); got != tt.fk {
				t.Errorf("isForeignKeyViolation = %v, want %v", got, tt.fk)
			}
			if got := isPermissionDenied(tt.err); got != tt.perm {
				t.Errorf("isPermissionDenied = %v, want %v", got, tt.perm)
			}
		})
	}
}
