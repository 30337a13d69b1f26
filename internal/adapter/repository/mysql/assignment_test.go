package mysql

import (
	"context"
	"errors"
	"testing"

	"foodrescue-backend/internal/domain/assignment"
	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/user"
	"foodrescue-backend/pkg/id"
)

func TestAssignmentRepository_ActiveAndLists(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewAssignmentRepository(gdb)
	ctx := context.Background()

	donor := seedUser(t, gdb, "d@example.com", user.RoleDonor)
	partner := seedUser(t, gdb, "p@example.com", user.RolePartner)
	o := seedOffer(t, gdb, donor.ID, offer.StatusAccepted)

	if _, err := repo.GetActiveByOfferID(ctx, o.ID); !errors.Is(err, assignment.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	old := &assignment.Assignment{AssignmentID: id.NewID32(), OfferID: o.ID, PartnerID: partner.ID, Status: assignment.StatusCancelled, OTPCode: "111111"}
	cur := &assignment.Assignment{AssignmentID: id.NewID32(), OfferID: o.ID, PartnerID: partner.ID, Status: assignment.StatusPending, OTPCode: "222222"}
	for _, a := range []*assignment.Assignment{old, cur} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	active, err := repo.GetActiveByOfferID(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetActiveByOfferID: %v", err)
	}
	if active.AssignmentID != cur.AssignmentID || active.OTPCode != "222222" {
		t.Fatalf("unexpected active assignment: %+v", active)
	}

	byOffer, err := repo.ListByOfferIDs(ctx, []uint64{o.ID})
	if err != nil || len(byOffer) != 2 {
		t.Fatalf("ListByOfferIDs: %v %d", err, len(byOffer))
	}
	byPartner, err := repo.ListByPartnerID(ctx, partner.ID)
	if err != nil || len(byPartner) != 2 {
		t.Fatalf("ListByPartnerID: %v %d", err, len(byPartner))
	}

	cur.Status = assignment.StatusInProgress
	if err := repo.Save(ctx, cur); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.GetByAssignmentIDForUpdate(ctx, cur.AssignmentID)
	if err != nil || got.Status != assignment.StatusInProgress {
		t.Fatalf("after save: %v %+v", err, got)
	}

	if err := repo.DeleteByOfferID(ctx, o.ID); err != nil {
		t.Fatalf("DeleteByOfferID: %v", err)
	}
	if _, err := repo.GetByAssignmentID(ctx, cur.AssignmentID); !errors.Is(err, assignment.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}
