package user

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"foodrescue-backend/internal/domain/geo"
	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/uow"
	domainUser "foodrescue-backend/internal/domain/user"
	"foodrescue-backend/internal/testutil/sessionmock"
	"foodrescue-backend/internal/testutil/uowmock"
	"foodrescue-backend/internal/testutil/usermock"
)

var adminSess = &session.Session{UserPK: 1, UserID: "admin-1", Role: domainUser.RoleAdmin}

type stubGeocoder struct {
	calls int
	err   error
}

func (g *stubGeocoder) Geocode(context.Context, string) (*geo.Place, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &geo.Place{Lat: 10, Lng: 20}, nil
}

func (g *stubGeocoder) Reverse(context.Context, float64, float64) string { return "" }

func newUC(users *usermock.Repo, store *sessionmock.Store, g geo.Geocoder) *Usecase {
	return NewUsecase(users, uowmock.Passthrough(uow.Repos{Users: users}), store, g, zap.NewNop())
}

func TestList_Filters(t *testing.T) {
	var got domainUser.ListFilter
	users := &usermock.Repo{
		ListFn: func(_ context.Context, f domainUser.ListFilter) ([]domainUser.User, error) {
			got = f
			return []domainUser.User{{UserID: "u1", Role: domainUser.RoleDonor}}, nil
		},
	}
	uc := newUC(users, &sessionmock.Store{}, nil)

	tests := []struct {
		name       string
		in         ListInput
		wantBanned *bool
		wantErr    error
	}{
		{name: "all", in: ListInput{Status: StatusAll}},
		{name: "active", in: ListInput{Status: StatusActive}, wantBanned: new(bool)},
		{name: "banned", in: ListInput{Status: StatusBanned, Role: domainUser.RolePartner, Search: "bob"}, wantBanned: func() *bool { b := true; return &b }()},
		{name: "bad status", in: ListInput{Status: "gone"}, wantErr: ErrBadFilter},
		{name: "bad role", in: ListInput{Role: "root"}, wantErr: domainUser.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = domainUser.ListFilter{}
			out, err := uc.List(context.Background(), adminSess, tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || len(out) != 1 {
				t.Fatalf("out=%v err=%v", out, err)
			}
			if (got.Banned == nil) != (tt.wantBanned == nil) || (got.Banned != nil && *got.Banned != *tt.wantBanned) {
				t.Fatalf("banned filter = %v", got.Banned)
			}
			if got.Role != tt.in.Role || got.Search != tt.in.Search {
				t.Fatalf("filter = %+v", got)
			}
		})
	}
}

func TestSetBanned(t *testing.T) {
	target := &domainUser.User{ID: 5, UserID: "u5", Role: domainUser.RoleDonor}
	var saved *domainUser.User
	var invalidated []string
	users := &usermock.Repo{
		GetByUserIDForUpdateFn: func(context.Context, string) (*domainUser.User, error) {
			cp := *target
			return &cp, nil
		},
		SaveFn: func(_ context.Context, u *domainUser.User) error { saved = u; return nil },
	}
	store := &sessionmock.Store{
		InvalidateUserFn: func(_ context.Context, id string) error {
			invalidated = append(invalidated, id)
			return nil
		},
	}
	uc := newUC(users, store, nil)

	dto, err := uc.SetBanned(context.Background(), adminSess, "u5", true)
	if err != nil {
		t.Fatalf("ban: %v", err)
	}
	if !dto.Banned || !saved.Banned || len(invalidated) != 1 || invalidated[0] != "u5" {
		t.Fatalf("dto=%+v saved=%+v invalidated=%v", dto, saved, invalidated)
	}

	if _, err := uc.SetBanned(context.Background(), adminSess, "u5", false); err != nil {
		t.Fatalf("unban: %v", err)
	}
	if saved.Banned || len(invalidated) != 1 {
		t.Fatal("unban should not invalidate sessions")
	}

	if _, err := uc.SetBanned(context.Background(), adminSess, "admin-1", true); !errors.Is(err, ErrSelfChange) {
		t.Fatalf("self ban: want ErrSelfChange, got %v", err)
	}
	donor := &session.Session{UserID: "d1", Role: domainUser.RoleDonor}
	if _, err := uc.SetBanned(context.Background(), donor, "u5", true); !errors.Is(err, session.ErrForbidden) {
		t.Fatalf("donor: want ErrForbidden, got %v", err)
	}
}

func TestChangeRole(t *testing.T) {
	var saved *domainUser.User
	var invalidated []string
	users := &usermock.Repo{
		GetByUserIDForUpdateFn: func(context.Context, string) (*domainUser.User, error) {
			return &domainUser.User{ID: 5, UserID: "u5", Role: domainUser.RoleDonor}, nil
		},
		SaveFn: func(_ context.Context, u *domainUser.User) error { saved = u; return nil },
	}
	store := &sessionmock.Store{
		InvalidateUserFn: func(_ context.Context, id string) error {
			invalidated = append(invalidated, id)
			return nil
		},
	}
	uc := newUC(users, store, nil)

	dto, err := uc.ChangeRole(context.Background(), adminSess, "u5", domainUser.RolePartner)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if dto.Role != domainUser.RolePartner || saved.Role != domainUser.RolePartner || len(invalidated) != 1 {
		t.Fatalf("dto=%+v invalidated=%v", dto, invalidated)
	}
	if _, err := uc.ChangeRole(context.Background(), adminSess, "admin-1", domainUser.RoleDonor); !errors.Is(err, ErrSelfChange) {
		t.Fatalf("self: want ErrSelfChange, got %v", err)
	}
	if _, err := uc.ChangeRole(context.Background(), adminSess, "u5", "root"); !errors.Is(err, domainUser.ErrInvalidRole) {
		t.Fatalf("bad role: want ErrInvalidRole, got %v", err)
	}
}

func TestSaveDonorProfile(t *testing.T) {
	donor := &session.Session{UserPK: 3, UserID: "d3", Role: domainUser.RoleDonor}
	var savedUser *domainUser.User
	var savedProfile *domainUser.DonorProfile
	refreshed := 0
	users := &usermock.Repo{
		GetDonorProfileFn: func(context.Context, uint64) (*domainUser.DonorProfile, error) {
			return nil, domainUser.ErrNotFound
		},
		GetByUserIDForUpdateFn: func(context.Context, string) (*domainUser.User, error) {
			return &domainUser.User{ID: 3, UserID: "d3", Name: "Old", Role: domainUser.RoleDonor}, nil
		},
		SaveFn:             func(_ context.Context, u *domainUser.User) error { savedUser = u; return nil },
		SaveDonorProfileFn: func(_ context.Context, p *domainUser.DonorProfile) error { savedProfile = p; return nil },
	}
	store := &sessionmock.Store{
		RefreshUserFn: func(context.Context, *domainUser.User) error { refreshed++; return nil },
	}
	g := &stubGeocoder{}
	uc := newUC(users, store, g)

	out, err := uc.SaveDonorProfile(context.Background(), donor, DonorProfileInput{
		Name:         "New Name",
		BusinessName: " Bakery ",
		Address:      "1 Main St",
		OpeningHours: []byte(`{"version":1,"days":{"mon":{"open":"08:00","close":"17:00"},"sun":{"closed":true}}}`),
	})
	if err != nil {
		t.Fatalf("SaveDonorProfile: %v", err)
	}
	if savedUser.Name != "New Name" || savedProfile.UserID != 3 || savedProfile.BusinessName != "Bakery" {
		t.Fatalf("user=%+v profile=%+v", savedUser, savedProfile)
	}
	if g.calls != 1 || savedProfile.Latitude == nil || *savedProfile.Latitude != 10 {
		t.Fatalf("geocode calls=%d lat=%v", g.calls, savedProfile.Latitude)
	}
	if savedProfile.OpeningHours == nil || !savedProfile.OpeningHours.Days["sun"].Closed {
		t.Fatalf("opening hours = %+v", savedProfile.OpeningHours)
	}
	if out.Donor != savedProfile || refreshed != 1 {
		t.Fatalf("out=%+v refreshed=%d", out, refreshed)
	}
}

func TestSaveDonorProfile_KeepsResolvedLocation(t *testing.T) {
	lat, lng := 1.5, 2.5
	donor := &session.Session{UserPK: 3, UserID: "d3", Role: domainUser.RoleDonor}
	var savedProfile *domainUser.DonorProfile
	users := &usermock.Repo{
		GetDonorProfileFn: func(context.Context, uint64) (*domainUser.DonorProfile, error) {
			return &domainUser.DonorProfile{ID: 9, UserID: 3, Address: "1 Main St", Latitude: &lat, Longitude: &lng}, nil
		},
		GetByUserIDForUpdateFn: func(context.Context, string) (*domainUser.User, error) {
			return &domainUser.User{ID: 3, UserID: "d3", Role: domainUser.RoleDonor}, nil
		},
		SaveDonorProfileFn: func(_ context.Context, p *domainUser.DonorProfile) error { savedProfile = p; return nil },
	}
	g := &stubGeocoder{}
	if _, err := newUC(users, &sessionmock.Store{}, g).SaveDonorProfile(context.Background(), donor, DonorProfileInput{Address: "1 Main St"}); err != nil {
		t.Fatalf("SaveDonorProfile: %v", err)
	}
	if g.calls != 0 || savedProfile.ID != 9 || *savedProfile.Latitude != 1.5 {
		t.Fatalf("calls=%d profile=%+v", g.calls, savedProfile)
	}
}

func TestSaveProfile_SchemaErrors(t *testing.T) {
	donor := &session.Session{UserPK: 3, UserID: "d3", Role: domainUser.RoleDonor}
	partner := &session.Session{UserPK: 4, UserID: "p4", Role: domainUser.RolePartner}
	users := &usermock.Repo{}
	uc := newUC(users, &sessionmock.Store{}, nil)

	tests := []struct {
		name string
		run  func() error
	}{
		{"unknown field", func() error {
			_, err := uc.SaveDonorProfile(context.Background(), donor, DonorProfileInput{OpeningHours: []byte(`{"version":1,"hours":{}}`)})
			return err
		}},
		{"unknown version", func() error {
			_, err := uc.SaveDonorProfile(context.Background(), donor, DonorProfileInput{OpeningHours: []byte(`{"version":2,"days":{}}`)})
			return err
		}},
		{"negative capacity", func() error {
			_, err := uc.SavePartnerProfile(context.Background(), partner, PartnerProfileInput{OrgName: "x", CapacityInfo: []byte(`{"version":1,"storage_kg":-1}`)})
			return err
		}},
		{"bad pickup day", func() error {
			_, err := uc.SavePartnerProfile(context.Background(), partner, PartnerProfileInput{OrgName: "x", CollectionPrefs: []byte(`{"version":1,"pickup_days":["someday"]}`)})
			return err
		}},
		{"missing org name", func() error {
			_, err := uc.SavePartnerProfile(context.Background(), partner, PartnerProfileInput{OrgName: " "})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !domainUser.IsSchemaError(err) {
				t.Fatalf("want schema error, got %v", err)
			}
		})
	}
}

func TestSavePartnerProfile_GeocodeFailure(t *testing.T) {
	partner := &session.Session{UserPK: 4, UserID: "p4", Role: domainUser.RolePartner}
	var savedProfile *domainUser.PartnerProfile
	users := &usermock.Repo{
		GetPartnerProfileFn: func(context.Context, uint64) (*domainUser.PartnerProfile, error) {
			return &domainUser.PartnerProfile{ID: 2, UserID: 4, OrgName: "Old"}, nil
		},
		GetByUserIDForUpdateFn: func(context.Context, string) (*domainUser.User, error) {
			return &domainUser.User{ID: 4, UserID: "p4", Role: domainUser.RolePartner}, nil
		},
		SavePartnerProfileFn: func(_ context.Context, p *domainUser.PartnerProfile) error { savedProfile = p; return nil },
	}
	g := &stubGeocoder{err: errors.New("timeout")}
	out, err := newUC(users, &sessionmock.Store{}, g).SavePartnerProfile(context.Background(), partner, PartnerProfileInput{
		OrgName:         "Food Bank",
		Address:         "2 Side St",
		CapacityInfo:    []byte(`{"version":1,"storage_kg":200,"refrigerated":true,"vehicles":2}`),
		CollectionPrefs: []byte(`{"version":1,"food_types":["bakery"],"max_distance_km":15,"pickup_days":["mon","fri"]}`),
	})
	if err != nil {
		t.Fatalf("SavePartnerProfile: %v", err)
	}
	if savedProfile.OrgName != "Food Bank" || savedProfile.Latitude != nil || savedProfile.CapacityInfo.StorageKg != 200 {
		t.Fatalf("profile = %+v", savedProfile)
	}
	if out.Partner.CollectionPrefs.MaxDistanceKm != 15 {
		t.Fatalf("prefs = %+v", out.Partner.CollectionPrefs)
	}
}

func TestGetProfile(t *testing.T) {
	partner := &session.Session{UserPK: 4, UserID: "p4", Role: domainUser.RolePartner}
	users := &usermock.Repo{
		GetByUserIDFn: func(context.Context, string) (*domainUser.User, error) {
			return &domainUser.User{ID: 4, UserID: "p4", Role: domainUser.RolePartner}, nil
		},
		GetPartnerProfileFn: func(context.Context, uint64) (*domainUser.PartnerProfile, error) {
			return nil, domainUser.ErrNotFound
		},
	}
	out, err := newUC(users, &sessionmock.Store{}, nil).GetProfile(context.Background(), partner)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if out.User.UserID != "p4" || out.Partner != nil || out.Donor != nil {
		t.Fatalf("out = %+v", out)
	}
}
