package offer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"foodrescue-backend/internal/domain/assignment"
	"foodrescue-backend/internal/domain/geo"
	"foodrescue-backend/internal/domain/notification"
	domainOffer "foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/uow"
	"foodrescue-backend/internal/domain/user"
	"foodrescue-backend/internal/domain/validation"
	"foodrescue-backend/pkg/id"
)

const (
	BucketOfferImages = "offer-images"
	browseLimit       = 200
)

type Usecase struct {
	users       user.Repository
	offers      domainOffer.Repository
	assignments assignment.Repository
	uow         uow.UnitOfWork
	geocoder    geo.Geocoder
	images      ImageStore
	events      notification.Events
	log         *zap.Logger

	now    func() time.Time
	newOTP func() (string, error)
}

type Deps struct {
	Users       user.Repository
	Offers      domainOffer.Repository
	Assignments assignment.Repository
	UoW         uow.UnitOfWork
	Geocoder    geo.Geocoder
	Images      ImageStore
	Events      notification.Events
	Log         *zap.Logger
}

// NewUsecase: Geocoder, Images and Events may be nil; their steps are skipped.
func NewUsecase(d Deps) *Usecase {
	return &Usecase{
		users:       d.Users,
		offers:      d.Offers,
		assignments: d.Assignments,
		uow:         d.UoW,
		geocoder:    d.Geocoder,
		images:      d.Images,
		events:      d.Events,
		log:         d.Log,
		now:         time.Now,
		newOTP:      id.NewOTP,
	}
}

func validateCreate(in *CreateOfferInput) error {
	var v validation.Error
	in.Title = strings.TrimSpace(in.Title)
	in.FoodType = strings.TrimSpace(in.FoodType)
	in.Address = strings.TrimSpace(in.Address)
	if in.Title == "" {
		v.Add("title", "is required")
	}
	if in.QuantityEst <= 0 {
		v.Add("quantity_est", "must be greater than 0")
	}
	if in.FoodType == "" {
		v.Add("food_type", "is required")
	}
	if in.PickupWindowStart.IsZero() {
		v.Add("pickup_window_start", "is required")
	}
	if in.PickupWindowEnd.IsZero() {
		v.Add("pickup_window_end", "is required")
	} else if !in.PickupWindowStart.IsZero() && !in.PickupWindowEnd.After(in.PickupWindowStart) {
		v.Add("pickup_window_end", "must be after pickup_window_start")
	}
	hasPoint := in.Latitude != nil && in.Longitude != nil
	if (in.Latitude == nil) != (in.Longitude == nil) {
		v.Add("location", "latitude and longitude must be given together")
	} else if in.Address == "" && !hasPoint {
		v.Add("location", "address or coordinates are required")
	}
	return v.Err()
}

// Create inserts a new available offer for the donor. Image upload and
// geocoding are best-effort.
func (u *Usecase) Create(ctx context.Context, s *session.Session, in CreateOfferInput, img *Image) (*CreateResult, error) {
	if err := s.Require(user.RoleDonor); err != nil {
		return nil, err
	}
	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	now := u.now().UTC()
	o := &domainOffer.Offer{
		OfferID:           id.NewID32(),
		DonorID:           s.UserPK,
		Title:             in.Title,
		Description:       strings.TrimSpace(in.Description),
		QuantityEst:       in.QuantityEst,
		QuantityUnit:      strings.TrimSpace(in.QuantityUnit),
		FoodType:          in.FoodType,
		PickupWindowStart: in.PickupWindowStart.UTC(),
		PickupWindowEnd:   in.PickupWindowEnd.UTC(),
		Address:           in.Address,
		Latitude:          in.Latitude,
		Longitude:         in.Longitude,
		Status:            domainOffer.StatusAvailable,
		StatusUpdatedAt:   now,
	}
	if o.QuantityUnit == "" {
		o.QuantityUnit = "kg"
	}
	u.resolveLocation(ctx, o)

	res := &CreateResult{}
	if img != nil && img.Body != nil && u.images != nil {
		if url, err := u.uploadImage(ctx, s.UserPK, img); err != nil {
			u.log.Warn("offer image upload failed", zap.String("donor_id", s.UserID), zap.Error(err))
			res.Warnings = append(res.Warnings, imageUploadWarning)
		} else {
			o.ImagePath = url
		}
	}

	if err := u.offers.Create(ctx, o); err != nil {
		return nil, err
	}

	if u.events != nil {
		if err := u.events.OfferPosted(ctx, o.OfferID); err != nil {
			u.log.Warn("offer posted event failed", zap.String("offer_id", o.OfferID), zap.Error(err))
		}
	}
	res.Offer = toOfferDTO(o)
	return res, nil
}

func (u *Usecase) resolveLocation(ctx context.Context, o *domainOffer.Offer) {
	if u.geocoder == nil {
		return
	}
	switch {
	case o.Address != "" && !o.HasLocation():
		p, err := u.geocoder.Geocode(ctx, o.Address)
		if err != nil || p == nil {
			u.log.Info("offer address not geocoded", zap.String("address", o.Address), zap.Error(err))
			return
		}
		o.Latitude, o.Longitude = &p.Lat, &p.Lng
	case o.Address == "" && o.HasLocation():
		o.Address = u.geocoder.Reverse(ctx, *o.Latitude, *o.Longitude)
	}
}

func (u *Usecase) uploadImage(ctx context.Context, donorPK uint64, img *Image) (string, error) {
	key, err := u.images.NewKey(strconv.FormatUint(donorPK, 10), img.Filename)
	if err != nil {
		return "", err
	}
	if _, err := u.images.Upload(ctx, BucketOfferImages, key, img.Body); err != nil {
		return "", err
	}
	return u.images.PublicURL(BucketOfferImages, key), nil
}

// Get returns one offer if the caller may see it: its donor, an admin, or a
// partner when the offer is available or was assigned to them.
func (u *Usecase) Get(ctx context.Context, s *session.Session, offerID string) (*OfferDTO, error) {
	if err := s.Require(user.RoleDonor, user.RolePartner, user.RoleAdmin); err != nil {
		return nil, err
	}
	o, err := u.offers.GetByOfferID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	switch s.Role {
	case user.RoleDonor:
		if o.DonorID != s.UserPK {
			return nil, domainOffer.ErrNotFound
		}
	case user.RolePartner:
		if o.Status != domainOffer.StatusAvailable {
			mine, err := u.assignedTo(ctx, o.ID, s.UserPK)
			if err != nil {
				return nil, err
			}
			if !mine {
				return nil, domainOffer.ErrNotFound
			}
		}
	}
	dto := toOfferDTO(o)
	dto.DonorName = u.donorName(ctx, o.DonorID)
	if s.Is(user.RolePartner) {
		if here := u.partnerPoint(ctx, s.UserPK); here != nil && o.HasLocation() {
			d := geo.DistanceKm(*here, geo.Point{Lat: *o.Latitude, Lng: *o.Longitude})
			dto.DistanceKm = &d
		}
	}
	return &dto, nil
}

func (u *Usecase) assignedTo(ctx context.Context, offerPK, partnerPK uint64) (bool, error) {
	as, err := u.assignments.ListByOfferIDs(ctx, []uint64{offerPK})
	if err != nil {
		return false, err
	}
	for _, a := range as {
		if a.PartnerID == partnerPK {
			return true, nil
		}
	}
	return false, nil
}

func (u *Usecase) donorName(ctx context.Context, donorPK uint64) string {
	if p, err := u.users.GetDonorProfile(ctx, donorPK); err == nil && p.BusinessName != "" {
		return p.BusinessName
	}
	if d, err := u.users.GetByID(ctx, donorPK); err == nil {
		return d.DisplayName()
	}
	return ""
}

func (u *Usecase) partnerPoint(ctx context.Context, partnerPK uint64) *geo.Point {
	p, err := u.users.GetPartnerProfile(ctx, partnerPK)
	if err != nil {
		return nil
	}
	return geo.PointOf(p.Latitude, p.Longitude)
}

// ListAvailable is the partner browse view. With a reference point (the
// query's, else the partner profile's) rows carry distance_km and are sorted
// nearest first; offers without coordinates go last.
func (u *Usecase) ListAvailable(ctx context.Context, s *session.Session, near *geo.Point) ([]OfferDTO, error) {
	if err := s.Require(user.RolePartner, user.RoleAdmin); err != nil {
		return nil, err
	}
	if near == nil && s.Is(user.RolePartner) {
		near = u.partnerPoint(ctx, s.UserPK)
	}
	rows, err := u.offers.List(ctx, domainOffer.ListFilter{
		Status: domainOffer.StatusAvailable,
		Limit:  browseLimit,
		Near:   near,
	})
	if err != nil {
		return nil, err
	}

	donorIDs := make([]uint64, 0, len(rows))
	for _, o := range rows {
		donorIDs = append(donorIDs, o.DonorID)
	}
	names := u.donorNames(ctx, donorIDs)

	out := make([]OfferDTO, 0, len(rows))
	for i := range rows {
		dto := toOfferDTO(&rows[i])
		dto.DonorName = names[rows[i].DonorID]
		if near != nil && rows[i].HasLocation() {
			d := geo.DistanceKm(*near, geo.Point{Lat: *rows[i].Latitude, Lng: *rows[i].Longitude})
			dto.DistanceKm = &d
		}
		out = append(out, dto)
	}
	if near != nil {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DistanceKm, out[j].DistanceKm
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return *a < *b
			}
		})
	}
	return out, nil
}

func (u *Usecase) donorNames(ctx context.Context, donorIDs []uint64) map[uint64]string {
	names := make(map[uint64]string, len(donorIDs))
	if len(donorIDs) == 0 {
		return names
	}
	if users, err := u.users.GetByIDs(ctx, donorIDs); err == nil {
		for i := range users {
			names[users[i].ID] = users[i].DisplayName()
		}
	}
	if profiles, err := u.users.GetDonorProfiles(ctx, donorIDs); err == nil {
		for _, p := range profiles {
			if p.BusinessName != "" {
				names[p.UserID] = p.BusinessName
			}
		}
	}
	return names
}

func requireApprovedPartner(s *session.Session) error {
	if err := s.Require(user.RolePartner); err != nil {
		return err
	}
	if s.ApprovalState() != user.ApprovalApproved {
		return ErrNotApproved
	}
	return nil
}

// Accept creates the pending assignment and moves the offer to accepted in
// one transaction with the offer row locked.
func (u *Usecase) Accept(ctx context.Context, s *session.Session, offerID string) (*AssignmentDTO, error) {
	if err := requireApprovedPartner(s); err != nil {
		return nil, err
	}
	var dto *AssignmentDTO
	err := u.uow.WithinOfferTx(ctx, offerID, func(r uow.Repos, o *domainOffer.Offer) error {
		now := u.now().UTC()
		if err := o.TransitionTo(domainOffer.StatusAccepted, now); err != nil {
			return err
		}
		if _, err := r.Assignments.GetActiveByOfferID(ctx, o.ID); err == nil {
			return assignment.ErrActiveExists
		} else if !errors.Is(err, assignment.ErrNotFound) {
			return err
		}

		otp, err := u.newOTP()
		if err != nil {
			return fmt.Errorf("generate otp: %w", err)
		}
		a := &assignment.Assignment{
			AssignmentID: id.NewID32(),
			OfferID:      o.ID,
			PartnerID:    s.UserPK,
			Status:       assignment.StatusPending,
			OTPCode:      otp,
		}
		if err := r.Assignments.Create(ctx, a); err != nil {
			return err
		}
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		dto = toAssignmentDTO(a, o.OfferID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("offer accepted", zap.String("offer_id", offerID), zap.String("partner_id", s.UserID))
	return dto, nil
}

// withOwnAssignment runs fn inside the assignment transaction after checking
// the caller owns the assignment.
func (u *Usecase) withOwnAssignment(ctx context.Context, s *session.Session, assignmentID string,
	fn func(r uow.Repos, a *assignment.Assignment, o *domainOffer.Offer, now time.Time) error,
) (*AssignmentDTO, error) {
	if err := requireApprovedPartner(s); err != nil {
		return nil, err
	}
	var dto *AssignmentDTO
	err := u.uow.WithinAssignmentTx(ctx, assignmentID, func(r uow.Repos, a *assignment.Assignment, o *domainOffer.Offer) error {
		if a.PartnerID != s.UserPK {
			return assignment.ErrNotFound
		}
		if err := fn(r, a, o, u.now().UTC()); err != nil {
			return err
		}
		if err := r.Assignments.Save(ctx, a); err != nil {
			return err
		}
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		dto = toAssignmentDTO(a, o.OfferID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) StartPickup(ctx context.Context, s *session.Session, assignmentID string) (*AssignmentDTO, error) {
	return u.withOwnAssignment(ctx, s, assignmentID, func(_ uow.Repos, a *assignment.Assignment, o *domainOffer.Offer, now time.Time) error {
		if err := a.TransitionTo(assignment.StatusInProgress); err != nil {
			return err
		}
		return o.TransitionTo(domainOffer.StatusPickedUp, now)
	})
}

// Complete verifies the donor's OTP. A wrong code changes nothing.
func (u *Usecase) Complete(ctx context.Context, s *session.Session, assignmentID, otp string) (*AssignmentDTO, error) {
	dto, err := u.withOwnAssignment(ctx, s, assignmentID, func(_ uow.Repos, a *assignment.Assignment, o *domainOffer.Offer, now time.Time) error {
		if err := a.Complete(strings.TrimSpace(otp), now); err != nil {
			return err
		}
		return o.TransitionTo(domainOffer.StatusDelivered, now)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("pickup completed", zap.String("assignment_id", assignmentID), zap.String("partner_id", s.UserID))
	return dto, nil
}

func (u *Usecase) CancelAssignment(ctx context.Context, s *session.Session, assignmentID string) (*AssignmentDTO, error) {
	return u.withOwnAssignment(ctx, s, assignmentID, func(_ uow.Repos, a *assignment.Assignment, o *domainOffer.Offer, now time.Time) error {
		if err := a.TransitionTo(assignment.StatusCancelled); err != nil {
			return err
		}
		return o.TransitionTo(domainOffer.StatusAvailable, now)
	})
}

func ownsOffer(s *session.Session, o *domainOffer.Offer) bool {
	return s.Is(user.RoleAdmin) || (s.Is(user.RoleDonor) && o.DonorID == s.UserPK)
}

// CancelOffer withdraws the offer and cancels its active assignment, if any.
func (u *Usecase) CancelOffer(ctx context.Context, s *session.Session, offerID string) (*OfferDTO, error) {
	if err := s.Require(user.RoleDonor, user.RoleAdmin); err != nil {
		return nil, err
	}
	var dto OfferDTO
	err := u.uow.WithinOfferTx(ctx, offerID, func(r uow.Repos, o *domainOffer.Offer) error {
		if !ownsOffer(s, o) {
			return domainOffer.ErrNotFound
		}
		now := u.now().UTC()
		if err := o.TransitionTo(domainOffer.StatusCancelled, now); err != nil {
			return err
		}
		a, err := r.Assignments.GetActiveByOfferID(ctx, o.ID)
		switch {
		case err == nil:
			if err := a.TransitionTo(assignment.StatusCancelled); err != nil {
				return err
			}
			if err := r.Assignments.Save(ctx, a); err != nil {
				return err
			}
		case !errors.Is(err, assignment.ErrNotFound):
			return err
		}
		if err := r.Offers.Save(ctx, o); err != nil {
			return err
		}
		dto = toOfferDTO(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// Delete hard-deletes an offer that was not delivered, together with its
// assignments. The stored image is removed afterwards, best-effort.
func (u *Usecase) Delete(ctx context.Context, s *session.Session, offerID string) error {
	if err := s.Require(user.RoleDonor, user.RoleAdmin); err != nil {
		return err
	}
	var imagePath string
	err := u.uow.WithinOfferTx(ctx, offerID, func(r uow.Repos, o *domainOffer.Offer) error {
		if !ownsOffer(s, o) {
			return domainOffer.ErrNotFound
		}
		if o.Status == domainOffer.StatusDelivered {
			return domainOffer.ErrCompleted
		}
		if err := r.Assignments.DeleteByOfferID(ctx, o.ID); err != nil {
			return err
		}
		imagePath = o.ImagePath
		return r.Offers.Delete(ctx, o.ID)
	})
	if err != nil {
		return err
	}
	if imagePath != "" && u.images != nil {
		if key, ok := u.images.KeyFromURL(BucketOfferImages, imagePath); ok {
			if err := u.images.Remove(ctx, BucketOfferImages, key); err != nil {
				u.log.Warn("offer image cleanup failed", zap.String("offer_id", offerID), zap.Error(err))
			}
		}
	}
	u.log.Info("offer deleted", zap.String("offer_id", offerID), zap.String("by", s.UserID))
	return nil
}
