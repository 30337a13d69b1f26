package dashboard

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"foodrescue-backend/internal/domain/assignment"
	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/session"
	"foodrescue-backend/internal/domain/user"
)

// Usecase assembles read-only views; it never changes state.
type Usecase struct {
	users       user.Repository
	offers      offer.Repository
	assignments assignment.Repository
	log         *zap.Logger
}

func NewUsecase(users user.Repository, offers offer.Repository, assignments assignment.Repository, log *zap.Logger) *Usecase {
	return &Usecase{users: users, offers: offers, assignments: assignments, log: log}
}

func offerPKs(rows []offer.Offer) []uint64 {
	ids := make([]uint64, 0, len(rows))
	for _, o := range rows {
		ids = append(ids, o.ID)
	}
	return ids
}

func (u *Usecase) assignmentsByOffer(ctx context.Context, rows []offer.Offer) (map[uint64][]assignment.Assignment, error) {
	out := map[uint64][]assignment.Assignment{}
	if len(rows) == 0 {
		return out, nil
	}
	as, err := u.assignments.ListByOfferIDs(ctx, offerPKs(rows))
	if err != nil {
		return nil, err
	}
	for _, a := range as {
		out[a.OfferID] = append(out[a.OfferID], a)
	}
	return out, nil
}

type contact struct {
	name  string
	phone string
}

// partnerContacts prefers the organisation name over the person's name.
func (u *Usecase) partnerContacts(ctx context.Context, ids []uint64) map[uint64]contact {
	out := make(map[uint64]contact, len(ids))
	if len(ids) == 0 {
		return out
	}
	users, err := u.users.GetByIDs(ctx, ids)
	if err != nil {
		u.log.Warn("load partners", zap.Error(err))
		return out
	}
	for i := range users {
		out[users[i].ID] = contact{name: users[i].DisplayName(), phone: users[i].Phone}
	}
	profiles, err := u.users.GetPartnerProfiles(ctx, ids)
	if err != nil {
		u.log.Warn("load partner profiles", zap.Error(err))
		return out
	}
	for _, p := range profiles {
		if p.OrgName != "" {
			c := out[p.UserID]
			c.name = p.OrgName
			out[p.UserID] = c
		}
	}
	return out
}

type donorInfo struct {
	name    string
	address string
}

func (u *Usecase) donorInfo(ctx context.Context, ids []uint64) map[uint64]donorInfo {
	out := make(map[uint64]donorInfo, len(ids))
	if len(ids) == 0 {
		return out
	}
	if users, err := u.users.GetByIDs(ctx, ids); err == nil {
		for i := range users {
			out[users[i].ID] = donorInfo{name: users[i].DisplayName()}
		}
	} else {
		u.log.Warn("load donors", zap.Error(err))
	}
	if profiles, err := u.users.GetDonorProfiles(ctx, ids); err == nil {
		for _, p := range profiles {
			d := out[p.UserID]
			if p.BusinessName != "" {
				d.name = p.BusinessName
			}
			d.address = p.Address
			out[p.UserID] = d
		}
	} else {
		u.log.Warn("load donor profiles", zap.Error(err))
	}
	return out
}

func uniq(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// DonorOffers lists the donor's offers with their assignments. The OTP of the
// active assignment is included so the donor can hand it to the partner.
func (u *Usecase) DonorOffers(ctx context.Context, s *session.Session, status string) ([]DonorOfferView, error) {
	if err := s.Require(user.RoleDonor); err != nil {
		return nil, err
	}
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	rows, err := u.offers.List(ctx, offer.ListFilter{DonorID: s.UserPK, Status: st})
	if err != nil {
		return nil, err
	}
	byOffer, err := u.assignmentsByOffer(ctx, rows)
	if err != nil {
		return nil, err
	}
	var partnerIDs []uint64
	for _, as := range byOffer {
		for _, a := range as {
			partnerIDs = append(partnerIDs, a.PartnerID)
		}
	}
	contacts := u.partnerContacts(ctx, uniq(partnerIDs))

	out := make([]DonorOfferView, 0, len(rows))
	for i := range rows {
		v := DonorOfferView{OfferView: toOfferView(&rows[i]), Assignments: []DonorAssignmentView{}}
		for _, a := range byOffer[rows[i].ID] {
			av := DonorAssignmentView{
				AssignmentID: a.AssignmentID,
				Status:       string(a.Status),
				PartnerName:  contacts[a.PartnerID].name,
				PartnerPhone: contacts[a.PartnerID].phone,
				CompletedAt:  a.CompletedAt,
				CreatedAt:    a.CreatedAt,
			}
			if a.Active() {
				av.OTPCode = a.OTPCode
			}
			v.Assignments = append(v.Assignments, av)
		}
		out = append(out, v)
	}
	return out, nil
}

func (u *Usecase) DonorImpact(ctx context.Context, s *session.Session) (*Impact, error) {
	if err := s.Require(user.RoleDonor); err != nil {
		return nil, err
	}
	rows, err := u.offers.List(ctx, offer.ListFilter{DonorID: s.UserPK})
	if err != nil {
		return nil, err
	}
	byOffer, err := u.assignmentsByOffer(ctx, rows)
	if err != nil {
		return nil, err
	}

	im := &Impact{TotalOffers: len(rows), ByStatus: map[string]int{}, RecentDelivered: []OfferView{}}
	partners := map[uint64]bool{}
	var delivered []offer.Offer
	for _, o := range rows {
		im.ByStatus[string(o.Status)]++
		im.TotalKg += o.QuantityEst
		if o.Status == offer.StatusDelivered {
			delivered = append(delivered, o)
		}
		for _, a := range byOffer[o.ID] {
			partners[a.PartnerID] = true
		}
	}
	im.DeliveredOffers = len(delivered)
	im.CO2SavedKg = CO2SavedKg(im.TotalKg)
	im.MealsProvided = Meals(im.TotalKg)
	im.PartnersHelped = len(partners)

	sort.SliceStable(delivered, func(i, j int) bool {
		return delivered[i].StatusUpdatedAt.After(delivered[j].StatusUpdatedAt)
	})
	if len(delivered) > recentLimit {
		delivered = delivered[:recentLimit]
	}
	for i := range delivered {
		im.RecentDelivered = append(im.RecentDelivered, toOfferView(&delivered[i]))
	}
	return im, nil
}

// PartnerPickups lists the partner's assignments, newest first. No OTP here:
// the partner gets it from the donor at pickup.
func (u *Usecase) PartnerPickups(ctx context.Context, s *session.Session) ([]PickupView, error) {
	if err := s.Require(user.RolePartner); err != nil {
		return nil, err
	}
	as, err := u.assignments.ListByPartnerID(ctx, s.UserPK)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.OfferID)
	}
	byID := map[uint64]*offer.Offer{}
	var donorIDs []uint64
	if len(ids) > 0 {
		rows, err := u.offers.GetByIDs(ctx, uniq(ids))
		if err != nil {
			return nil, err
		}
		for i := range rows {
			byID[rows[i].ID] = &rows[i]
			donorIDs = append(donorIDs, rows[i].DonorID)
		}
	}
	donors := u.donorInfo(ctx, uniq(donorIDs))

	out := make([]PickupView, 0, len(as))
	for _, a := range as {
		o, ok := byID[a.OfferID]
		if !ok {
			continue
		}
		d := donors[o.DonorID]
		pv := PickupView{
			AssignmentID: a.AssignmentID,
			Status:       string(a.Status),
			CompletedAt:  a.CompletedAt,
			CreatedAt:    a.CreatedAt,
			Offer:        toOfferView(o),
			DonorName:    d.name,
			DonorAddress: d.address,
		}
		pv.Offer.DonorName = d.name
		out = append(out, pv)
	}
	return out, nil
}

func (u *Usecase) PartnerSummary(ctx context.Context, s *session.Session) (*PartnerSummary, error) {
	if err := s.Require(user.RolePartner); err != nil {
		return nil, err
	}
	as, err := u.assignments.ListByPartnerID(ctx, s.UserPK)
	if err != nil {
		return nil, err
	}
	sum := &PartnerSummary{ByStatus: map[string]int{}}
	var completedOffers []uint64
	for _, a := range as {
		sum.ByStatus[string(a.Status)]++
		switch {
		case a.Active():
			sum.Active++
		case a.Status == assignment.StatusCompleted:
			sum.Completed++
			completedOffers = append(completedOffers, a.OfferID)
		}
	}
	if len(completedOffers) > 0 {
		rows, err := u.offers.GetByIDs(ctx, uniq(completedOffers))
		if err != nil {
			return nil, err
		}
		for _, o := range rows {
			sum.KgCollected += o.QuantityEst
		}
	}
	sum.MealsProvided = Meals(sum.KgCollected)
	available, err := u.offers.List(ctx, offer.ListFilter{Status: offer.StatusAvailable})
	if err != nil {
		return nil, err
	}
	sum.AvailableNow = len(available)
	return sum, nil
}

func (u *Usecase) AdminOverview(ctx context.Context, s *session.Session) (*AdminOverview, error) {
	if err := s.Require(user.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := u.users.List(ctx, user.ListFilter{})
	if err != nil {
		return nil, err
	}
	ov := &AdminOverview{TotalUsers: len(users), OffersByStatus: map[string]int{}, RecentOffers: []OfferView{}}
	for i := range users {
		switch users[i].Role {
		case user.RoleDonor:
			ov.Donors++
		case user.RolePartner:
			switch users[i].ApprovalState() {
			case user.ApprovalApproved:
				ov.ApprovedPartners++
			case user.ApprovalRejected:
				ov.RejectedPartners++
			default:
				ov.PendingPartners++
			}
		}
	}

	rows, err := u.offers.List(ctx, offer.ListFilter{})
	if err != nil {
		return nil, err
	}
	ov.TotalOffers = len(rows)
	for _, o := range rows {
		ov.OffersByStatus[string(o.Status)]++
		ov.TotalKg += o.QuantityEst
	}
	ov.CO2SavedKg = CO2SavedKg(ov.TotalKg)
	ov.MealsProvided = Meals(ov.TotalKg)
	for i := 0; i < len(rows) && i < adminRecent; i++ {
		ov.RecentOffers = append(ov.RecentOffers, toOfferView(&rows[i]))
	}
	return ov, nil
}

// AdminOffers lists every offer, newest first, with the donor's name.
func (u *Usecase) AdminOffers(ctx context.Context, s *session.Session, status, search string) ([]OfferView, error) {
	if err := s.Require(user.RoleAdmin); err != nil {
		return nil, err
	}
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	rows, err := u.offers.List(ctx, offer.ListFilter{Status: st, Search: search, Limit: adminOfferMax})
	if err != nil {
		return nil, err
	}
	var donorIDs []uint64
	for _, o := range rows {
		donorIDs = append(donorIDs, o.DonorID)
	}
	donors := u.donorInfo(ctx, uniq(donorIDs))
	out := make([]OfferView, 0, len(rows))
	for i := range rows {
		v := toOfferView(&rows[i])
		v.DonorName = donors[rows[i].DonorID].name
		out = append(out, v)
	}
	return out, nil
}
