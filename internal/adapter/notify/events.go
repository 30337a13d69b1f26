package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"foodrescue-backend/internal/domain/notification"
	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/user"
)

type publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// NATSEvents publishes events on the broker.
type NATSEvents struct {
	pub publisher
}

func NewNATSEvents(pub publisher) *NATSEvents { return &NATSEvents{pub: pub} }

func (e *NATSEvents) OfferPosted(ctx context.Context, offerID string) error {
	return e.pub.Publish(ctx, notification.SubjectOfferPosted, notification.OfferPostedEvent{OfferID: offerID})
}

// InProcessEvents runs the fan-out on its own goroutine so the caller never
// waits for email delivery. Wait drains running fan-outs on shutdown.
type InProcessEvents struct {
	handler *OfferPostedHandler
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewInProcessEvents(h *OfferPostedHandler, log *zap.Logger) *InProcessEvents {
	return &InProcessEvents{handler: h, timeout: 2 * time.Minute, log: log}
}

func (e *InProcessEvents) OfferPosted(_ context.Context, offerID string) error {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		if _, err := e.handler.Handle(ctx, offerID); err != nil {
			e.log.Warn("offer_posted fan-out failed", zap.String("offer_id", offerID), zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until every started fan-out returns or ctx ends.
func (e *InProcessEvents) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type offerGetter interface {
	GetByOfferID(ctx context.Context, offerID string) (*offer.Offer, error)
}

type partnerDirectory interface {
	GetByID(ctx context.Context, id uint64) (*user.User, error)
	GetDonorProfile(ctx context.Context, userID uint64) (*user.DonorProfile, error)
	List(ctx context.Context, f user.ListFilter) ([]user.User, error)
}

// OfferPostedHandler emails every approved, non-banned partner about a new offer.
type OfferPostedHandler struct {
	offers offerGetter
	users  partnerDirectory
	sender notification.Sender
	appURL string
	log    *zap.Logger
}

func NewOfferPostedHandler(offers offerGetter, users partnerDirectory, sender notification.Sender, appURL string, log *zap.Logger) *OfferPostedHandler {
	return &OfferPostedHandler{offers: offers, users: users, sender: sender, appURL: appURL, log: log}
}

// HandleMessage adapts Handle to a broker payload.
func (h *OfferPostedHandler) HandleMessage(ctx context.Context, data []byte) error {
	var ev notification.OfferPostedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode offer posted event: %w", err)
	}
	_, err := h.Handle(ctx, ev.OfferID)
	return err
}

// Handle returns how many partners were emailed successfully.
func (h *OfferPostedHandler) Handle(ctx context.Context, offerID string) (int, error) {
	o, err := h.offers.GetByOfferID(ctx, offerID)
	if err != nil {
		return 0, err
	}
	donor, err := h.users.GetByID(ctx, o.DonorID)
	if err != nil {
		return 0, err
	}
	donorName := donor.DisplayName()
	if p, err := h.users.GetDonorProfile(ctx, donor.ID); err == nil && p.BusinessName != "" {
		donorName = p.BusinessName
	}

	notBanned := false
	partners, err := h.users.List(ctx, user.ListFilter{
		Role:     user.RolePartner,
		Approval: user.ApprovalApproved,
		Banned:   &notBanned,
	})
	if err != nil {
		return 0, err
	}
	if len(partners) == 0 {
		h.log.Info("no partners to notify", zap.String("offer_id", offerID))
		return 0, nil
	}

	base := offerPostedVars(o, donorName, h.appURL)
	sent := 0
	for _, p := range partners {
		vars := make(map[string]string, len(base)+1)
		for k, v := range base {
			vars[k] = v
		}
		vars["partner_name"] = p.Name
		if vars["partner_name"] == "" {
			vars["partner_name"] = "Partner"
		}
		if err := h.sender.SendTemplatedEmail(ctx, p.Email, notification.TemplateOfferPosted, vars); err != nil {
			h.log.Warn("offer_posted email failed", zap.String("to", p.Email), zap.Error(err))
			continue
		}
		sent++
	}
	h.log.Info("partners notified",
		zap.String("offer_id", offerID),
		zap.Int("sent", sent),
		zap.Int("total", len(partners)),
	)
	return sent, nil
}

func orDefault(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

func offerPostedVars(o *offer.Offer, donorName, appURL string) map[string]string {
	qty := "N/A"
	if o.QuantityEst > 0 {
		qty = strconv.FormatFloat(o.QuantityEst, 'f', -1, 64)
	}
	const layout = "Mon, 02 Jan 2006 15:04 MST"
	return map[string]string{
		"title":        o.Title,
		"donor_name":   donorName,
		"quantity":     qty,
		"unit":         orDefault(o.QuantityUnit, "kg"),
		"food_type":    orDefault(o.FoodType, "Food"),
		"pickup_start": o.PickupWindowStart.UTC().Format(layout),
		"pickup_end":   o.PickupWindowEnd.UTC().Format(layout),
		"address":      orDefault(o.Address, "See map"),
		"offer_link":   appURL + "/dashboard/partner/offers/" + o.OfferID,
	}
}
