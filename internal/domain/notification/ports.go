package notification

import "context"

// Sender delivers a stored template to one recipient. A single attempt, no retries.
type Sender interface {
	SendTemplatedEmail(ctx context.Context, to, templateKey string, vars map[string]string) error
}

// SubjectOfferPosted carries OfferPostedEvent as JSON.
const SubjectOfferPosted = "offers.posted"

type OfferPostedEvent struct {
	OfferID string `json:"offer_id"`
}

// Events fans out domain events to subscribers.
type Events interface {
	OfferPosted(ctx context.Context, offerID string) error
}
