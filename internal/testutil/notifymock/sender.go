package notifymock

import (
	"context"
	"sync"

	domain "foodrescue-backend/internal/domain/notification"
)

var (
	_ domain.Sender = (*Sender)(nil)
	_ domain.Events = (*Events)(nil)
)

type SentEmail struct {
	To   string
	Key  string
	Vars map[string]string
}

// Sender records every call; SendFn, when set, decides the result.
type Sender struct {
	SendFn func(ctx context.Context, to, key string, vars map[string]string) error

	mu   sync.Mutex
	sent []SentEmail
}

func (m *Sender) SendTemplatedEmail(ctx context.Context, to, key string, vars map[string]string) error {
	m.mu.Lock()
	m.sent = append(m.sent, SentEmail{To: to, Key: key, Vars: vars})
	m.mu.Unlock()
	if m.SendFn != nil {
		return m.SendFn(ctx, to, key, vars)
	}
	return nil
}

func (m *Sender) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentEmail(nil), m.sent...)
}

type Events struct {
	OfferPostedFn func(ctx context.Context, offerID string) error

	mu     sync.Mutex
	posted []string
}

func (m *Events) OfferPosted(ctx context.Context, offerID string) error {
	m.mu.Lock()
	m.posted = append(m.posted, offerID)
	m.mu.Unlock()
	if m.OfferPostedFn != nil {
		return m.OfferPostedFn(ctx, offerID)
	}
	return nil
}

func (m *Events) Posted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.posted...)
}
