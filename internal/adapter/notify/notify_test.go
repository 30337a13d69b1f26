package notify

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"foodrescue-backend/internal/domain/notification"
	"foodrescue-backend/internal/domain/offer"
	"foodrescue-backend/internal/domain/user"
	"foodrescue-backend/internal/testutil/notifymock"
	"foodrescue-backend/internal/testutil/offermock"
	"foodrescue-backend/internal/testutil/usermock"
)

type fakeTransport struct {
	err  error
	sent []Message
}

func (f *fakeTransport) Send(_ context.Context, m Message) error {
	f.sent = append(f.sent, m)
	return f.err
}

func TestRender(t *testing.T) {
	vars := map[string]string{"name": "Tom & Jerry", "org": "Bank"}
	if got := render("Hi {{name}} from {{org}} {{missing}}", vars, false); got != "Hi Tom & Jerry from Bank {{missing}}" {
		t.Fatalf("plain render = %q", got)
	}
	if got := render("<b>{{name}}</b>", vars, true); got != "<b>Tom &amp; Jerry</b>" {
		t.Fatalf("html render = %q", got)
	}
}

func TestMailer_SendTemplatedEmail(t *testing.T) {
	var logged *notification.Notification
	repo := &notifymock.Repo{
		GetActiveTemplateFn: func(_ context.Context, key string) (*notification.EmailTemplate, error) {
			return &notification.EmailTemplate{
				TemplateKey: key,
				Subject:     "Welcome {{partner_name}}",
				BodyHTML:    "<p>{{org_name}}</p>",
				BodyText:    "{{org_name}}",
			}, nil
		},
		LogNotificationFn: func(_ context.Context, n *notification.Notification) error {
			logged = n
			return nil
		},
	}
	users := &usermock.Repo{
		GetByEmailFn: func(_ context.Context, email string) (*user.User, error) {
			return &user.User{ID: 12, Email: email}, nil
		},
	}
	tr := &fakeTransport{}
	m := NewMailer(repo, users, tr, zap.NewNop())

	err := m.SendTemplatedEmail(context.Background(), "p@example.com", notification.TemplatePartnerApproved,
		map[string]string{"partner_name": "Pat", "org_name": "Food <Bank>"})
	if err != nil {
		t.Fatalf("SendTemplatedEmail: %v", err)
	}
	if len(tr.sent) != 1 {
		t.Fatalf("transport calls = %d", len(tr.sent))
	}
	msg := tr.sent[0]
	if msg.To != "p@example.com" || msg.Subject != "Welcome Pat" || msg.HTML != "<p>Food &lt;Bank&gt;</p>" || msg.Text != "Food <Bank>" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if logged == nil || logged.UserID == nil || *logged.UserID != 12 || logged.Type != notification.TypeEmail || logged.TemplateKey != notification.TemplatePartnerApproved {
		t.Fatalf("unexpected notification row: %+v", logged)
	}
}

func TestMailer_Failures(t *testing.T) {
	t.Run("template missing", func(t *testing.T) {
		repo := &notifymock.Repo{
			GetActiveTemplateFn: func(context.Context, string) (*notification.EmailTemplate, error) {
				return nil, notification.ErrTemplateNotFound
			},
		}
		tr := &fakeTransport{}
		err := NewMailer(repo, &usermock.Repo{}, tr, zap.NewNop()).SendTemplatedEmail(context.Background(), "a@b.c", "nope", nil)
		if !errors.Is(err, notification.ErrTemplateNotFound) || len(tr.sent) != 0 {
			t.Fatalf("err=%v sent=%d", err, len(tr.sent))
		}
	})

	t.Run("transport error is returned and nothing logged", func(t *testing.T) {
		logged := false
		repo := &notifymock.Repo{
			GetActiveTemplateFn: func(context.Context, string) (*notification.EmailTemplate, error) {
				return &notification.EmailTemplate{Subject: "s"}, nil
			},
			LogNotificationFn: func(context.Context, *notification.Notification) error { logged = true; return nil },
		}
		tr := &fakeTransport{err: errors.New("smtp down")}
		err := NewMailer(repo, &usermock.Repo{}, tr, zap.NewNop()).SendTemplatedEmail(context.Background(), "a@b.c", "k", nil)
		if err == nil || logged {
			t.Fatalf("err=%v logged=%v", err, logged)
		}
	})

	t.Run("unknown recipient still logged without user", func(t *testing.T) {
		var logged *notification.Notification
		repo := &notifymock.Repo{
			GetActiveTemplateFn: func(context.Context, string) (*notification.EmailTemplate, error) {
				return &notification.EmailTemplate{Subject: "s"}, nil
			},
			LogNotificationFn: func(_ context.Context, n *notification.Notification) error { logged = n; return nil },
		}
		users := &usermock.Repo{GetByEmailFn: func(context.Context, string) (*user.User, error) { return nil, user.ErrNotFound }}
		err := NewMailer(repo, users, &fakeTransport{}, zap.NewNop()).SendTemplatedEmail(context.Background(), "x@y.z", "k", nil)
		if err != nil || logged == nil || logged.UserID != nil {
			t.Fatalf("err=%v logged=%+v", err, logged)
		}
	})
}

func TestMailer_SeedTemplates(t *testing.T) {
	var keys []string
	repo := &notifymock.Repo{
		EnsureTemplateFn: func(_ context.Context, tpl *notification.EmailTemplate) error {
			if !tpl.Active || tpl.Subject == "" || tpl.BodyText == "" {
				t.Errorf("incomplete default template %q", tpl.TemplateKey)
			}
			keys = append(keys, tpl.TemplateKey)
			return nil
		},
	}
	if err := NewMailer(repo, &usermock.Repo{}, &fakeTransport{}, zap.NewNop()).SeedTemplates(context.Background()); err != nil {
		t.Fatalf("SeedTemplates: %v", err)
	}
	want := []string{notification.TemplatePartnerApproved, notification.TemplatePartnerRejected, notification.TemplateOfferPosted}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("seeded %v, want %v", keys, want)
	}
}

func TestOfferPostedHandler_Handle(t *testing.T) {
	start := time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)
	offers := &offermock.Repo{
		GetByOfferIDFn: func(_ context.Context, id string) (*offer.Offer, error) {
			return &offer.Offer{
				OfferID: id, DonorID: 1, Title: "Bread", QuantityEst: 5,
				PickupWindowStart: start, PickupWindowEnd: start.Add(2 * time.Hour),
			}, nil
		},
	}
	var gotFilter user.ListFilter
	users := &usermock.Repo{
		GetByIDFn: func(_ context.Context, id uint64) (*user.User, error) {
			return &user.User{ID: id, Name: "Dana", Email: "d@example.com"}, nil
		},
		GetDonorProfileFn: func(context.Context, uint64) (*user.DonorProfile, error) {
			return &user.DonorProfile{BusinessName: "Corner Bakery"}, nil
		},
		ListFn: func(_ context.Context, f user.ListFilter) ([]user.User, error) {
			gotFilter = f
			return []user.User{
				{ID: 2, Name: "Ann", Email: "ann@example.com"},
				{ID: 3, Email: "bob@example.com"},
				{ID: 4, Name: "Cy", Email: "fail@example.com"},
			}, nil
		},
	}
	sender := &notifymock.Sender{
		SendFn: func(_ context.Context, to, _ string, _ map[string]string) error {
			if to == "fail@example.com" {
				return errors.New("bounce")
			}
			return nil
		},
	}
	h := NewOfferPostedHandler(offers, users, sender, "https://app.test", zap.NewNop())

	n, err := h.Handle(context.Background(), "off1")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if n != 2 {
		t.Fatalf("sent = %d, want 2", n)
	}
	if gotFilter.Role != user.RolePartner || gotFilter.Approval != user.ApprovalApproved || gotFilter.Banned == nil || *gotFilter.Banned {
		t.Fatalf("partners filter = %+v", gotFilter)
	}

	sent := sender.Sent()
	if len(sent) != 3 {
		t.Fatalf("attempts = %d, want 3", len(sent))
	}
	v := sent[0].Vars
	if sent[0].Key != notification.TemplateOfferPosted || v["donor_name"] != "Corner Bakery" || v["quantity"] != "5" ||
		v["unit"] != "kg" || v["food_type"] != "Food" || v["address"] != "See map" ||
		v["offer_link"] != "https://app.test/dashboard/partner/offers/off1" || v["partner_name"] != "Ann" {
		t.Fatalf("unexpected vars: %v", v)
	}
	if sent[1].Vars["partner_name"] != "Partner" {
		t.Fatalf("default partner name = %q", sent[1].Vars["partner_name"])
	}
}

func TestOfferPostedHandler_HandleMessage(t *testing.T) {
	h := NewOfferPostedHandler(&offermock.Repo{
		GetByOfferIDFn: func(context.Context, string) (*offer.Offer, error) { return nil, offer.ErrNotFound },
	}, &usermock.Repo{}, &notifymock.Sender{}, "", zap.NewNop())

	if err := h.HandleMessage(context.Background(), []byte("{bad")); err == nil {
		t.Fatal("expected decode error")
	}
	if err := h.HandleMessage(context.Background(), []byte(`{"offer_id":"x"}`)); !errors.Is(err, offer.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

type fakePublisher struct {
	subject string
	payload any
}

func (f *fakePublisher) Publish(_ context.Context, subject string, v any) error {
	f.subject, f.payload = subject, v
	return nil
}

func TestNATSEvents_OfferPosted(t *testing.T) {
	pub := &fakePublisher{}
	if err := NewNATSEvents(pub).OfferPosted(context.Background(), "off9"); err != nil {
		t.Fatalf("OfferPosted: %v", err)
	}
	ev, ok := pub.payload.(notification.OfferPostedEvent)
	if pub.subject != notification.SubjectOfferPosted || !ok || ev.OfferID != "off9" {
		t.Fatalf("published %s %+v", pub.subject, pub.payload)
	}
}

func TestInProcessEvents_RunsHandlerAsync(t *testing.T) {
	done := make(chan string, 1)
	offers := &offermock.Repo{
		GetByOfferIDFn: func(_ context.Context, id string) (*offer.Offer, error) {
			done <- id
			return nil, offer.ErrNotFound
		},
	}
	h := NewOfferPostedHandler(offers, &usermock.Repo{}, &notifymock.Sender{}, "", zap.NewNop())
	if err := NewInProcessEvents(h, zap.NewNop()).OfferPosted(context.Background(), "off7"); err != nil {
		t.Fatalf("OfferPosted: %v", err)
	}
	select {
	case id := <-done:
		if id != "off7" {
			t.Fatalf("handler got %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler not invoked")
	}
}

func TestInProcessEvents_WaitDrainsFanOut(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool
	offers := &offermock.Repo{
		GetByOfferIDFn: func(context.Context, string) (*offer.Offer, error) {
			<-release
			finished.Store(true)
			return nil, offer.ErrNotFound
		},
	}
	h := NewOfferPostedHandler(offers, &usermock.Repo{}, &notifymock.Sender{}, "", zap.NewNop())
	ev := NewInProcessEvents(h, zap.NewNop())
	if err := ev.OfferPosted(context.Background(), "off8"); err != nil {
		t.Fatalf("OfferPosted: %v", err)
	}

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := ev.Wait(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait while running: want DeadlineExceeded, got %v", err)
	}

	close(release)
	if err := ev.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !finished.Load() {
		t.Fatal("Wait returned before the fan-out finished")
	}
}

func TestSMTPTransport_BuildsMessage(t *testing.T) {
	tr := NewSMTPTransport(SMTPConfig{Host: "localhost", Port: 2525, From: "no-reply@foodrescue.test"})
	if _, err := tr.message(Message{To: "p@example.com", Subject: "s", Text: "t", HTML: "<p>h</p>"}); err != nil {
		t.Fatalf("message: %v", err)
	}
	if _, err := tr.message(Message{To: "not an address", Subject: "s"}); err == nil {
		t.Fatal("expected invalid recipient error")
	}
}
