package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"foodrescue-backend/internal/domain/notification"
	"foodrescue-backend/internal/domain/user"
)

type userByEmail interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Mailer renders stored templates and hands them to a Transport.
type Mailer struct {
	templates notification.Repository
	users     userByEmail
	transport Transport
	log       *zap.Logger
	now       func() time.Time
}

func NewMailer(templates notification.Repository, users userByEmail, t Transport, log *zap.Logger) *Mailer {
	return &Mailer{templates: templates, users: users, transport: t, log: log, now: time.Now}
}

func (m *Mailer) SendTemplatedEmail(ctx context.Context, to, key string, vars map[string]string) error {
	tpl, err := m.templates.GetActiveTemplate(ctx, key)
	if err != nil {
		return err
	}
	msg := Message{
		To:      to,
		Subject: render(tpl.Subject, vars, false),
		HTML:    render(tpl.BodyHTML, vars, true),
		Text:    render(tpl.BodyText, vars, false),
	}
	if err := m.transport.Send(ctx, msg); err != nil {
		return err
	}

	// delivery already happened; a failed log row is only warned about
	n := &notification.Notification{
		Type:        notification.TypeEmail,
		Recipient:   to,
		Subject:     msg.Subject,
		TemplateKey: key,
		SentAt:      m.now().UTC(),
	}
	if u, err := m.users.GetByEmail(ctx, to); err == nil {
		n.UserID = &u.ID
	} else if !errors.Is(err, user.ErrNotFound) {
		m.log.Warn("notification user lookup failed", zap.String("to", to), zap.Error(err))
	}
	if err := m.templates.LogNotification(ctx, n); err != nil {
		m.log.Warn("notification log failed", zap.String("template", key), zap.Error(err))
	}
	return nil
}

// SeedTemplates inserts the default templates that are missing.
func (m *Mailer) SeedTemplates(ctx context.Context) error {
	for _, t := range DefaultTemplates() {
		if err := m.templates.EnsureTemplate(ctx, &t); err != nil {
			return err
		}
	}
	return nil
}

func DefaultTemplates() []notification.EmailTemplate {
	return []notification.EmailTemplate{
		{
			TemplateKey: notification.TemplatePartnerApproved,
			Subject:     "Your partner application has been approved",
			BodyHTML: `<p>Hi {{partner_name}},</p>
<p>Great news! <strong>{{org_name}}</strong> was approved on {{approved_date}}.</p>
<p>You can now browse and accept food offers: <a href="{{dashboard_link}}">open your dashboard</a>.</p>
<p>Questions? Contact {{support_email}}.</p>`,
			BodyText: "Hi {{partner_name}},\n\n{{org_name}} was approved on {{approved_date}}.\n" +
				"Open your dashboard: {{dashboard_link}}\n\nQuestions? Contact {{support_email}}.\n",
			Active: true,
		},
		{
			TemplateKey: notification.TemplatePartnerRejected,
			Subject:     "Update on your partner application",
			BodyHTML: `<p>Hi {{partner_name}},</p>
<p>We reviewed the application for <strong>{{org_name}}</strong> on {{reviewed_date}} and could not approve it.</p>
<p>Reason: {{rejection_reason}}</p>
<p>If you have questions, reach us at <a href="{{support_link}}">{{support_email}}</a>.</p>`,
			BodyText: "Hi {{partner_name}},\n\nWe reviewed the application for {{org_name}} on {{reviewed_date}} and could not approve it.\n" +
				"Reason: {{rejection_reason}}\n\nQuestions: {{support_email}}\n",
			Active: true,
		},
		{
			TemplateKey: notification.TemplateOfferPosted,
			Subject:     "New food offer: {{title}}",
			BodyHTML: `<p>Hi {{partner_name}},</p>
<p>{{donor_name}} posted <strong>{{title}}</strong>: {{quantity}} {{unit}} of {{food_type}}.</p>
<p>Pickup between {{pickup_start}} and {{pickup_end}} at {{address}}.</p>
<p><a href="{{offer_link}}">View the offer</a></p>`,
			BodyText: "Hi {{partner_name}},\n\n{{donor_name}} posted {{title}}: {{quantity}} {{unit}} of {{food_type}}.\n" +
				"Pickup between {{pickup_start}} and {{pickup_end}} at {{address}}.\n\n{{offer_link}}\n",
			Active: true,
		},
	}
}
