package notifymock

import (
	"context"
	"errors"

	domain "foodrescue-backend/internal/domain/notification"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("notifymock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetActiveTemplateFn func(ctx context.Context, key string) (*domain.EmailTemplate, error)
	EnsureTemplateFn    func(ctx context.Context, t *domain.EmailTemplate) error
	LogNotificationFn   func(ctx context.Context, n *domain.Notification) error
}

func (m *Repo) GetActiveTemplate(ctx context.Context, key string) (*domain.EmailTemplate, error) {
	if m.GetActiveTemplateFn != nil {
		return m.GetActiveTemplateFn(ctx, key)
	}
	return nil, errUnimplemented
}

func (m *Repo) EnsureTemplate(ctx context.Context, t *domain.EmailTemplate) error {
	if m.EnsureTemplateFn != nil {
		return m.EnsureTemplateFn(ctx, t)
	}
	return nil
}

func (m *Repo) LogNotification(ctx context.Context, n *domain.Notification) error {
	if m.LogNotificationFn != nil {
		return m.LogNotificationFn(ctx, n)
	}
	return nil
}
