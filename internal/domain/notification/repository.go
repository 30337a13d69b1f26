package notification

import "context"

type Repository interface {
	// Active template by key, ErrTemplateNotFound otherwise
	GetActiveTemplate(ctx context.Context, key string) (*EmailTemplate, error)
	// Inserts the template only when the key is not present yet
	EnsureTemplate(ctx context.Context, t *EmailTemplate) error
	LogNotification(ctx context.Context, n *Notification) error
}
