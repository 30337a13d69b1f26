package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	notificationDomain "foodrescue-backend/internal/domain/notification"
)

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) GetActiveTemplate(ctx context.Context, key string) (*notificationDomain.EmailTemplate, error) {
	var out notificationDomain.EmailTemplate
	err := r.db.WithContext(ctx).
		Where("template_key = ? AND active = ?", key, true).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, notificationDomain.ErrTemplateNotFound)
	}
	return &out, nil
}

// EnsureTemplate inserts t unless a row with the same key exists.
func (r *NotificationRepository) EnsureTemplate(ctx context.Context, t *notificationDomain.EmailTemplate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "template_key"}}, DoNothing: true}).
		Create(t).Error
}

func (r *NotificationRepository) LogNotification(ctx context.Context, n *notificationDomain.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}
