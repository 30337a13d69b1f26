package notification

import (
	"errors"
	"time"
)

var ErrTemplateNotFound = errors.New("email template not found")

// Template keys used by the workflows.
const (
	TemplatePartnerApproved = "partner_approved"
	TemplatePartnerRejected = "partner_rejected"
	TemplateOfferPosted     = "offer_posted"
)

type Type string

const (
	TypeEmail Type = "email"
	TypeSMS   Type = "sms"
	TypePush  Type = "push"
)

// Table: email_templates
type EmailTemplate struct {
	ID          uint64    `gorm:"primaryKey;column:id"`
	TemplateKey string    `gorm:"column:template_key;size:64;uniqueIndex:ux_email_templates_key"`
	Subject     string    `gorm:"column:subject;size:255;not null"`
	BodyHTML    string    `gorm:"column:body_html;type:text"`
	BodyText    string    `gorm:"column:body_text;type:text"`
	Active      bool      `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (EmailTemplate) TableName() string { return "email_templates" }

// Table: notifications (delivery log)
type Notification struct {
	ID          uint64    `gorm:"primaryKey;column:id"`
	UserID      *uint64   `gorm:"column:user_id;index:idx_notifications_user"`
	Type        Type      `gorm:"column:type;type:varchar(8);not null"`
	Recipient   string    `gorm:"column:recipient;size:255"`
	Subject     string    `gorm:"column:subject;size:255"`
	TemplateKey string    `gorm:"column:template_key;size:64"`
	SentAt      time.Time `gorm:"column:sent_at"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string { return "notifications" }
