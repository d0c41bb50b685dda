package models

import (
	"time"

	"gorm.io/datatypes"
)

const NotificationTypePaymentReceived = "payment_received"

// InAppNotification is a single recipient-facing notification. EventKey makes
// creation idempotent: one row per (recipient, event key) no matter how many
// times the same provider event is replayed.
type InAppNotification struct {
	ID        string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Recipient string `gorm:"column:recipient;type:varchar(64);not null;uniqueIndex:unique_recipient_event_key,priority:1" json:"recipient"`
	Type      string `gorm:"column:type;type:varchar(64);not null" json:"type"`
	EventKey  string `gorm:"column:event_key;type:varchar(512);not null;uniqueIndex:unique_recipient_event_key,priority:2" json:"event_key"`

	Title   string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Message string `gorm:"column:message;type:text;not null" json:"message"`

	Data   datatypes.JSONMap `gorm:"column:data;type:jsonb;default:'{}'" json:"data"`
	IsRead bool              `gorm:"column:is_read;not null;default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

func (InAppNotification) TableName() string {
	return "in_app_notification"
}
