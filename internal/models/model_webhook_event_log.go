package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventLogStatus string

const (
	WebhookEventLogStatusReceived     WebhookEventLogStatus = "received"
	WebhookEventLogStatusHandled      WebhookEventLogStatus = "handled"
	WebhookEventLogStatusHandleFailed WebhookEventLogStatus = "handle_failed"
)

// WebhookEventLog records every inbound provider notification and its
// processing result, for audit and replay debugging.
type WebhookEventLog struct {
	ID          string                `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Provider    string                `gorm:"column:provider;type:varchar(32);not null;index" json:"provider"`
	TraceID     string                `gorm:"column:trace_id;type:varchar(64)" json:"trace_id"`
	ExternalRef string                `gorm:"column:external_ref;type:varchar(255);index" json:"external_ref"`
	EventType   string                `gorm:"column:event_type;type:varchar(128)" json:"event_type"`
	ReceivedAt  time.Time             `gorm:"column:received_at;not null" json:"received_at"`
	Payload     datatypes.JSON        `gorm:"column:payload;type:jsonb" json:"payload"`
	Result      *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status      WebhookEventLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

func (WebhookEventLog) TableName() string {
	return "webhook_event_log"
}
