package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fahamni/payments/pkg/types"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusCanceled PaymentStatus = "canceled"
	PaymentStatusExpired  PaymentStatus = "expired"
)

// PaymentTransaction is the local ledger row for one checkout artifact.
// Rows are created when a checkout is requested, updated in place by every
// reconciliation, and never deleted (cancellation is a status transition).
type PaymentTransaction struct {
	ID            string                `gorm:"column:id;primary_key;type:uuid" json:"id"`
	ReservationID string                `gorm:"column:reservation_id;type:uuid;not null;index:idx_reservation_id_created_at,priority:1" json:"reservation_id"`
	Provider      types.PaymentProvider `gorm:"column:provider;type:varchar(32);not null;uniqueIndex:unique_provider_external_ref,priority:1" json:"provider"`
	// ExternalRef is the provider-issued identifier of the artifact:
	// checkout-session id, payment-intent id or wallet payment ref.
	ExternalRef string `gorm:"column:external_ref;type:varchar(255);not null;uniqueIndex:unique_provider_external_ref,priority:2" json:"external_ref"`
	// SecondaryRef resolves the payment intent behind a hosted session, or
	// the wallet-side transaction id; lookups match either field.
	SecondaryRef *string `gorm:"column:secondary_ref;type:varchar(255);index" json:"secondary_ref"`

	AmountMinor int64         `gorm:"column:amount_minor;type:bigint;not null" json:"amount_minor"`
	Currency    string        `gorm:"column:currency;type:varchar(16);not null" json:"currency"`
	Status      PaymentStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`

	StudentEmail      string  `gorm:"column:student_email;type:varchar(255);not null" json:"student_email"`
	PaymentMethodType *string `gorm:"column:payment_method_type;type:varchar(64)" json:"payment_method_type"`
	ErrorMessage      *string `gorm:"column:error_message;type:text" json:"error_message"`

	Metadata datatypes.JSONMap `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`

	CreatedAt time.Time  `gorm:"index:idx_reservation_id_created_at,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PaidAt    *time.Time `gorm:"column:paid_at;default:null" json:"paid_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transaction"
}

func (t *PaymentTransaction) IsPaid() bool {
	return t != nil && t.Status == PaymentStatusPaid
}

// MetadataString reads a string value out of the metadata map.
func (t *PaymentTransaction) MetadataString(key string) string {
	if t == nil || t.Metadata == nil {
		return ""
	}
	if v, ok := t.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// MergeMetadata merges patch into existing additively: existing keys survive
// unless the patch explicitly overwrites them, so a later sync never erases
// the audit trail left by an earlier one.
func MergeMetadata(existing datatypes.JSONMap, patch map[string]any) datatypes.JSONMap {
	merged := datatypes.JSONMap{}
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			continue
		}
		merged[k] = v
	}
	return merged
}
