package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/tool"
	"github.com/fahamni/payments/pkg/types"
)

// Service creates in-app notifications. Creation is idempotent per
// (recipient, event key) through the unique index, so webhook replays never
// fan out duplicate notifications.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// NotifyTutorPaymentReceived tells the tutor a reservation has been paid.
// The event key binds the notification to one provider reference, so a second
// genuine payment for the same reservation still notifies.
func (s *Service) NotifyTutorPaymentReceived(ctx context.Context, res *models.Reservation, txn *models.PaymentTransaction, provider types.PaymentProvider, externalRef string, paidAt time.Time) (*models.InAppNotification, error) {
	if res == nil || res.TutorID == "" {
		return nil, nil
	}

	n := &models.InAppNotification{
		ID:        tool.GenerateUUIDV7(),
		Recipient: res.TutorID,
		Type:      models.NotificationTypePaymentReceived,
		EventKey:  fmt.Sprintf("payment_paid:%s:%s", res.ID, externalRef),
		Title:     "Payment received",
		Message:   fmt.Sprintf("%s paid for the %s session of %s.", res.ParticipantName, res.Subject, res.StartAt.Format("02/01/2006 15:04")),
		Data: datatypes.JSONMap{
			"reservationId": res.ID,
			"provider":      string(provider),
			"externalRef":   externalRef,
			"amountMinor":   txn.AmountMinor,
			"currency":      txn.Currency,
			"paidAt":        paidAt.UTC().Format(time.RFC3339),
		},
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipient"}, {Name: "event_key"}},
			DoNothing: true,
		}).
		Create(n)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		s.log.Debugw("tutor already notified", "event_key", n.EventKey)
		return nil, nil
	}

	s.log.Infow("tutor notified of payment",
		"tutor_id", res.TutorID, "reservation_id", res.ID, "external_ref", externalRef)
	return n, nil
}

// MarkRead flips one notification of the recipient to read.
func (s *Service) MarkRead(ctx context.Context, recipient, id string) error {
	return s.db.WithContext(ctx).
		Model(&models.InAppNotification{}).
		Where("id = ? AND recipient = ?", id, recipient).
		Update("is_read", true).Error
}

// ListForRecipient returns the newest notifications of one recipient.
func (s *Service) ListForRecipient(ctx context.Context, recipient string, limit int) ([]models.InAppNotification, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var items []models.InAppNotification
	err := s.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
