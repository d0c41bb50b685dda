package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/metrics"
	"github.com/fahamni/payments/pkg/types"
)

// providerLabels is the human label used in reservation audit notes.
var providerLabels = map[string]string{
	"stripe":  "Stripe",
	"konnect": "Konnect",
	"mock":    "Mock",
}

// ApplyPayload reconciles one provider payload against the ledger. It is the
// single convergence point for webhooks, polling and redirect callbacks, and
// it is idempotent: replaying the same payload leaves the ledger unchanged.
// Payloads referencing no known transaction are ignored.
func (s *Service) ApplyPayload(ctx context.Context, payload map[string]any) (*models.PaymentTransaction, error) {
	outcome := s.gateway.ResolveOutcome(payload)
	if outcome == nil || outcome.ExternalRef == "" {
		return nil, nil
	}

	var paidTransitioned bool
	var paidRes *models.Reservation

	txn, err := s.ledger.Reconcile(ctx, outcome.ExternalRef, func(_ context.Context, txn *models.PaymentTransaction, res *models.Reservation) error {
		previous := txn.Status

		txn.Metadata = models.MergeMetadata(txn.Metadata, outcome.Metadata)
		if outcome.SecondaryRef != "" && txn.SecondaryRef == nil {
			txn.SecondaryRef = lo.ToPtr(outcome.SecondaryRef)
		}
		if outcome.MethodType != "" {
			txn.PaymentMethodType = lo.ToPtr(outcome.MethodType)
		}
		if outcome.ErrorMessage != "" {
			txn.ErrorMessage = lo.ToPtr(outcome.ErrorMessage)
		}

		// PAID is absorbing: later failure or expiry payloads only merge
		// metadata above and never demote the row.
		if previous == models.PaymentStatusPaid {
			return nil
		}
		if outcome.Target == "" || outcome.Target == previous {
			return nil
		}
		txn.Status = outcome.Target
		txn.UpdatedAt = s.now()

		if outcome.Target == models.PaymentStatusPaid {
			txn.PaidAt = lo.ToPtr(s.now())
			txn.ErrorMessage = nil
			paidTransitioned = true
			if res != nil {
				s.applyPaidReservation(res, txn)
				paidRes = res
			}
		}
		return nil
	})
	if err != nil || txn == nil {
		return txn, err
	}

	metrics.Reconciliations.WithLabelValues(string(s.gateway.Provider()), string(txn.Status)).Inc()

	if paidTransitioned {
		s.log.Infow("payment reconciled as paid",
			"reservation_id", txn.ReservationID, "external_ref", txn.ExternalRef,
			"amount_minor", txn.AmountMinor)
		if paidRes != nil {
			s.notifyTutorPaid(ctx, paidRes, txn)
		}
	}
	return txn, nil
}

// applyPaidReservation flips the reservation to paid and appends the audit
// note, both inside the same ledger transaction as the status flip.
func (s *Service) applyPaidReservation(res *models.Reservation, txn *models.PaymentTransaction) {
	res.Status = models.ReservationStatusPaid
	res.Notes = appendPaymentNote(res.Notes, s.gateway.Provider(), txn.ExternalRef, txn.PaidAt.UTC())
}

// appendPaymentNote appends a single audit line per external reference; a
// replayed reference leaves the notes untouched.
func appendPaymentNote(notes string, provider types.PaymentProvider, externalRef string, paidAt time.Time) string {
	if strings.Contains(notes, externalRef) {
		return notes
	}
	label := providerLabels[string(provider)]
	if label == "" {
		label = string(provider)
	}
	line := fmt.Sprintf("[PAID] %s %s on %s", label, externalRef, paidAt.Format("02/01/2006 15:04"))
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}

// notifyTutorPaid is best-effort: a notification failure is logged and never
// rolls back an already-reconciled payment.
func (s *Service) notifyTutorPaid(ctx context.Context, res *models.Reservation, txn *models.PaymentTransaction) {
	if s.notifier == nil || txn.PaidAt == nil {
		return
	}
	if _, err := s.notifier.NotifyTutorPaymentReceived(ctx, res, txn, s.gateway.Provider(), txn.ExternalRef, *txn.PaidAt); err != nil {
		s.log.Warnw("tutor paid notification failed",
			"reservation_id", res.ID, "external_ref", txn.ExternalRef, "error", err)
	}
}
