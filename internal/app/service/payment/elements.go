package payment

import (
	"context"
	"strings"

	"gorm.io/datatypes"

	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/currency"
	"github.com/fahamni/payments/pkg/metrics"
)

// ElementsPayment is what a card-elements client needs to confirm a payment
// in the browser.
type ElementsPayment struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	PublishableKey  string `json:"publishableKey"`
	AmountMinor     int64  `json:"amountMinor"`
	Currency        string `json:"currency"`
}

// intent statuses a client can still act on.
var actionableIntentStatuses = map[string]bool{
	"requires_payment_method": true,
	"requires_confirmation":   true,
	"requires_action":         true,
	"processing":              true,
}

// PrepareCardElementsPayment returns an intent the embedded card flow can
// confirm: a still-actionable pending intent is resumed, a succeeded one is
// reconciled in place, anything else gets a fresh intent.
func (s *Service) PrepareCardElementsPayment(ctx context.Context, r *models.Reservation) (*ElementsPayment, error) {
	ig, ok := s.gateway.(IntentGateway)
	if !ok {
		return nil, ErrElementsUnsupported
	}
	if r == nil || r.Status != models.ReservationStatusAccepted {
		if r != nil && r.Status == models.ReservationStatusPaid {
			return nil, ErrReservationAlreadyPaid
		}
		return nil, ErrReservationNotPayable
	}
	if !ig.IsConfigured() {
		return nil, ErrProviderNotConfigured
	}
	email := strings.TrimSpace(r.ParticipantEmail)
	if email == "" {
		return nil, ErrMissingParticipantEmail
	}

	pending, err := s.ledger.FindLatestPendingByReservation(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	if pending != nil && strings.HasPrefix(pending.ExternalRef, ig.IntentRefPrefix()) {
		resumed, err := s.resumePendingIntent(ctx, ig, pending)
		if err != nil {
			return nil, err
		}
		if resumed != nil {
			return resumed, nil
		}
	}

	artifact, err := ig.CreateIntent(ctx, r)
	if err != nil {
		return nil, err
	}
	if artifact.IntentID == "" || artifact.ClientSecret == "" {
		return nil, ErrInvalidProviderResponse
	}

	provider := ig.Provider()
	txn := &models.PaymentTransaction{
		ReservationID: r.ID,
		Provider:      provider,
		ExternalRef:   artifact.IntentID,
		AmountMinor:   artifact.AmountMinor,
		Currency:      artifact.Currency,
		Status:        models.PaymentStatusPending,
		StudentEmail:  email,
		Metadata: datatypes.JSONMap{
			"reservationId": r.ID,
			"subject":       r.Subject,
			"provider":      string(provider),
			"source":        string(provider) + "_elements",
			"flow":          "elements",
		},
	}
	if err := s.ledger.Create(ctx, txn); err != nil {
		return nil, err
	}

	metrics.CheckoutsCreated.WithLabelValues(string(provider), "elements").Inc()
	s.log.Infow("card elements intent created",
		"reservation_id", r.ID, "intent_id", artifact.IntentID, "amount_minor", artifact.AmountMinor)
	return &ElementsPayment{
		PaymentIntentID: artifact.IntentID,
		ClientSecret:    artifact.ClientSecret,
		PublishableKey:  ig.PublishableKey(),
		AmountMinor:     artifact.AmountMinor,
		Currency:        artifact.Currency,
	}, nil
}

// resumePendingIntent re-fetches a pending intent and decides whether the
// client can keep confirming it. A succeeded intent is reconciled here so
// the caller does not mint a second charge for an already-paid reservation.
func (s *Service) resumePendingIntent(ctx context.Context, ig IntentGateway, pending *models.PaymentTransaction) (*ElementsPayment, error) {
	intent, err := ig.FetchIntent(ctx, pending.ExternalRef)
	if err != nil {
		// A fetch failure must not block the student from paying.
		s.log.Warnw("pending intent fetch failed, creating a new one",
			"intent_id", pending.ExternalRef, "error", err)
		return nil, nil
	}

	if intent.Status == "succeeded" {
		if _, err := s.SynchronizeReference(ctx, pending.ExternalRef); err != nil {
			return nil, err
		}
		return nil, ErrReservationAlreadyPaid
	}

	if !actionableIntentStatuses[intent.Status] {
		return nil, nil
	}
	if currency.NormalizeCode(intent.Currency) != currency.NormalizeCode(ig.DefaultCurrency()) {
		return nil, nil
	}
	if intent.ClientSecret == "" {
		return nil, nil
	}

	s.log.Infow("resuming pending card elements intent",
		"intent_id", intent.IntentID, "status", intent.Status)
	return &ElementsPayment{
		PaymentIntentID: intent.IntentID,
		ClientSecret:    intent.ClientSecret,
		PublishableKey:  ig.PublishableKey(),
		AmountMinor:     intent.AmountMinor,
		Currency:        intent.Currency,
	}, nil
}
