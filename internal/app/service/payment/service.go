package payment

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/config"
	"github.com/fahamni/payments/pkg/currency"
	"github.com/fahamni/payments/pkg/metrics"
	"github.com/fahamni/payments/pkg/types"
)

// ReconcileFunc mutates one ledger row (and, when loaded, its reservation)
// inside the ledger's transactional read-modify-write.
type ReconcileFunc func(ctx context.Context, txn *models.PaymentTransaction, res *models.Reservation) error

// Ledger is the persistence contract of the transaction ledger.
type Ledger interface {
	FindLatestPendingByReservation(ctx context.Context, reservationID string) (*models.PaymentTransaction, error)
	FindLatestByReservation(ctx context.Context, reservationID string) (*models.PaymentTransaction, error)
	// FindByExternalRef matches the primary or the secondary reference.
	FindByExternalRef(ctx context.Context, externalRef string) (*models.PaymentTransaction, error)
	Create(ctx context.Context, txn *models.PaymentTransaction) error
	// Reconcile runs fn under a row-level lock over the transaction matched
	// by externalRef (primary or secondary) plus its reservation, persisting
	// both on success. Unknown references yield (nil, nil).
	Reconcile(ctx context.Context, externalRef string, fn ReconcileFunc) (*models.PaymentTransaction, error)
}

// Notifier creates the tutor-facing paid notification; it is idempotent
// keyed by (reservation, external reference) and advisory for the caller.
type Notifier interface {
	NotifyTutorPaymentReceived(ctx context.Context, res *models.Reservation, txn *models.PaymentTransaction, provider types.PaymentProvider, externalRef string, paidAt time.Time) (*models.InAppNotification, error)
}

// Service is the payment orchestrator: it drives checkout creation, pending
// artifact reuse, and payload-driven reconciliation against the ledger.
type Service struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	gateway  Gateway
	ledger   Ledger
	notifier Notifier

	now func() time.Time
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, gw Gateway, ledger Ledger, notifier Notifier) *Service {
	return &Service{
		cfg:      cfg,
		log:      log,
		gateway:  gw,
		ledger:   ledger,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *Service) Provider() types.PaymentProvider {
	return s.gateway.Provider()
}

func (s *Service) IsConfigured() bool {
	return s.gateway.IsConfigured()
}

// SupportsCardElements reports whether the active provider can serve the
// embedded card-element flow.
func (s *Service) SupportsCardElements() bool {
	_, ok := s.gateway.(IntentGateway)
	return ok
}

// VerifyWebhookSignature forwards to the active gateway.
func (s *Service) VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool {
	return s.gateway.VerifyWebhookSignature(rawBody, signatureHeader)
}

// CreateCheckoutForReservation creates (or reuses) a hosted checkout artifact
// for an accepted reservation and returns the redirect URL. The ledger row is
// written only after the provider call succeeded, so no partial row is left
// behind on timeout.
func (s *Service) CreateCheckoutForReservation(ctx context.Context, r *models.Reservation) (string, error) {
	if r == nil || r.Status != models.ReservationStatusAccepted {
		if r != nil && r.Status == models.ReservationStatusPaid {
			return "", ErrReservationAlreadyPaid
		}
		return "", ErrReservationNotPayable
	}
	if !s.gateway.IsConfigured() {
		return "", ErrProviderNotConfigured
	}

	pending, err := s.ledger.FindLatestPendingByReservation(ctx, r.ID)
	if err != nil {
		return "", err
	}
	if pending != nil && s.canReusePending(pending) {
		if url := s.gateway.ReuseRedirectURL(ctx, pending); url != "" {
			metrics.CheckoutsReused.WithLabelValues(string(s.gateway.Provider())).Inc()
			s.log.Infow("reusing pending checkout",
				"reservation_id", r.ID, "external_ref", pending.ExternalRef)
			return url, nil
		}
	}

	email := strings.TrimSpace(r.ParticipantEmail)
	if email == "" {
		return "", ErrMissingParticipantEmail
	}

	artifact, err := s.gateway.CreateHostedCheckout(ctx, r)
	if err != nil {
		return "", err
	}
	if artifact.ExternalRef == "" || artifact.RedirectURL == "" {
		return "", ErrInvalidProviderResponse
	}

	provider := s.gateway.Provider()
	txn := &models.PaymentTransaction{
		ReservationID: r.ID,
		Provider:      provider,
		ExternalRef:   artifact.ExternalRef,
		AmountMinor:   artifact.AmountMinor,
		Currency:      artifact.Currency,
		Status:        models.PaymentStatusPending,
		StudentEmail:  email,
		Metadata: datatypes.JSONMap{
			"reservationId": r.ID,
			"subject":       r.Subject,
			"provider":      string(provider),
			"source":        string(provider) + "_checkout",
			"flow":          "hosted",
			"redirectUrl":   artifact.RedirectURL,
			"payUrl":        artifact.RedirectURL,
		},
	}
	if err := s.ledger.Create(ctx, txn); err != nil {
		return "", err
	}

	metrics.CheckoutsCreated.WithLabelValues(string(provider), "hosted").Inc()
	s.log.Infow("checkout created",
		"reservation_id", r.ID, "provider", provider,
		"external_ref", artifact.ExternalRef, "amount_minor", artifact.AmountMinor)
	return artifact.RedirectURL, nil
}

// canReusePending applies the reuse policy: the pending artifact must be
// younger than the reuse window and carry the provider's current currency.
func (s *Service) canReusePending(txn *models.PaymentTransaction) bool {
	if s.now().Sub(txn.CreatedAt) >= s.cfg.Payment.ReuseWindow() {
		return false
	}
	existing := currency.NormalizeCode(txn.Currency)
	return existing != "" && existing == currency.NormalizeCode(s.gateway.DefaultCurrency())
}

// SynchronizeReference polls the provider for the canonical payload behind
// externalRef and applies it to the ledger. Empty references and unknown
// references are no-op successes.
func (s *Service) SynchronizeReference(ctx context.Context, externalRef string) (*models.PaymentTransaction, error) {
	externalRef = strings.TrimSpace(externalRef)
	if externalRef == "" {
		return nil, nil
	}
	if !s.gateway.IsConfigured() {
		return nil, ErrProviderNotConfigured
	}

	payload, err := s.gateway.FetchPayload(ctx, externalRef)
	if err != nil {
		return nil, err
	}
	return s.ApplyPayload(ctx, payload)
}

// SynchronizeLatestPendingForReservation polls the provider for the latest
// pending transaction of a reservation, used on redirect callbacks that
// arrive without a reference.
func (s *Service) SynchronizeLatestPendingForReservation(ctx context.Context, r *models.Reservation) (*models.PaymentTransaction, error) {
	if r == nil {
		return nil, nil
	}
	pending, err := s.ledger.FindLatestPendingByReservation(ctx, r.ID)
	if err != nil || pending == nil {
		return nil, err
	}
	return s.SynchronizeReference(ctx, pending.ExternalRef)
}

// MarkReservationCheckoutCanceled cancels the latest pending transaction of
// the reservation, if any. Paid and already-final rows are left untouched.
func (s *Service) MarkReservationCheckoutCanceled(ctx context.Context, r *models.Reservation) error {
	if r == nil {
		return nil
	}
	pending, err := s.ledger.FindLatestPendingByReservation(ctx, r.ID)
	if err != nil || pending == nil {
		return err
	}

	_, err = s.ledger.Reconcile(ctx, pending.ExternalRef, func(_ context.Context, txn *models.PaymentTransaction, _ *models.Reservation) error {
		if txn.Status != models.PaymentStatusPending {
			return nil
		}
		txn.Status = models.PaymentStatusCanceled
		txn.ErrorMessage = lo.ToPtr("checkout canceled by the user")
		txn.UpdatedAt = s.now()
		return nil
	})
	return err
}
