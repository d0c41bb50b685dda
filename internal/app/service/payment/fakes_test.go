package payment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/config"
	"github.com/fahamni/payments/pkg/types"
)

type fakeLedger struct {
	txns         []*models.PaymentTransaction
	reservations map[string]*models.Reservation
	createErr    error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{reservations: map[string]*models.Reservation{}}
}

func (l *fakeLedger) FindLatestPendingByReservation(_ context.Context, reservationID string) (*models.PaymentTransaction, error) {
	var latest *models.PaymentTransaction
	for _, t := range l.txns {
		if t.ReservationID != reservationID || t.Status != models.PaymentStatusPending {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	return latest, nil
}

func (l *fakeLedger) FindLatestByReservation(_ context.Context, reservationID string) (*models.PaymentTransaction, error) {
	var latest *models.PaymentTransaction
	for _, t := range l.txns {
		if t.ReservationID != reservationID {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	return latest, nil
}

func (l *fakeLedger) FindByExternalRef(_ context.Context, externalRef string) (*models.PaymentTransaction, error) {
	return l.match(externalRef), nil
}

func (l *fakeLedger) Create(_ context.Context, txn *models.PaymentTransaction) error {
	if l.createErr != nil {
		return l.createErr
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	l.txns = append(l.txns, txn)
	return nil
}

func (l *fakeLedger) Reconcile(ctx context.Context, externalRef string, fn ReconcileFunc) (*models.PaymentTransaction, error) {
	txn := l.match(externalRef)
	if txn == nil {
		return nil, nil
	}
	res := l.reservations[txn.ReservationID]
	if err := fn(ctx, txn, res); err != nil {
		return nil, err
	}
	return txn, nil
}

func (l *fakeLedger) match(ref string) *models.PaymentTransaction {
	for _, t := range l.txns {
		if t.ExternalRef == ref {
			return t
		}
		if t.SecondaryRef != nil && *t.SecondaryRef == ref {
			return t
		}
	}
	return nil
}

type fakeGateway struct {
	provider   types.PaymentProvider
	configured bool
	currency   string

	checkout    *CheckoutArtifact
	checkoutErr error

	payloads map[string]map[string]any
	fetchErr error

	resolve func(map[string]any) *Outcome

	reuseURL string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		provider:   types.PaymentProviderMock,
		configured: true,
		currency:   "tnd",
		payloads:   map[string]map[string]any{},
	}
}

func (g *fakeGateway) Provider() types.PaymentProvider { return g.provider }
func (g *fakeGateway) IsConfigured() bool              { return g.configured }
func (g *fakeGateway) DefaultCurrency() string         { return g.currency }

func (g *fakeGateway) CreateHostedCheckout(context.Context, *models.Reservation) (*CheckoutArtifact, error) {
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	if g.checkout != nil {
		return g.checkout, nil
	}
	return &CheckoutArtifact{
		ExternalRef: "ref_new",
		RedirectURL: "https://pay.example/new",
		AmountMinor: 4500,
		Currency:    "tnd",
	}, nil
}

func (g *fakeGateway) FetchPayload(_ context.Context, externalRef string) (map[string]any, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	p, ok := g.payloads[externalRef]
	if !ok {
		return nil, errors.New("payload not found")
	}
	return p, nil
}

func (g *fakeGateway) ResolveOutcome(payload map[string]any) *Outcome {
	if g.resolve != nil {
		return g.resolve(payload)
	}
	ref, _ := payload["ref"].(string)
	if ref == "" {
		return nil
	}
	out := &Outcome{ExternalRef: ref}
	if status, ok := payload["status"].(string); ok {
		out.Target = models.PaymentStatus(status)
	}
	if secondary, ok := payload["secondary"].(string); ok {
		out.SecondaryRef = secondary
	}
	if msg, ok := payload["error"].(string); ok {
		out.ErrorMessage = msg
	}
	if meta, ok := payload["meta"].(map[string]any); ok {
		out.Metadata = meta
	}
	return out
}

func (g *fakeGateway) ReuseRedirectURL(context.Context, *models.PaymentTransaction) string {
	return g.reuseURL
}

func (g *fakeGateway) VerifyWebhookSignature([]byte, string) bool { return false }

type fakeIntentGateway struct {
	*fakeGateway

	intent    *IntentArtifact
	createErr error
	fetched   map[string]*IntentArtifact
	fetchErr  error
}

func newFakeIntentGateway() *fakeIntentGateway {
	g := newFakeGateway()
	g.provider = types.PaymentProviderStripe
	return &fakeIntentGateway{
		fakeGateway: g,
		fetched:     map[string]*IntentArtifact{},
	}
}

func (g *fakeIntentGateway) CreateIntent(context.Context, *models.Reservation) (*IntentArtifact, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.intent != nil {
		return g.intent, nil
	}
	return &IntentArtifact{
		IntentID:     "pi_new",
		ClientSecret: "pi_new_secret",
		Status:       "requires_payment_method",
		AmountMinor:  4500,
		Currency:     "tnd",
	}, nil
}

func (g *fakeIntentGateway) FetchIntent(_ context.Context, intentID string) (*IntentArtifact, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	in, ok := g.fetched[intentID]
	if !ok {
		return nil, errors.New("intent not found")
	}
	return in, nil
}

func (g *fakeIntentGateway) PublishableKey() string { return "pk_test_123" }
func (g *fakeIntentGateway) IntentRefPrefix() string { return "pi_" }

type fakeNotifier struct {
	calls []string
	err   error
}

func (n *fakeNotifier) NotifyTutorPaymentReceived(_ context.Context, res *models.Reservation, _ *models.PaymentTransaction, _ types.PaymentProvider, externalRef string, _ time.Time) (*models.InAppNotification, error) {
	n.calls = append(n.calls, res.ID+":"+externalRef)
	if n.err != nil {
		return nil, n.err
	}
	return &models.InAppNotification{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Payment: config.PaymentConfig{
			Provider:          types.PaymentProviderMock,
			Currency:          "tnd",
			PricePerHourMinor: 3000,
		},
	}
}

func newTestService(gw Gateway, ledger Ledger, notifier Notifier) *Service {
	return NewService(testConfig(), zap.NewNop().Sugar(), gw, ledger, notifier)
}

func acceptedReservation(id string) *models.Reservation {
	return &models.Reservation{
		ID:               id,
		Status:           models.ReservationStatusAccepted,
		ParticipantEmail: "student@example.com",
		ParticipantName:  "Student",
		TutorID:          "tutor-1",
		Subject:          "Mathematics",
		StartAt:          time.Now().Add(48 * time.Hour),
		DurationMin:      90,
	}
}
