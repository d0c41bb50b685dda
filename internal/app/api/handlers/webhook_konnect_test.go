package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fahamni/payments/internal/app/service/payment"
	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/config"
	"github.com/fahamni/payments/pkg/types"
)

// walletGateway scripts one fetched payment status per delivery.
type walletGateway struct {
	statuses []string
	fetches  int
}

func (g *walletGateway) Provider() types.PaymentProvider { return types.PaymentProviderKonnect }
func (g *walletGateway) IsConfigured() bool              { return true }
func (g *walletGateway) DefaultCurrency() string         { return "tnd" }

func (g *walletGateway) CreateHostedCheckout(context.Context, *models.Reservation) (*payment.CheckoutArtifact, error) {
	return nil, nil
}

func (g *walletGateway) FetchPayload(_ context.Context, ref string) (map[string]any, error) {
	status := g.statuses[g.fetches]
	g.fetches++
	return map[string]any{"ref": ref, "status": status}, nil
}

func (g *walletGateway) ResolveOutcome(payload map[string]any) *payment.Outcome {
	ref, _ := payload["ref"].(string)
	out := &payment.Outcome{ExternalRef: ref}
	if payload["status"] == "completed" {
		out.Target = models.PaymentStatusPaid
	}
	return out
}

func (g *walletGateway) ReuseRedirectURL(context.Context, *models.PaymentTransaction) string {
	return ""
}

func (g *walletGateway) VerifyWebhookSignature([]byte, string) bool { return false }

// walletLedger holds a single transaction and its reservation in memory.
type walletLedger struct {
	txn *models.PaymentTransaction
	res *models.Reservation
}

func (l *walletLedger) FindLatestPendingByReservation(context.Context, string) (*models.PaymentTransaction, error) {
	return nil, nil
}

func (l *walletLedger) FindLatestByReservation(context.Context, string) (*models.PaymentTransaction, error) {
	return l.txn, nil
}

func (l *walletLedger) FindByExternalRef(_ context.Context, ref string) (*models.PaymentTransaction, error) {
	if l.txn != nil && l.txn.ExternalRef == ref {
		return l.txn, nil
	}
	return nil, nil
}

func (l *walletLedger) Create(_ context.Context, txn *models.PaymentTransaction) error {
	l.txn = txn
	return nil
}

func (l *walletLedger) Reconcile(ctx context.Context, ref string, fn payment.ReconcileFunc) (*models.PaymentTransaction, error) {
	if l.txn == nil || l.txn.ExternalRef != ref {
		return nil, nil
	}
	if err := fn(ctx, l.txn, l.res); err != nil {
		return nil, err
	}
	return l.txn, nil
}

type noopEvents struct{}

func (noopEvents) Record(context.Context, string, string, string, string, []byte) *models.WebhookEventLog {
	return nil
}

func (noopEvents) Finish(context.Context, *models.WebhookEventLog, any, error) {}

// The wallet processor reuses one payment reference for every status change,
// so a pending delivery must never shadow the completed one that follows.
func TestKonnectWebhook_ReusedReferenceReconcilesOnLaterDelivery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	gw := &walletGateway{statuses: []string{"pending", "completed"}}
	led := &walletLedger{
		txn: &models.PaymentTransaction{
			ID:            "t-1",
			ReservationID: "r-1",
			ExternalRef:   "konnect_ref_1",
			Status:        models.PaymentStatusPending,
			Currency:      "tnd",
		},
		res: &models.Reservation{ID: "r-1", Status: models.ReservationStatusAccepted},
	}
	cfg := &config.Config{Payment: config.PaymentConfig{
		Provider: types.PaymentProviderKonnect,
		Currency: "tnd",
	}}
	svc := payment.NewService(cfg, zap.NewNop().Sugar(), gw, led, nil)

	h := &KonnectWebhookHandler{svc: svc, events: noopEvents{}, log: zap.NewNop().Sugar()}
	r := gin.New()
	RegisterKonnectWebhookRoutes(r.Group("/webhooks"), h)

	for i, want := range []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusPaid} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/konnect?payment_ref=konnect_ref_1", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "delivery %d", i)
		require.Equal(t, want, led.txn.Status, "delivery %d", i)
	}

	require.Equal(t, 2, gw.fetches)
	require.Equal(t, models.ReservationStatusPaid, led.res.Status)
}
