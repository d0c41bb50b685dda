package mockpay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fahamni/payments/internal/app/service/payment"
	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/config"
	"github.com/fahamni/payments/pkg/currency"
	"github.com/fahamni/payments/pkg/types"
	"github.com/fahamni/payments/pkg/urls"
)

// minimumAmountMinor mirrors the wallet floor so local runs exercise the
// same amounts as the sandbox.
const minimumAmountMinor = 100

// Gateway is the deterministic in-process provider used in development and
// integration tests: it never performs I/O and every checkout it issues
// resolves as paid when fetched.
type Gateway struct {
	payment config.PaymentConfig
	urls    *urls.Builder
	now     func() time.Time
}

func NewGateway(cfg *config.Config, builder *urls.Builder) *Gateway {
	return &Gateway{payment: cfg.Payment, urls: builder, now: time.Now}
}

func (g *Gateway) Provider() types.PaymentProvider { return types.PaymentProviderMock }

func (g *Gateway) IsConfigured() bool { return true }

func (g *Gateway) DefaultCurrency() string { return g.payment.DefaultCurrency() }

func (g *Gateway) CreateHostedCheckout(_ context.Context, r *models.Reservation) (*payment.CheckoutArtifact, error) {
	ref := fmt.Sprintf("mock_%s_%d", r.ID, g.now().UnixMilli())
	redirect := urls.AppendQuery(g.urls.PaymentSuccess(r.ID), "payment_ref", ref)
	return &payment.CheckoutArtifact{
		ExternalRef: ref,
		RedirectURL: redirect,
		AmountMinor: currency.AmountMinorForDuration(r.DurationMin, r.PricePerHour(g.payment.PricePerHourMinor), minimumAmountMinor),
		Currency:    g.DefaultCurrency(),
	}, nil
}

// FetchPayload reports every known mock reference as paid, which makes the
// redirect-callback path exercise the full reconciliation machinery.
func (g *Gateway) FetchPayload(_ context.Context, externalRef string) (map[string]any, error) {
	if !strings.HasPrefix(externalRef, "mock_") {
		return nil, fmt.Errorf("%w: unknown mock reference %q", payment.ErrProviderRejected, externalRef)
	}
	return map[string]any{
		"paymentRef": externalRef,
		"status":     "paid",
		"paidAt":     g.now().UTC().Format(time.RFC3339),
	}, nil
}

func (g *Gateway) ResolveOutcome(payload map[string]any) *payment.Outcome {
	ref, _ := payload["paymentRef"].(string)
	if !strings.HasPrefix(ref, "mock_") {
		return nil
	}
	out := &payment.Outcome{
		ExternalRef: ref,
		Metadata:    map[string]any{"mockPaidAt": payload["paidAt"]},
	}
	switch payload["status"] {
	case "paid":
		out.Target = models.PaymentStatusPaid
		out.MethodType = "mock"
	case "failed":
		out.Target = models.PaymentStatusFailed
	case "canceled":
		out.Target = models.PaymentStatusCanceled
	}
	return out
}

func (g *Gateway) ReuseRedirectURL(_ context.Context, txn *models.PaymentTransaction) string {
	return txn.MetadataString("redirectUrl")
}

func (g *Gateway) VerifyWebhookSignature([]byte, string) bool { return false }
