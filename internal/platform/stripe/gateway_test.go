package stripe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fahamni/payments/internal/models"
)

func TestResolveOutcome_SessionCompleted(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"object":         "checkout.session",
		"id":             "cs_test_1",
		"payment_intent": "pi_test_1",
		"status":         "complete",
		"payment_status": "paid",
	})
	require.NotNil(t, out)
	require.Equal(t, "cs_test_1", out.ExternalRef)
	require.Equal(t, "pi_test_1", out.SecondaryRef)
	require.Equal(t, models.PaymentStatusPaid, out.Target)
}

func TestResolveOutcome_SessionExpired(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"object":         "checkout.session",
		"id":             "cs_test_1",
		"status":         "expired",
		"payment_status": "unpaid",
	})
	require.NotNil(t, out)
	require.Equal(t, models.PaymentStatusExpired, out.Target)
}

func TestResolveOutcome_SessionCompleteButUnpaid(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"object":         "checkout.session",
		"id":             "cs_test_1",
		"status":         "complete",
		"payment_status": "unpaid",
	})
	require.NotNil(t, out)
	require.Equal(t, models.PaymentStatusFailed, out.Target)
	require.Equal(t, "payment incomplete or declined", out.ErrorMessage)
}

func TestResolveOutcome_SessionWithExpandedIntent(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"object":         "checkout.session",
		"id":             "cs_test_1",
		"payment_intent": map[string]any{"id": "pi_test_1", "status": "succeeded"},
		"payment_status": "paid",
	})
	require.NotNil(t, out)
	require.Equal(t, "pi_test_1", out.SecondaryRef)
}

func TestResolveOutcome_IntentSucceeded(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"object":               "payment_intent",
		"id":                   "pi_test_1",
		"status":               "succeeded",
		"payment_method_types": []any{"card"},
	})
	require.NotNil(t, out)
	require.Equal(t, "pi_test_1", out.ExternalRef)
	require.Equal(t, models.PaymentStatusPaid, out.Target)
	require.Equal(t, "card", out.MethodType)
}

func TestResolveOutcome_IntentPaymentFailed(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"object":             "payment_intent",
		"id":                 "pi_test_1",
		"status":             "requires_payment_method",
		"last_payment_error": map[string]any{"message": "Your card was declined."},
	})
	require.NotNil(t, out)
	require.Equal(t, models.PaymentStatusFailed, out.Target)
	require.Equal(t, "Your card was declined.", out.ErrorMessage)
}

func TestResolveOutcome_UnwrapsEventEnvelope(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"id":   "evt_1",
		"type": "payment_intent.succeeded",
		"data": map[string]any{
			"object": map[string]any{
				"object": "payment_intent",
				"id":     "pi_test_1",
				"status": "succeeded",
			},
		},
	})
	require.NotNil(t, out)
	require.Equal(t, "pi_test_1", out.ExternalRef)
	require.Equal(t, models.PaymentStatusPaid, out.Target)
}

func TestResolveOutcome_AsyncPaymentFailedEvent(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"id":   "evt_2",
		"type": "checkout.session.async_payment_failed",
		"data": map[string]any{
			"object": map[string]any{
				"object":         "checkout.session",
				"id":             "cs_test_1",
				"status":         "complete",
				"payment_status": "unpaid",
			},
		},
	})
	require.NotNil(t, out)
	require.Equal(t, models.PaymentStatusFailed, out.Target)
}

func TestResolveOutcome_UnknownObject(t *testing.T) {
	g := &Gateway{}

	require.Nil(t, g.ResolveOutcome(map[string]any{"object": "charge", "id": "ch_1"}))
	require.Nil(t, g.ResolveOutcome(map[string]any{"object": "payment_intent"}))
}
