package konnect

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/fahamni/payments/internal/models"
)

func TestResolveOutcome_Completed(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"paymentRef": "konnect-ref-1",
		"payment":    map[string]any{"status": "completed"},
	})
	require.NotNil(t, out)
	require.Equal(t, "konnect-ref-1", out.ExternalRef)
	require.Equal(t, models.PaymentStatusPaid, out.Target)
	require.Equal(t, "wallet", out.MethodType)
}

func TestResolveOutcome_FailedWithReason(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"paymentRef": "konnect-ref-1",
		"payment":    map[string]any{"status": "failed_payment", "failedReason": "insufficient funds"},
	})
	require.NotNil(t, out)
	require.Equal(t, models.PaymentStatusFailed, out.Target)
	require.Equal(t, "insufficient funds", out.ErrorMessage)
}

func TestResolveOutcome_PendingHasNoTarget(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{
		"paymentRef": "konnect-ref-1",
		"payment":    map[string]any{"status": "pending"},
	})
	require.NotNil(t, out)
	require.Empty(t, out.Target)
}

func TestResolveOutcome_SnakeCaseWebhookRef(t *testing.T) {
	g := &Gateway{}

	out := g.ResolveOutcome(map[string]any{"payment_ref": "konnect-ref-1"})
	require.NotNil(t, out)
	require.Equal(t, "konnect-ref-1", out.ExternalRef)
	require.Empty(t, out.Target)
}

func TestResolveOutcome_MissingRef(t *testing.T) {
	g := &Gateway{}

	require.Nil(t, g.ResolveOutcome(map[string]any{"payment": map[string]any{"status": "completed"}}))
}

func TestReuseRedirectURL_FromMetadata(t *testing.T) {
	g := &Gateway{}

	txn := &models.PaymentTransaction{Metadata: datatypes.JSONMap{"payUrl": "https://pay.konnect/x"}}
	require.Equal(t, "https://pay.konnect/x", g.ReuseRedirectURL(nil, txn))

	require.Empty(t, g.ReuseRedirectURL(nil, &models.PaymentTransaction{}))
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Amine Ben Salah")
	require.Equal(t, "Amine", first)
	require.Equal(t, "Ben Salah", last)

	first, last = splitName("Amine")
	require.Equal(t, "Amine", first)
	require.Empty(t, last)

	first, _ = splitName("  ")
	require.Equal(t, "Student", first)
}
