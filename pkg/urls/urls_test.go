package urls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderURLs(t *testing.T) {
	b := New("https://app.example.com/")

	require.Equal(t, "https://app.example.com/payment/reservations/r-1/success", b.PaymentSuccess("r-1"))
	require.Equal(t, "https://app.example.com/payment/reservations/r-1/cancel", b.PaymentCancel("r-1"))
	require.Equal(t, "https://app.example.com/webhooks/stripe", b.StripeWebhook())
	require.Equal(t, "https://app.example.com/webhooks/konnect", b.KonnectWebhook())
}

func TestAppendQuery(t *testing.T) {
	require.Equal(t, "https://x/y?a=1", AppendQuery("https://x/y", "a", "1"))
	require.Equal(t, "https://x/y?a=1&b=2", AppendQuery("https://x/y?a=1", "b", "2"))
	require.Equal(t, "https://x/y?ref=mock%2F1", AppendQuery("https://x/y", "ref", "mock/1"))
}
