package handlers

import (
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fahamni/payments/pkg/urls"
)

func TestRegisterPaymentRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentRoutes(r, nil, nil, nil)
	RegisterAdminRoutes(r, nil, nil)
	RegisterNotificationRoutes(r, nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /api/v1/payment/reservations/:id/checkout"))
	require.True(t, contains("POST /api/v1/payment/reservations/:id/elements"))
	require.True(t, contains("GET /api/v1/payment/reservations/:id/status"))
	require.True(t, contains("GET /payment/reservations/:id/success"))
	require.True(t, contains("GET /payment/reservations/:id/cancel"))
	require.True(t, contains("POST /api/v1/admin/payment/transactions/scan"))
	require.True(t, contains("POST /api/v1/admin/payment/statistics"))
	require.True(t, contains("POST /api/v1/admin/payment/reservations/:id/pricing"))
	require.True(t, contains("GET /api/v1/notifications"))
	require.True(t, contains("POST /api/v1/notifications/:id/read"))
}

func TestRegisterWebhookRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/webhooks")
	RegisterStripeWebhookRoutes(g, &StripeWebhookHandler{})
	RegisterKonnectWebhookRoutes(g, &KonnectWebhookHandler{})

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /webhooks/stripe"))
	require.True(t, contains("GET /webhooks/konnect"))
	require.True(t, contains("POST /webhooks/konnect"))
}

// The URLs the gateways hand to providers must land on registered routes,
// otherwise every provider notification 404s.
func TestBuilderWebhookURLs_MatchRegisteredRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/webhooks")
	RegisterStripeWebhookRoutes(g, &StripeWebhookHandler{})
	RegisterKonnectWebhookRoutes(g, &KonnectWebhookHandler{})

	b := urls.New("https://app.example.com")
	registered := map[string]bool{}
	for _, rt := range r.Routes() {
		registered[rt.Method+" "+rt.Path] = true
	}

	for target, built := range map[string]string{
		"POST /webhooks/stripe":  b.StripeWebhook(),
		"POST /webhooks/konnect": b.KonnectWebhook(),
	} {
		u, err := url.Parse(built)
		require.NoError(t, err)
		require.True(t, registered[target], "route %s not registered", target)
		require.Equal(t, target[len("POST "):], u.Path)
	}
}
