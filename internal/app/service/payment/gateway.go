package payment

import (
	"context"

	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/types"
)

// CheckoutArtifact is the provider-issued hosted-checkout object: the
// reference we reconcile against later and the URL the student is sent to.
type CheckoutArtifact struct {
	ExternalRef string
	RedirectURL string
	AmountMinor int64
	Currency    string
}

// IntentArtifact is the confirmable payment object used by the embedded
// card-element flow.
type IntentArtifact struct {
	IntentID     string
	ClientSecret string
	Status       string
	AmountMinor  int64
	Currency     string
}

// Outcome is the provider-agnostic interpretation of one raw provider
// payload. Target is empty when the payload carries no status the ledger
// cares about (metadata is still merged).
type Outcome struct {
	ExternalRef  string
	SecondaryRef string
	Target       models.PaymentStatus
	ErrorMessage string
	MethodType   string
	Metadata     map[string]any
}

// Gateway is the capability surface every provider implements. The
// orchestrator never branches on provider identity beyond selecting one
// Gateway at construction time.
type Gateway interface {
	Provider() types.PaymentProvider

	// IsConfigured reports whether credentials are present; the orchestrator
	// never calls out on an unconfigured gateway.
	IsConfigured() bool

	DefaultCurrency() string

	// CreateHostedCheckout builds a provider checkout artifact embedding the
	// reservation id and currency so the artifact stays identifiable.
	CreateHostedCheckout(ctx context.Context, r *models.Reservation) (*CheckoutArtifact, error)

	// FetchPayload polls the provider for the canonical payload behind a
	// reference; the gateway classifies the reference shape itself.
	FetchPayload(ctx context.Context, externalRef string) (map[string]any, error)

	// ResolveOutcome maps a raw payload (fetched or webhook-delivered) to a
	// ledger outcome; nil when the payload carries no usable reference.
	ResolveOutcome(payload map[string]any) *Outcome

	// ReuseRedirectURL returns a still-valid redirect URL for a pending
	// transaction, or "" when a fresh artifact must be created. Failures are
	// swallowed: reuse is best-effort.
	ReuseRedirectURL(ctx context.Context, txn *models.PaymentTransaction) string

	// VerifyWebhookSignature authenticates a signed webhook body. Gateways
	// without a signature scheme return false unconditionally.
	VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool
}

// IntentGateway is the optional embedded-element capability (card processor
// only). The orchestrator upgrades via type assertion.
type IntentGateway interface {
	Gateway

	CreateIntent(ctx context.Context, r *models.Reservation) (*IntentArtifact, error)
	FetchIntent(ctx context.Context, intentID string) (*IntentArtifact, error)
	PublishableKey() string

	// IntentRefPrefix classifies references that belong to the intent flow
	// rather than the hosted-session flow.
	IntentRefPrefix() string
}
