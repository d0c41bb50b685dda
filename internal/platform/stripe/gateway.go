package stripe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/fahamni/payments/internal/app/service/payment"
	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/config"
	"github.com/fahamni/payments/pkg/currency"
	"github.com/fahamni/payments/pkg/types"
	"github.com/fahamni/payments/pkg/urls"
)

// minimumAmountMinor is the smallest charge Stripe accepts.
const minimumAmountMinor = 50

const intentRefPrefix = "pi_"

// HandledEventTypes is the webhook event allow-list; everything else is
// acknowledged without processing.
var HandledEventTypes = map[string]bool{
	"checkout.session.completed":               true,
	"checkout.session.expired":                 true,
	"checkout.session.async_payment_succeeded": true,
	"checkout.session.async_payment_failed":    true,
	"payment_intent.succeeded":                 true,
	"payment_intent.payment_failed":            true,
	"payment_intent.canceled":                  true,
}

// Gateway drives the Stripe card processor: hosted checkout sessions for the
// redirect flow and payment intents for the embedded card-element flow.
type Gateway struct {
	cfg        config.StripeConfig
	payment    config.PaymentConfig
	urls       *urls.Builder
	log        *zap.SugaredLogger
	httpClient *http.Client
}

func NewGateway(cfg *config.Config, log *zap.SugaredLogger, builder *urls.Builder) *Gateway {
	return &Gateway{
		cfg:        cfg.Payment.Stripe,
		payment:    cfg.Payment,
		urls:       builder,
		log:        log,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (g *Gateway) Provider() types.PaymentProvider { return types.PaymentProviderStripe }

func (g *Gateway) IsConfigured() bool { return g.cfg.SecretKey != "" }

func (g *Gateway) DefaultCurrency() string { return g.payment.DefaultCurrency() }

func (g *Gateway) PublishableKey() string { return g.cfg.PublishableKey }

func (g *Gateway) IntentRefPrefix() string { return intentRefPrefix }

func (g *Gateway) amountFor(r *models.Reservation) int64 {
	return currency.AmountMinorForDuration(r.DurationMin, r.PricePerHour(g.payment.PricePerHourMinor), minimumAmountMinor)
}

func (g *Gateway) CreateHostedCheckout(ctx context.Context, r *models.Reservation) (*payment.CheckoutArtifact, error) {
	amount := g.amountFor(r)
	cur := g.DefaultCurrency()

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", r.ParticipantEmail)
	form.Set("success_url", urls.AppendQuery(g.urls.PaymentSuccess(r.ID), "session_id", "{CHECKOUT_SESSION_ID}"))
	form.Set("cancel_url", g.urls.PaymentCancel(r.ID))
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", cur)
	form.Set("line_items[0][price_data][unit_amount]", fmt.Sprintf("%d", amount))
	form.Set("line_items[0][price_data][product_data][name]", sessionLabel(r))
	form.Set("metadata[reservationId]", r.ID)
	form.Set("payment_intent_data[metadata][reservationId]", r.ID)

	var session map[string]any
	if err := g.do(ctx, http.MethodPost, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}

	id, _ := session["id"].(string)
	redirect, _ := session["url"].(string)
	if id == "" || redirect == "" {
		return nil, payment.ErrInvalidProviderResponse
	}
	return &payment.CheckoutArtifact{
		ExternalRef: id,
		RedirectURL: redirect,
		AmountMinor: amount,
		Currency:    cur,
	}, nil
}

func (g *Gateway) CreateIntent(ctx context.Context, r *models.Reservation) (*payment.IntentArtifact, error) {
	amount := g.amountFor(r)
	cur := g.DefaultCurrency()

	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", amount))
	form.Set("currency", cur)
	form.Set("receipt_email", r.ParticipantEmail)
	form.Set("description", sessionLabel(r))
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("metadata[reservationId]", r.ID)

	var intent map[string]any
	if err := g.do(ctx, http.MethodPost, "/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	artifact := intentArtifactFrom(intent)
	if artifact == nil {
		return nil, payment.ErrInvalidProviderResponse
	}
	return artifact, nil
}

func (g *Gateway) FetchIntent(ctx context.Context, intentID string) (*payment.IntentArtifact, error) {
	var intent map[string]any
	if err := g.do(ctx, http.MethodGet, "/payment_intents/"+url.PathEscape(intentID), nil, &intent); err != nil {
		return nil, err
	}
	artifact := intentArtifactFrom(intent)
	if artifact == nil {
		return nil, payment.ErrInvalidProviderResponse
	}
	return artifact, nil
}

// FetchPayload classifies the reference by shape: payment intents carry the
// pi_ prefix, everything else is treated as a checkout session.
func (g *Gateway) FetchPayload(ctx context.Context, externalRef string) (map[string]any, error) {
	var payload map[string]any
	if strings.HasPrefix(externalRef, intentRefPrefix) {
		if err := g.do(ctx, http.MethodGet, "/payment_intents/"+url.PathEscape(externalRef), nil, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	}
	path := "/checkout/sessions/" + url.PathEscape(externalRef) + "?expand[]=payment_intent"
	if err := g.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ResolveOutcome maps a checkout session or payment intent payload, raw or
// wrapped in a webhook event envelope, to a ledger outcome.
func (g *Gateway) ResolveOutcome(payload map[string]any) *payment.Outcome {
	object, eventType := unwrapEvent(payload)
	if object == nil {
		return nil
	}
	switch object["object"] {
	case "checkout.session":
		return resolveSession(object, eventType)
	case "payment_intent":
		return resolveIntent(object)
	default:
		return nil
	}
}

// ReuseRedirectURL re-fetches the session and returns its URL only while the
// session is still open. Any failure falls back to a fresh checkout.
func (g *Gateway) ReuseRedirectURL(ctx context.Context, txn *models.PaymentTransaction) string {
	if strings.HasPrefix(txn.ExternalRef, intentRefPrefix) {
		return ""
	}
	var session map[string]any
	if err := g.do(ctx, http.MethodGet, "/checkout/sessions/"+url.PathEscape(txn.ExternalRef), nil, &session); err != nil {
		g.log.Debugw("stripe session reuse check failed", "session_id", txn.ExternalRef, "error", err)
		return ""
	}
	if session["status"] != "open" {
		return ""
	}
	redirect, _ := session["url"].(string)
	return redirect
}

func sessionLabel(r *models.Reservation) string {
	subject := strings.TrimSpace(r.Subject)
	if subject == "" {
		subject = "Tutoring session"
	}
	return fmt.Sprintf("%s (%d min)", subject, r.DurationMin)
}

// unwrapEvent strips the webhook event envelope when present, keeping the
// event type: some session outcomes (async payment failure) are only visible
// through it.
func unwrapEvent(payload map[string]any) (map[string]any, string) {
	eventType, isEvent := payload["type"].(string)
	if !isEvent {
		return payload, ""
	}
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return payload, ""
	}
	object, ok := data["object"].(map[string]any)
	if !ok {
		return nil, eventType
	}
	return object, eventType
}

func resolveSession(session map[string]any, eventType string) *payment.Outcome {
	id, _ := session["id"].(string)
	if id == "" {
		return nil
	}
	out := &payment.Outcome{
		ExternalRef:  id,
		SecondaryRef: intentRefOf(session["payment_intent"]),
		Metadata:     map[string]any{"sessionStatus": session["status"], "sessionPaymentStatus": session["payment_status"]},
	}
	switch {
	case session["payment_status"] == "paid":
		out.Target = models.PaymentStatusPaid
	case eventType == "checkout.session.async_payment_failed":
		out.Target = models.PaymentStatusFailed
		out.ErrorMessage = "asynchronous payment failed"
	case session["status"] == "expired":
		out.Target = models.PaymentStatusExpired
	case session["status"] == "complete":
		// A complete session that is not paid will never become paid; seen
		// when polling after a declined or abandoned payment.
		out.Target = models.PaymentStatusFailed
		out.ErrorMessage = "payment incomplete or declined"
	}
	if methods, ok := session["payment_method_types"].([]any); ok && len(methods) > 0 {
		out.MethodType, _ = methods[0].(string)
	}
	return out
}

func resolveIntent(intent map[string]any) *payment.Outcome {
	id, _ := intent["id"].(string)
	if id == "" {
		return nil
	}
	out := &payment.Outcome{
		ExternalRef: id,
		Metadata:    map[string]any{"intentStatus": intent["status"]},
	}
	switch intent["status"] {
	case "succeeded":
		out.Target = models.PaymentStatusPaid
	case "canceled":
		out.Target = models.PaymentStatusCanceled
	}
	if lastErr, ok := intent["last_payment_error"].(map[string]any); ok {
		if out.Target == "" {
			out.Target = models.PaymentStatusFailed
		}
		out.ErrorMessage, _ = lastErr["message"].(string)
	}
	if methods, ok := intent["payment_method_types"].([]any); ok && len(methods) > 0 {
		out.MethodType, _ = methods[0].(string)
	}
	return out
}

func intentArtifactFrom(intent map[string]any) *payment.IntentArtifact {
	id, _ := intent["id"].(string)
	secret, _ := intent["client_secret"].(string)
	status, _ := intent["status"].(string)
	if id == "" || status == "" {
		return nil
	}
	amount, _ := intent["amount"].(float64)
	cur, _ := intent["currency"].(string)
	return &payment.IntentArtifact{
		IntentID:     id,
		ClientSecret: secret,
		Status:       status,
		AmountMinor:  int64(amount),
		Currency:     currency.NormalizeCode(cur),
	}
}

// intentRefOf extracts the payment intent id whether Stripe returned it
// expanded or as a bare id string.
func intentRefOf(v any) string {
	switch ref := v.(type) {
	case string:
		return ref
	case map[string]any:
		id, _ := ref["id"].(string)
		return id
	default:
		return ""
	}
}
