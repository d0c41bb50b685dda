package konnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fahamni/payments/internal/app/service/payment"
	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/config"
	"github.com/fahamni/payments/pkg/currency"
	"github.com/fahamni/payments/pkg/types"
	"github.com/fahamni/payments/pkg/urls"
)

const (
	requestTimeout = 25 * time.Second

	// minimumAmountMinor is the smallest wallet charge Konnect accepts.
	minimumAmountMinor = 100

	defaultLifespanMinutes = 15
)

// Gateway drives the Konnect wallet processor over its JSON REST API. The
// wallet flow is hosted-redirect only; webhook deliveries carry just a
// payment_ref and are authenticated by re-fetching the payment server side.
type Gateway struct {
	cfg        config.KonnectConfig
	payment    config.PaymentConfig
	urls       *urls.Builder
	log        *zap.SugaredLogger
	httpClient *http.Client
}

func NewGateway(cfg *config.Config, log *zap.SugaredLogger, builder *urls.Builder) *Gateway {
	return &Gateway{
		cfg:        cfg.Payment.Konnect,
		payment:    cfg.Payment,
		urls:       builder,
		log:        log,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (g *Gateway) Provider() types.PaymentProvider { return types.PaymentProviderKonnect }

func (g *Gateway) IsConfigured() bool {
	return g.cfg.APIKey != "" && g.cfg.ReceiverWalletID != ""
}

func (g *Gateway) DefaultCurrency() string { return g.payment.DefaultCurrency() }

func (g *Gateway) lifespan() int {
	if g.cfg.LifespanMinutes > 0 {
		return g.cfg.LifespanMinutes
	}
	return defaultLifespanMinutes
}

func (g *Gateway) CreateHostedCheckout(ctx context.Context, r *models.Reservation) (*payment.CheckoutArtifact, error) {
	amount := currency.AmountMinorForDuration(r.DurationMin, r.PricePerHour(g.payment.PricePerHourMinor), minimumAmountMinor)
	cur := g.DefaultCurrency()

	firstName, lastName := splitName(r.ParticipantName)
	body := map[string]any{
		"receiverWalletId":       g.cfg.ReceiverWalletID,
		"token":                  strings.ToUpper(cur),
		"amount":                 amount,
		"type":                   "immediate",
		"description":            fmt.Sprintf("Tutoring session: %s", r.Subject),
		"lifespan":               g.lifespan(),
		"checkoutForm":           false,
		"addPaymentFeesToAmount": false,
		"firstName":              firstName,
		"lastName":               lastName,
		"email":                  r.ParticipantEmail,
		"orderId":                "reservation-" + r.ID,
		"webhook":                g.urls.KonnectWebhook(),
		"successUrl":             g.urls.PaymentSuccess(r.ID),
		"failUrl":                g.urls.PaymentCancel(r.ID),
		"silentWebhook":          true,
	}

	var resp struct {
		PayURL     string `json:"payUrl"`
		PaymentRef string `json:"paymentRef"`
	}
	if err := g.do(ctx, http.MethodPost, "/payments/init-payment", body, &resp); err != nil {
		return nil, err
	}
	if resp.PaymentRef == "" || resp.PayURL == "" {
		return nil, payment.ErrInvalidProviderResponse
	}
	return &payment.CheckoutArtifact{
		ExternalRef: resp.PaymentRef,
		RedirectURL: resp.PayURL,
		AmountMinor: amount,
		Currency:    cur,
	}, nil
}

// FetchPayload fetches the payment and stamps the queried reference into the
// payload so ResolveOutcome stays self-contained.
func (g *Gateway) FetchPayload(ctx context.Context, externalRef string) (map[string]any, error) {
	var payload map[string]any
	if err := g.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(externalRef), nil, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, payment.ErrInvalidProviderResponse
	}
	payload["paymentRef"] = externalRef
	return payload, nil
}

func (g *Gateway) ResolveOutcome(payload map[string]any) *payment.Outcome {
	ref, _ := payload["paymentRef"].(string)
	if ref == "" {
		ref, _ = payload["payment_ref"].(string)
	}
	if ref == "" {
		return nil
	}

	out := &payment.Outcome{ExternalRef: ref}
	pay, ok := payload["payment"].(map[string]any)
	if !ok {
		return out
	}

	status, _ := pay["status"].(string)
	out.Metadata = map[string]any{"konnectStatus": status}
	switch status {
	case "completed", "paid":
		out.Target = models.PaymentStatusPaid
		out.MethodType = "wallet"
	case "failed", "failed_payment":
		out.Target = models.PaymentStatusFailed
		if reason, ok := pay["failedReason"].(string); ok {
			out.ErrorMessage = reason
		}
	case "expired":
		out.Target = models.PaymentStatusExpired
	case "canceled", "cancelled":
		out.Target = models.PaymentStatusCanceled
	}
	return out
}

// ReuseRedirectURL hands back the pay URL captured at creation time; Konnect
// links expire on their own past the configured lifespan.
func (g *Gateway) ReuseRedirectURL(_ context.Context, txn *models.PaymentTransaction) string {
	return txn.MetadataString("payUrl")
}

// VerifyWebhookSignature always fails: Konnect deliveries carry no signature
// and are authenticated by re-fetching the payment instead.
func (g *Gateway) VerifyWebhookSignature([]byte, string) bool { return false }

func (g *Gateway) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", g.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: konnect %s %s: %v", payment.ErrProviderUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: konnect %s %s: %v", payment.ErrProviderUnavailable, method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: konnect %s %s: %s", payment.ErrProviderRejected, method, path, shortBody(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: konnect %s %s: %v", payment.ErrInvalidProviderResponse, method, path, err)
	}
	return nil
}

func shortBody(raw []byte) string {
	var apiErr struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &apiErr) == nil {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if len(apiErr.Errors) > 0 && apiErr.Errors[0].Message != "" {
			return apiErr.Errors[0].Message
		}
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return string(raw)
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "Student", ""
	}
	first, rest, found := strings.Cut(full, " ")
	if !found {
		return first, ""
	}
	return first, rest
}
