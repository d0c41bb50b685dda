package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fahamni/payments/internal/app/service/eventlog"
	"github.com/fahamni/payments/internal/app/service/payment"
	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/internal/platform/cache"
	"github.com/fahamni/payments/internal/platform/stripe"
	"github.com/fahamni/payments/pkg/config"
	"github.com/fahamni/payments/pkg/logctx"
	"github.com/fahamni/payments/pkg/metrics"
	"github.com/fahamni/payments/pkg/types"
)

const maxWebhookBody = 1 << 20

// eventRecorder is the audit-log surface the webhook handlers write through.
type eventRecorder interface {
	Record(ctx context.Context, provider, traceID, externalRef, eventType string, rawBody []byte) *models.WebhookEventLog
	Finish(ctx context.Context, entry *models.WebhookEventLog, result any, handleErr error)
}

type StripeWebhookHandler struct {
	cfg    *config.Config
	svc    *payment.Service
	events eventRecorder
	replay *cache.ReplayGuard
	log    *zap.SugaredLogger
}

func NewStripeWebhookHandler(cfg *config.Config, svc *payment.Service, events *eventlog.Service, replay *cache.ReplayGuard, log *zap.SugaredLogger) *StripeWebhookHandler {
	return &StripeWebhookHandler{cfg: cfg, svc: svc, events: events, replay: replay, log: log}
}

// @Summary      Card processor webhook
// @Description  Receives signed card processor events. Bad signatures are rejected, replays and unhandled event types are acknowledged without processing.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Signature header, t=<unix>,v1=<hex>"
// @Success      200  {object}  response.APIResponse[any]
// @Failure      400  "malformed payload"
// @Failure      403  "invalid signature"
// @Failure      503  "webhook secret not configured"
// @Router       /webhooks/stripe [post]
func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	log := logctx.FromGin(c, h.log)
	provider := string(types.PaymentProviderStripe)

	// Deliveries for an inactive provider are acknowledged so the processor
	// stops retrying, but nothing is processed.
	if h.svc.Provider() != types.PaymentProviderStripe {
		metrics.WebhookDeliveries.WithLabelValues(provider, "inactive_provider").Inc()
		c.Status(http.StatusAccepted)
		return
	}
	if h.cfg.Payment.Stripe.WebhookSecret == "" {
		log.Errorw("stripe webhook received without a configured secret")
		metrics.WebhookDeliveries.WithLabelValues(provider, "no_secret").Inc()
		c.Status(http.StatusServiceUnavailable)
		return
	}

	rawBody, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if !h.svc.VerifyWebhookSignature(rawBody, c.GetHeader("Stripe-Signature")) {
		log.Warnw("stripe webhook signature rejected")
		metrics.WebhookDeliveries.WithLabelValues(provider, "bad_signature").Inc()
		c.Status(http.StatusForbidden)
		return
	}

	var event map[string]any
	if err := json.Unmarshal(rawBody, &event); err != nil {
		metrics.WebhookDeliveries.WithLabelValues(provider, "malformed").Inc()
		c.Status(http.StatusBadRequest)
		return
	}

	eventID, _ := event["id"].(string)
	eventType, _ := event["type"].(string)

	if !stripe.HandledEventTypes[eventType] {
		log.Debugw("stripe event type not handled", "event_type", eventType)
		metrics.WebhookDeliveries.WithLabelValues(provider, "unhandled_type").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if !h.replay.FirstDelivery(c.Request.Context(), provider, eventID) {
		log.Infow("stripe event replayed", "event_id", eventID, "event_type", eventType)
		metrics.WebhookDeliveries.WithLabelValues(provider, "replay").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	traceID, _ := c.Get("traceID")
	trace, _ := traceID.(string)
	entry := h.events.Record(c.Request.Context(), provider, trace, eventID, eventType, rawBody)

	txn, err := h.svc.ApplyPayload(c.Request.Context(), event)
	h.events.Finish(c.Request.Context(), entry, txn, err)
	if err != nil {
		log.Errorw("stripe event processing failed", "event_id", eventID, "error", err)
		metrics.WebhookDeliveries.WithLabelValues(provider, "error").Inc()
		// 5xx so the processor retries; reconciliation is idempotent.
		c.Status(http.StatusInternalServerError)
		return
	}

	metrics.WebhookDeliveries.WithLabelValues(provider, "handled").Inc()
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func RegisterStripeWebhookRoutes(r gin.IRouter, h *StripeWebhookHandler) {
	r.POST("/stripe", h.Handle)
}
