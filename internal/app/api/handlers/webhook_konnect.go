package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fahamni/payments/internal/app/service/eventlog"
	"github.com/fahamni/payments/internal/app/service/payment"
	"github.com/fahamni/payments/pkg/logctx"
	"github.com/fahamni/payments/pkg/metrics"
	"github.com/fahamni/payments/pkg/types"
)

type KonnectWebhookHandler struct {
	svc    *payment.Service
	events eventRecorder
	log    *zap.SugaredLogger
}

func NewKonnectWebhookHandler(svc *payment.Service, events *eventlog.Service, log *zap.SugaredLogger) *KonnectWebhookHandler {
	return &KonnectWebhookHandler{svc: svc, events: events, log: log}
}

// @Summary      Wallet processor webhook
// @Description  Receives wallet payment notifications carrying only a payment reference. The payment is authenticated by re-fetching it from the processor before reconciliation.
// @Tags         Webhook
// @Produce      json
// @Param        payment_ref query string false "Wallet payment reference"
// @Success      200  {object}  response.APIResponse[any]
// @Failure      400  "missing payment reference"
// @Router       /webhooks/konnect [get]
func (h *KonnectWebhookHandler) Handle(c *gin.Context) {
	log := logctx.FromGin(c, h.log)
	provider := string(types.PaymentProviderKonnect)

	if h.svc.Provider() != types.PaymentProviderKonnect {
		metrics.WebhookDeliveries.WithLabelValues(provider, "inactive_provider").Inc()
		c.Status(http.StatusAccepted)
		return
	}

	ref, rawBody := h.extractRef(c)
	if ref == "" {
		metrics.WebhookDeliveries.WithLabelValues(provider, "malformed").Inc()
		c.Status(http.StatusBadRequest)
		return
	}

	traceID, _ := c.Get("traceID")
	trace, _ := traceID.(string)
	entry := h.events.Record(c.Request.Context(), provider, trace, ref, "payment_notification", rawBody)

	// The delivery is unsigned: the reference is only trusted after the
	// payment behind it has been fetched from the processor. Deliveries are
	// not deduplicated, the processor reuses one reference across status
	// changes and reconciliation is idempotent.
	txn, err := h.svc.SynchronizeReference(c.Request.Context(), ref)
	h.events.Finish(c.Request.Context(), entry, txn, err)
	if err != nil {
		log.Errorw("konnect notification processing failed", "payment_ref", ref, "error", err)
		metrics.WebhookDeliveries.WithLabelValues(provider, "error").Inc()
		c.Status(http.StatusInternalServerError)
		return
	}

	metrics.WebhookDeliveries.WithLabelValues(provider, "handled").Inc()
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// extractRef pulls the payment reference from the query string or, for POST
// deliveries, from the JSON body.
func (h *KonnectWebhookHandler) extractRef(c *gin.Context) (string, []byte) {
	if ref := c.Query("payment_ref"); ref != "" {
		raw, _ := json.Marshal(map[string]string{"payment_ref": ref})
		return ref, raw
	}

	rawBody, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		return "", nil
	}
	var body struct {
		PaymentRef string `json:"payment_ref"`
	}
	if json.Unmarshal(rawBody, &body) != nil {
		return "", rawBody
	}
	return body.PaymentRef, rawBody
}

func RegisterKonnectWebhookRoutes(r gin.IRouter, h *KonnectWebhookHandler) {
	r.GET("/konnect", h.Handle)
	r.POST("/konnect", h.Handle)
}
