package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HistogramBuckets covers fast local handlers up to slow outbound provider
// calls (bounded at 25-30s per call).
var HistogramBuckets = []float64{
	25, 50, 75, 100, 150, 200, 300, 400, 500,
	750, 1000, 1500, 2000,
	3000, 5000, 7500, 10000, 15000,
	20000, 30000, 45000, 60000,
}

var (
	// CheckoutsCreated counts successfully created checkout artifacts.
	CheckoutsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "payment",
		Name:      "checkouts_created_total",
		Help:      "Checkout artifacts created, by provider and flow.",
	}, []string{"provider", "flow"})

	// CheckoutsReused counts pending artifacts returned inside the reuse window.
	CheckoutsReused = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "payment",
		Name:      "checkouts_reused_total",
		Help:      "Pending checkout artifacts reused instead of recreated.",
	}, []string{"provider"})

	// Reconciliations counts applied provider payloads by resulting status.
	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "payment",
		Name:      "reconciliations_total",
		Help:      "Reconciliation outcomes, by provider and resulting transaction status.",
	}, []string{"provider", "status"})

	// WebhookDeliveries counts inbound webhook calls by verdict
	// (accepted, ignored, invalid_signature, unconfigured, duplicate, error).
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "payment",
		Name:      "webhook_deliveries_total",
		Help:      "Inbound webhook deliveries, by provider and verdict.",
	}, []string{"provider", "verdict"})
)
