package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HTTP instruments a gin engine and exposes /metrics on a dedicated listener.
type HTTP struct {
	reqCnt *prometheus.CounterVec
	reqDur *prometheus.HistogramVec

	listenAddress  string
	urlLabelMapper func(c *gin.Context) string
	log            *zap.SugaredLogger
}

type NewHTTPOptions struct {
	// ReqCntURLLabelMappingFn maps a request to its url label; defaults to
	// the registered route pattern to keep cardinality bounded.
	ReqCntURLLabelMappingFn func(c *gin.Context) string
	Logger                  *zap.SugaredLogger
}

func NewHTTP(opts NewHTTPOptions) *HTTP {
	mapper := opts.ReqCntURLLabelMappingFn
	if mapper == nil {
		mapper = func(c *gin.Context) string {
			if fp := c.FullPath(); fp != "" {
				return fp
			}
			return c.Request.URL.Path
		}
	}

	h := &HTTP{
		urlLabelMapper: mapper,
		log:            opts.Logger,
		reqCnt: mustRegister(prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests processed, by status, method and url.",
		}, []string{"code", "method", "url"})).(*prometheus.CounterVec),
		reqDur: mustRegister(prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   HistogramBuckets,
		}, []string{"code", "method", "url"})).(*prometheus.HistogramVec),
	}
	return h
}

func mustRegister(c prometheus.Collector) prometheus.Collector {
	prometheus.MustRegister(c)
	return c
}

func (h *HTTP) SetListenAddress(addr string) {
	h.listenAddress = addr
}

// Use attaches the handler middleware and, when a listen address is set,
// starts the metrics endpoint on its own server.
func (h *HTTP) Use(e *gin.Engine) {
	e.Use(h.handlerFunc())

	if h.listenAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			srv := &http.Server{Addr: h.listenAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			if err := srv.ListenAndServe(); err != nil && h.log != nil {
				h.log.Errorw("metrics listener stopped", "err", err)
			}
		}()
	}
}

func (h *HTTP) handlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		url := h.urlLabelMapper(c)
		elapsed := float64(time.Since(start).Milliseconds())

		h.reqDur.WithLabelValues(status, c.Request.Method, url).Observe(elapsed)
		h.reqCnt.WithLabelValues(status, c.Request.Method, url).Inc()
	}
}
