package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fahamni/payments/docs"
	"github.com/fahamni/payments/internal/app/api/handlers"
	"github.com/fahamni/payments/internal/app/service/ledger"
	"github.com/fahamni/payments/internal/app/service/notification"
	"github.com/fahamni/payments/internal/app/service/payment"
	"github.com/fahamni/payments/internal/app/service/statistics"
	cfgpkg "github.com/fahamni/payments/pkg/config"

	mw "github.com/fahamni/payments/internal/app/api/middleware"

	metrics "github.com/fahamni/payments/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	svc *payment.Service,
	store *ledger.Service,
	stats *statistics.Service,
	notif *notification.Service,
	stripeWebhook *handlers.StripeWebhookHandler,
	konnectWebhook *handlers.KonnectWebhookHandler,
) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewHTTP(metrics.NewHTTPOptions{Logger: log})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Payment APIs and redirect callbacks
	handlers.RegisterPaymentRoutes(pub, svc, store, log)
	handlers.RegisterAdminRoutes(pub, store, stats)
	handlers.RegisterNotificationRoutes(pub, notif)

	// Provider webhooks
	webhooks := r.Group("/webhooks")
	webhooks.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterStripeWebhookRoutes(webhooks, stripeWebhook)
	handlers.RegisterKonnectWebhookRoutes(webhooks, konnectWebhook)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Provide(handlers.NewStripeWebhookHandler),
	fx.Provide(handlers.NewKonnectWebhookHandler),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
