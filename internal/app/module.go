package app

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fahamni/payments/internal/app/api/server"
	"github.com/fahamni/payments/internal/app/service/eventlog"
	"github.com/fahamni/payments/internal/app/service/ledger"
	"github.com/fahamni/payments/internal/app/service/notification"
	"github.com/fahamni/payments/internal/app/service/payment"
	"github.com/fahamni/payments/internal/app/service/statistics"
	"github.com/fahamni/payments/internal/platform/cache"
	"github.com/fahamni/payments/internal/platform/db"
	"github.com/fahamni/payments/internal/platform/konnect"
	"github.com/fahamni/payments/internal/platform/mockpay"
	"github.com/fahamni/payments/internal/platform/stripe"
	"github.com/fahamni/payments/pkg/config"
	"github.com/fahamni/payments/pkg/logger"
	"github.com/fahamni/payments/pkg/types"
	"github.com/fahamni/payments/pkg/urls"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

func newURLBuilder(cfg *config.Config) *urls.Builder {
	return urls.New(cfg.Server.PublicBaseURL)
}

// newGateway selects the one active provider gateway for the process.
func newGateway(cfg *config.Config, log *zap.SugaredLogger, builder *urls.Builder) payment.Gateway {
	switch cfg.Payment.Provider {
	case types.PaymentProviderStripe:
		return stripe.NewGateway(cfg, log, builder)
	case types.PaymentProviderKonnect:
		return konnect.NewGateway(cfg, log, builder)
	default:
		return mockpay.NewGateway(cfg, builder)
	}
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	cache.Module,
	server.Module,
	ledger.Module,
	notification.Module,
	eventlog.Module,
	statistics.Module,
	payment.Module,

	fx.Provide(newURLBuilder),
	fx.Provide(newGateway),
	fx.Provide(func(s *ledger.Service) payment.Ledger { return s }),
	fx.Provide(func(s *notification.Service) payment.Notifier { return s }),
)
