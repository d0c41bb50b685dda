package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fahamni/payments/pkg/config"
)

// replayTTL keeps seen webhook event ids long enough to cover provider
// retry schedules.
const replayTTL = 24 * time.Hour

// ReplayGuard deduplicates webhook deliveries by provider event id. It fails
// open: when Redis is unreachable a delivery is treated as first, because
// reconciliation itself is idempotent and dropping a genuine event is the
// only unrecoverable mistake.
type ReplayGuard struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func NewReplayGuard(rdb *redis.Client, log *zap.SugaredLogger) *ReplayGuard {
	return &ReplayGuard{rdb: rdb, log: log}
}

// FirstDelivery reports whether this event id has not been seen before and
// marks it seen.
func (g *ReplayGuard) FirstDelivery(ctx context.Context, provider, eventID string) bool {
	if eventID == "" {
		return true
	}
	key := fmt.Sprintf("webhook:seen:%s:%s", provider, eventID)
	ok, err := g.rdb.SetNX(ctx, key, 1, replayTTL).Result()
	if err != nil {
		g.log.Warnw("replay guard unavailable, processing anyway",
			"provider", provider, "event_id", eventID, "error", err)
		return true
	}
	return ok
}

// Module exposes the Redis client and the replay guard via Fx.
var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(NewReplayGuard),
)
