package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/logctx"
	"github.com/fahamni/payments/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Record persists an inbound provider notification and returns the log row.
// Logging failures never block webhook processing.
func (s *Service) Record(ctx context.Context, provider, traceID, externalRef, eventType string, rawBody []byte) *models.WebhookEventLog {
	entry := &models.WebhookEventLog{
		ID:          tool.GenerateUUIDV7(),
		Provider:    provider,
		TraceID:     traceID,
		ExternalRef: externalRef,
		EventType:   eventType,
		ReceivedAt:  time.Now(),
		Payload:     datatypes.JSON(rawBody),
		Status:      models.WebhookEventLogStatusReceived,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to record webhook event: %v", err)
		return nil
	}
	return entry
}

// Finish asynchronously stamps the processing outcome onto a recorded event.
// Nil entries (from a failed Record) are ignored.
func (s *Service) Finish(ctx context.Context, entry *models.WebhookEventLog, result any, handleErr error) {
	go func() {
		if entry == nil {
			return
		}
		entry.Status = models.WebhookEventLogStatusHandled
		if handleErr != nil {
			entry.Status = models.WebhookEventLogStatusHandleFailed
			result = map[string]string{"error": handleErr.Error()}
		}
		if result != nil {
			if encoded, err := json.Marshal(result); err == nil {
				raw := datatypes.JSON(encoded)
				entry.Result = &raw
			}
		}
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to finish webhook event log: %v", err)
		}
	}()
}
