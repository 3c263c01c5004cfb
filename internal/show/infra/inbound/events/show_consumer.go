package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/google/uuid"

	// --- Importaciones compartidas ---
	sharedEvents "github.com/davicafu/hexaspec/internal/shared/domain/events"
	sharedCache "github.com/davicafu/hexaspec/internal/shared/infra/platform/cache"
	sharedUtils "github.com/davicafu/hexaspec/internal/shared/infra/utils"
)

const handleTimeout = 2 * time.Second

// ShowConsumer registra los eventos de series en analytics e invalida la
// caché de lectura. analytics y cache pueden ser nil.
type ShowConsumer struct {
	analytics showDomain.ShowAnalyticsRepository
	cache     sharedCache.Cache
	log       *zap.Logger
}

func NewShowConsumer(analytics showDomain.ShowAnalyticsRepository, cache sharedCache.Cache, logger *zap.Logger) *ShowConsumer {
	return &ShowConsumer{
		analytics: analytics,
		cache:     cache,
		log:       logger,
	}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
func (c *ShowConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event for show", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case showDomain.ShowCreated:
		sharedUtils.UnmarshalAndHandle(c.log, base.Data, func(evt sharedEvents.ShowCreated) {
			c.withContext(ctx, evt.ID, func(ctx context.Context) error {
				return c.logBatch(ctx, showDomain.FromShowCreated(evt), showDomain.ShowCreated)
			}, "Show created logged", evt)
		})

	case showDomain.ShowDeleted:
		sharedUtils.UnmarshalAndHandle(c.log, base.Data, func(evt sharedEvents.ShowDeleted) {
			c.withContext(ctx, evt.ID, func(ctx context.Context) error {
				if c.cache != nil {
					if err := c.cache.Delete(ctx, showDomain.ShowCacheKeyByID(evt.ID)); err != nil {
						c.log.Warn("Cache invalidation failed", zap.String("show_id", evt.ID.String()), zap.Error(err))
					}
				}
				deleted := &showDomain.TvShow{ID: evt.ID, Name: evt.Name, CreatedAt: base.Timestamp}
				return c.logBatch(ctx, deleted, showDomain.ShowDeleted)
			}, "Show deleted logged", evt)
		})

	default:
		c.log.Warn("Unknown show event type", zap.String("type", base.Type), zap.String("key", key))
	}
}

// logBatch no hace nada si analytics está desactivado.
func (c *ShowConsumer) logBatch(ctx context.Context, s *showDomain.TvShow, eventType string) error {
	if c.analytics == nil {
		return nil
	}
	return c.analytics.LogBatch(ctx, []*showDomain.TvShow{s}, eventType)
}

// withContext ejecuta action con un timeout propio y registra el resultado.
func (c *ShowConsumer) withContext(ctx context.Context, id uuid.UUID, action func(ctx context.Context) error, successMsg string, evt interface{}) {
	ctxShow, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	if err := action(ctxShow); err != nil {
		c.log.Warn("Failed to process show event",
			zap.String("show_id", id.String()),
			zap.Any("event", evt),
			zap.Error(err),
		)
		return
	}
	c.log.Info(successMsg, zap.String("show_id", id.String()))
}
