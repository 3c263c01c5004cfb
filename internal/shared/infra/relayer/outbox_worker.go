package relayer

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	sharedDomain "github.com/davicafu/hexaspec/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaspec/internal/shared/domain/events"
	sharedBus "github.com/davicafu/hexaspec/internal/shared/infra/platform/bus"
	"go.uber.org/zap"
)

// Worker procesa eventos pendientes de la tabla outbox de forma genérica.
// Cada evento se decodifica al contrato registrado y se publica dentro de
// un IntegrationEvent.
type Worker struct {
	repo          sharedDomain.OutboxRepository
	publisher     sharedBus.EventBus
	eventRegistry map[string]sharedEvents.EventMetadata
	interval      time.Duration
	batchSize     int
	log           *zap.Logger
}

func NewOutboxWorker(
	repo sharedDomain.OutboxRepository,
	publisher sharedBus.EventBus,
	registry map[string]sharedEvents.EventMetadata,
	interval time.Duration,
	batchSize int,
	log *zap.Logger,
) *Worker {
	return &Worker{
		repo:          repo,
		publisher:     publisher,
		eventRegistry: registry,
		interval:      interval,
		batchSize:     batchSize,
		log:           log,
	}
}

// Start bloquea hasta que ctx se cancela; lánzalo en su propia goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("Outbox worker started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch publica un lote y devuelve cuántos eventos quedaron marcados.
func (w *Worker) ProcessBatch(ctx context.Context) int {
	events, err := w.repo.FetchPendingOutbox(ctx, w.batchSize)
	if err != nil {
		w.log.Warn("Failed to fetch pending outbox events", zap.Error(err))
		return 0
	}
	if len(events) > 0 {
		w.log.Debug("Pending outbox events", zap.Int("count", len(events)))
	}

	published := 0
	for _, evt := range events {
		if w.publishAndMark(ctx, evt) {
			published++
		}
	}
	return published
}

func (w *Worker) publishAndMark(ctx context.Context, evt sharedDomain.OutboxEvent) bool {
	log := w.log.With(zap.String("event_id", evt.ID.String()), zap.String("event_type", evt.EventType))

	metadata, ok := w.eventRegistry[evt.EventType]
	if !ok {
		// Se queda pendiente: puede registrarlo una versión posterior.
		log.Error("Unknown event type in registry")
		return false
	}

	// 1. Decodificar el payload al contrato registrado
	payload := reflect.New(metadata.Type).Interface()
	raw, err := json.Marshal(evt.Payload)
	if err == nil {
		err = json.Unmarshal(raw, payload)
	}
	if err != nil {
		log.Error("Failed to decode event payload", zap.Error(err))
		return false
	}

	// 2. Publicar dentro del sobre común
	ie, err := sharedEvents.NewIntegrationEvent(evt.EventType, evt.AggregateID, metadata.Topic, payload)
	if err != nil {
		log.Error("Failed to build integration event", zap.Error(err))
		return false
	}
	ie.Timestamp = evt.CreatedAt
	if err := w.publisher.Publish(ctx, ie); err != nil {
		log.Warn("Failed to publish event", zap.Error(err))
		return false // se reintenta en el siguiente ciclo
	}

	// 3. Marcar como procesado
	if err := w.repo.MarkOutboxProcessed(ctx, evt.ID); err != nil {
		log.Warn("Failed to mark event as processed", zap.Error(err))
		return false
	}
	log.Debug("Event published")
	return true
}
