package events

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	sharedBus "github.com/davicafu/hexaspec/internal/shared/infra/platform/bus"
)

// InMemoryEventBus reparte cada evento, serializado a JSON, entre los
// suscriptores de un único topic. Si un suscriptor tiene el buffer lleno el
// mensaje se descarta para él.
type InMemoryEventBus struct {
	subscribers []chan []byte
	mu          sync.RWMutex
	topic       string
	log         *zap.Logger
}

var _ sharedBus.EventBus = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(topic string, log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{topic: topic, log: log}
}

func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		select {
		case sub <- payload:
		default:
			b.log.Warn("Subscriber buffer full, event dropped", zap.String("topic", b.topic))
		}
	}
	return nil
}

// Subscribe devuelve un canal que recibe el JSON de cada evento publicado.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []byte, bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Consume entrega los mensajes de ch al handler hasta que ctx se cancela.
func Consume(ctx context.Context, ch <-chan []byte, handler MessageHandler) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case payload := <-ch:
				handler.HandleMessage(ctx, "", payload)
			}
		}
	}()
}
