package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/segmentio/kafka-go"

	sharedBus "github.com/davicafu/hexaspec/internal/shared/infra/platform/bus"
)

// messageWriter es la parte de *kafka.Writer que usamos.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer   messageWriter
	hasTopic bool
	log      *zap.Logger
}

// NewKafkaPublisher publica en el topic del writer o, si no tiene, en el
// que indique el evento (sharedBus.Topicer).
func NewKafkaPublisher(writer *kafka.Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, hasTopic: writer.Topic != "", log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{Value: data}
	if keyer, ok := event.(sharedBus.Keyer); ok {
		msg.Key = []byte(keyer.PartitionKey())
	}
	if t, ok := event.(sharedBus.Topicer); ok && !p.hasTopic {
		msg.Topic = t.Topic()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.String("topic", msg.Topic), zap.Error(err))
		return err
	}

	p.log.Debug("Event published", zap.String("topic", msg.Topic), zap.ByteString("key", msg.Key))
	return nil
}

// Verificación estática
var _ sharedBus.EventBus = (*KafkaPublisher)(nil)
