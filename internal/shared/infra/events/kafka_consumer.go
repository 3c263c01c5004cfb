package events

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler lo implementa cualquier consumidor de eventos.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// ConsumerAdapter lee de Kafka y delega cada mensaje en el handler. El
// offset se confirma después de procesar el mensaje (al menos una vez).
type ConsumerAdapter struct {
	reader  *kafka.Reader
	handler MessageHandler
	log     *zap.Logger
}

func NewConsumerAdapter(reader *kafka.Reader, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{reader: reader, handler: handler, log: log}
}

// Start lanza Run en su propia goroutine.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	go func() {
		if err := c.Run(ctx); err != nil {
			c.log.Error("Kafka consumer aborted", zap.Error(err))
		}
	}()
}

// Run consume hasta que ctx se cancela. Sólo devuelve error si no se puede
// confirmar un offset.
func (c *ConsumerAdapter) Run(ctx context.Context) error {
	cfg := c.reader.Config()
	log := c.log.With(zap.String("topic", cfg.Topic), zap.String("group", cfg.GroupID))
	log.Info("Kafka consumer started", zap.Strings("brokers", cfg.Brokers))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Kafka consumer stopped")
				return nil
			}
			log.Error("Error fetching Kafka message", zap.Error(err))
			continue
		}

		c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		log.Debug("Kafka message committed", zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))
	}
}
