package bus

import "context"

// Keyer lo implementan los eventos que fijan la clave de partición.
type Keyer interface {
	PartitionKey() string
}

// Topicer lo implementan los eventos que deciden su topic. Si el adapter
// tiene un topic fijo, éste manda.
type Topicer interface {
	Topic() string
}

// La semántica de topic/nombre y formato del payload la decides en los adapters.
type EventBus interface {
	Publish(ctx context.Context, event interface{}) error
}

// PublisherFunc adapta una función a EventBus.
type PublisherFunc func(ctx context.Context, event interface{}) error

func (f PublisherFunc) Publish(ctx context.Context, event interface{}) error { return f(ctx, event) }
