package events

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Base de todos los eventos de integración
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"` // id del agregado
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"` // contenido específico del evento

	topic string
}

// NewIntegrationEvent serializa data dentro del sobre común.
func NewIntegrationEvent(eventType, key, topic string, data interface{}) (IntegrationEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return IntegrationEvent{}, fmt.Errorf("marshal %s: %w", eventType, err)
	}
	return IntegrationEvent{
		Type:      eventType,
		Key:       key,
		Timestamp: time.Now().UTC(),
		Data:      raw,
		topic:     topic,
	}, nil
}

func (e IntegrationEvent) PartitionKey() string { return e.Key }

func (e IntegrationEvent) Topic() string { return e.topic }

// EventMetadata asocia un tipo de evento con su contrato y su topic.
type EventMetadata struct {
	Type  reflect.Type
	Topic string
}

// MergeRegistries une los registros de varios contextos. Un tipo repetido
// es un error de programación.
func MergeRegistries(registries ...map[string]EventMetadata) map[string]EventMetadata {
	out := make(map[string]EventMetadata)
	for _, r := range registries {
		for k, v := range r {
			if _, dup := out[k]; dup {
				panic(fmt.Sprintf("events: duplicated event type %s", k))
			}
			out[k] = v
		}
	}
	return out
}
