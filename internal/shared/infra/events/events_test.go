package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/hexaspec/internal/shared/domain/events"
)

type recordingHandler struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (h *recordingHandler) HandleMessage(_ context.Context, _ string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, payload)
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.msgs)
}

func TestInMemoryEventBus_PublishConsume(t *testing.T) {
	bus := NewInMemoryEventBus("show", zap.NewNop())
	ch := bus.Subscribe(4)
	h := &recordingHandler{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	Consume(ctx, ch, h)

	ie, err := sharedEvents.NewIntegrationEvent("show.created", "k", "show", map[string]string{"name": "x"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, ie))

	assert.Eventually(t, func() bool { return h.count() == 1 }, time.Second, 5*time.Millisecond)

	var got sharedEvents.IntegrationEvent
	require.NoError(t, json.Unmarshal(h.msgs[0], &got))
	assert.Equal(t, "show.created", got.Type)
	assert.JSONEq(t, `{"name":"x"}`, string(got.Data))
}

func TestInMemoryEventBus_FullBufferDrops(t *testing.T) {
	bus := NewInMemoryEventBus("show", zap.NewNop())
	ch := bus.Subscribe(1)

	require.NoError(t, bus.Publish(context.Background(), "a"))
	require.NoError(t, bus.Publish(context.Background(), "b"))

	assert.Len(t, ch, 1)
	assert.Equal(t, `"a"`, string(<-ch))
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaPublisher_KeyAndTopic(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, log: zap.NewNop()}

	ie, err := sharedEvents.NewIntegrationEvent("show.created", "show-1", "show", struct{}{})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), ie))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "show-1", string(w.msgs[0].Key))
	assert.Equal(t, "show", w.msgs[0].Topic)

	p.hasTopic = true
	require.NoError(t, p.Publish(context.Background(), ie))
	assert.Empty(t, w.msgs[1].Topic)
}
