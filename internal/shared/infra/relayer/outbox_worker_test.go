package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	sharedDomain "github.com/davicafu/hexaspec/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaspec/internal/shared/domain/events"
	sharedBus "github.com/davicafu/hexaspec/internal/shared/infra/platform/bus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/hexaspec/tests/mocks"
)

const showCreated = "show.created"

func registry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		showCreated: {Type: reflect.TypeOf(sharedEvents.ShowCreated{}), Topic: "show"},
	}
}

func TestOutboxWorker_ProcessBatch_Success(t *testing.T) {
	// Arrange
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	showID := uuid.New()
	evt := sharedDomain.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: showID.String(),
		EventType:   showCreated,
		Payload:     map[string]interface{}{"id": showID.String(), "name": "Hemlock Grove"},
		CreatedAt:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{evt}, nil).Once()
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.IntegrationEvent")).Return(nil).Once()
	repo.On("MarkOutboxProcessed", mock.Anything, evt.ID).Return(nil).Once()

	worker := NewOutboxWorker(repo, publisher, registry(), time.Second, 10, zap.NewNop())

	// Act
	n := worker.ProcessBatch(context.Background())

	// Assert
	assert.Equal(t, 1, n)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)

	ie := publisher.Calls[0].Arguments.Get(1).(sharedEvents.IntegrationEvent)
	assert.Equal(t, showCreated, ie.Type)
	assert.Equal(t, showID.String(), ie.PartitionKey())
	assert.Equal(t, "show", ie.Topic())
	assert.Equal(t, evt.CreatedAt, ie.Timestamp)

	var got sharedEvents.ShowCreated
	require.NoError(t, json.Unmarshal(ie.Data, &got))
	assert.Equal(t, showID, got.ID)
	assert.Equal(t, "Hemlock Grove", got.Name)
}

func TestOutboxWorker_ProcessBatch_PublisherFails(t *testing.T) {
	// Arrange
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)
	evt := sharedDomain.OutboxEvent{ID: uuid.New(), EventType: showCreated, Payload: map[string]interface{}{}}

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{evt}, nil).Once()
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("kafka is down")).Once()

	worker := NewOutboxWorker(repo, publisher, registry(), time.Second, 10, zap.NewNop())

	// Act
	n := worker.ProcessBatch(context.Background())

	// Assert
	assert.Zero(t, n)
	publisher.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkOutboxProcessed", mock.Anything, mock.Anything)
}

func TestOutboxWorker_ProcessBatch_UnknownEventType(t *testing.T) {
	// Arrange
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)
	evt := sharedDomain.OutboxEvent{ID: uuid.New(), EventType: "unregistered.event", Payload: map[string]interface{}{}}

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{evt}, nil).Once()

	worker := NewOutboxWorker(repo, publisher, registry(), time.Second, 10, zap.NewNop())

	// Act
	worker.ProcessBatch(context.Background())

	// Assert
	repo.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkOutboxProcessed", mock.Anything, mock.Anything)
}

func TestOutboxWorker_ProcessBatch_FetchFails(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)
	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent(nil), errors.New("db down")).Once()

	worker := NewOutboxWorker(repo, publisher, registry(), time.Second, 10, zap.NewNop())

	assert.Zero(t, worker.ProcessBatch(context.Background()))
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOutboxWorker_StartStopsOnCancel(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{}, nil).Maybe()

	worker := NewOutboxWorker(repo, new(mocks.MockPublisher), registry(), time.Millisecond, 10, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

// Verificación estática de que los mocks cumplen las interfaces.
var _ sharedDomain.OutboxRepository = (*mocks.MockOutboxRepository)(nil)
var _ sharedBus.EventBus = (*mocks.MockPublisher)(nil)
