package mongodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/davicafu/hexaspec/internal/shared/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OutboxCollection es la colección compartida de eventos pendientes.
const OutboxCollection = "outbox"

// OutboxRepoMongoDB implementa domain.OutboxRepository.
type OutboxRepoMongoDB struct {
	coll *mongo.Collection
}

func NewOutboxRepoMongoDB(db *mongo.Database) *OutboxRepoMongoDB {
	return &OutboxRepoMongoDB{coll: db.Collection(OutboxCollection)}
}

// outboxDocument es el documento BSON; el dominio no lleva tags de bson.
type outboxDocument struct {
	ID            uuid.UUID   `bson:"_id"`
	AggregateType string      `bson:"aggregateType"`
	AggregateID   string      `bson:"aggregateId"`
	EventType     string      `bson:"eventType"`
	Payload       bson.M      `bson:"payload"`
	CreatedAt     time.Time   `bson:"createdAt"`
	Processed     bool        `bson:"processed"`
}

// FetchPendingOutbox obtiene los eventos no procesados por orden de creación.
func (r *OutboxRepoMongoDB) FetchPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"processed": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []domain.OutboxEvent
	for cursor.Next(ctx) {
		var doc outboxDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		events = append(events, domain.OutboxEvent{
			ID:            doc.ID,
			AggregateType: doc.AggregateType,
			AggregateID:   doc.AggregateID,
			EventType:     doc.EventType,
			Payload:       map[string]interface{}(doc.Payload),
			CreatedAt:     doc.CreatedAt,
			Processed:     doc.Processed,
		})
	}
	return events, cursor.Err()
}

// MarkOutboxProcessed marca un evento como procesado.
func (r *OutboxRepoMongoDB) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"processed": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("outbox event not found: %s", id)
	}
	return nil
}

// InsertOutbox guarda evt; dentro de una sesión usa su contexto. El payload
// se guarda con las claves JSON del contrato para que el relayer lo lea
// igual que desde SQL.
func InsertOutbox(ctx context.Context, coll *mongo.Collection, evt domain.OutboxEvent) error {
	var payload bson.M
	raw, err := json.Marshal(evt.Payload)
	if err == nil {
		err = json.Unmarshal(raw, &payload)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = coll.InsertOne(ctx, outboxDocument{
		ID:            evt.ID,
		AggregateType: evt.AggregateType,
		AggregateID:   evt.AggregateID,
		EventType:     evt.EventType,
		Payload:       payload,
		CreatedAt:     evt.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// Verificación en tiempo de compilación.
var _ domain.OutboxRepository = (*OutboxRepoMongoDB)(nil)
