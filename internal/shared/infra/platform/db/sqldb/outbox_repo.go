package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/davicafu/hexaspec/internal/shared/domain"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/sqlcrit"
	"github.com/google/uuid"
)

// OutboxRepo implementa domain.OutboxRepository para SQLite y PostgreSQL.
type OutboxRepo struct {
	db *sql.DB
	d  sqlcrit.Dialect
}

func NewOutboxRepo(db *sql.DB, d sqlcrit.Dialect) *OutboxRepo {
	return &OutboxRepo{db: db, d: d}
}

// InitOutboxSchema crea la tabla outbox si no existe.
func InitOutboxSchema(ctx context.Context, db *sql.DB, d sqlcrit.Dialect) error {
	t := TypesFor(d)
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS outbox (
		id %s PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload %s NOT NULL,
		created_at %s NOT NULL,
		processed %s NOT NULL DEFAULT FALSE
	)`, t.UUID, t.JSON, t.Time, t.Bool))
	if err != nil {
		return fmt.Errorf("failed to create outbox table: %w", err)
	}
	return nil
}

// FetchPendingOutbox obtiene los eventos no procesados por orden de creación.
func (r *OutboxRepo) FetchPendingOutbox(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, Rebind(r.d,
		`SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		 FROM outbox
		 WHERE processed = FALSE
		 ORDER BY created_at
		 LIMIT ?`), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		var evt domain.OutboxEvent
		var payload []byte

		if err := rows.Scan(&evt.ID, &evt.AggregateType, &evt.AggregateID, &evt.EventType, &payload, &evt.CreatedAt); err != nil {
			return nil, err
		}

		var decoded map[string]interface{}
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, fmt.Errorf("invalid JSON payload in outbox row %s: %w", evt.ID, err)
		}
		evt.Payload = decoded
		events = append(events, evt)
	}
	return events, rows.Err()
}

// MarkOutboxProcessed marca un evento como procesado.
func (r *OutboxRepo) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, Rebind(r.d, `UPDATE outbox SET processed = TRUE WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get RowsAffected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("outbox event not found: %s", id)
	}
	return nil
}

// InsertOutboxTx guarda evt dentro de la transacción del agregado.
func InsertOutboxTx(ctx context.Context, tx *sql.Tx, d sqlcrit.Dialect, evt domain.OutboxEvent) error {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = tx.ExecContext(ctx, Rebind(d,
		`INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at, processed)
		 VALUES (?, ?, ?, ?, ?, ?, FALSE)`),
		evt.ID, evt.AggregateType, evt.AggregateID, evt.EventType, string(payload), evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// Verificación en tiempo de compilación.
var _ domain.OutboxRepository = (*OutboxRepo)(nil)
