package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/sqlcrit"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/mapping"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ShowAnalyticsRepo implementa ShowAnalyticsRepository para ClickHouse.
type ShowAnalyticsRepo struct {
	db       *sql.DB
	compiler *sqlcrit.Compiler
	now      func() time.Time
}

// NewShowAnalyticsRepo abre la conexión y comprueba que responde.
func NewShowAnalyticsRepo(addr string, dbName string) (*ShowAnalyticsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}
	return newShowAnalyticsRepo(conn)
}

func newShowAnalyticsRepo(db *sql.DB) (*ShowAnalyticsRepo, error) {
	c, err := sqlcrit.NewCompiler(mapping.AnalyticsModel(), sqlcrit.ClickHouse, mapping.ShowEntity)
	if err != nil {
		return nil, err
	}
	return &ShowAnalyticsRepo{db: db, compiler: c, now: time.Now}, nil
}

// LogBatch inserta un lote de series con el tipo de evento. ClickHouse
// funciona mejor con inserciones en lotes.
func (r *ShowAnalyticsRepo) LogBatch(ctx context.Context, shows []*showDomain.TvShow, eventType string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO shows_log (show_id, name, synopsis, genre_name, available_on_netflix, release_date, stars, price_amount, price_currency, created_at, event_type, event_time)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	eventTime := r.now().UTC()
	for _, s := range shows {
		if _, err := stmt.ExecContext(ctx, logRow(s, eventType, eventTime)...); err != nil {
			// Si un registro falla, hacemos rollback de todo el lote.
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for show %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

// logRow devuelve los valores de una fila de shows_log. Sin género,
// genre_name queda a NULL.
func logRow(s *showDomain.TvShow, eventType string, eventTime time.Time) []any {
	var genre *string
	if s.Genre != nil {
		genre = &s.Genre.Name
	}
	stars := make([]uint8, len(s.StarRatings))
	for i, sr := range s.StarRatings {
		stars[i] = uint8(sr.Stars)
	}
	return []any{
		s.ID, s.Name, s.Synopsis, genre, s.AvailableOnNetflix, s.ReleaseDate, stars,
		s.Price.Amount, s.Price.Currency, s.CreatedAt, eventType, eventTime,
	}
}

// CountMatching cuenta las filas del histórico de eventType que cumplen s.
// Las valoraciones sólo se guardan como array y no admiten joins.
func (r *ShowAnalyticsRepo) CountMatching(ctx context.Context, s spec.Specification[showDomain.TvShow], eventType string) (int64, error) {
	stmt, err := r.countStatement(s, eventType)
	if err != nil {
		return 0, err
	}
	var n uint64
	if err := r.db.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count shows_log: %w", err)
	}
	return int64(n), nil
}

func (r *ShowAnalyticsRepo) countStatement(s spec.Specification[showDomain.TvShow], eventType string) (sqlcrit.Statement, error) {
	return r.compiler.Count(spec.And(ofEventType(eventType), s))
}

// ofEventType filtra por la columna event_type, que no existe en el dominio.
func ofEventType(eventType string) spec.Specification[showDomain.TvShow] {
	if eventType == "" {
		return nil
	}
	return spec.Spec[showDomain.TvShow](false, "eventType = "+eventType, func(q spec.Query, cb spec.Builder) (spec.Predicate, error) {
		p, err := q.Root().Get(mapping.EventTypeAttr)
		if err != nil {
			return nil, err
		}
		return cb.Equal(p, eventType), nil
	})
}

func (r *ShowAnalyticsRepo) Close() error { return r.db.Close() }

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *ShowAnalyticsRepo) InitSchema(ctx context.Context) error {
	// Particionada por mes y ordenada por los campos de consulta habituales.
	query := `
		CREATE TABLE IF NOT EXISTS shows_log (
			show_id              UUID,
			name                 String,
			synopsis             String,
			genre_name           Nullable(String),
			available_on_netflix Bool,
			release_date         Nullable(String),
			stars                Array(UInt8),
			price_amount         Float64,
			price_currency       LowCardinality(String),
			created_at           DateTime64(3),
			event_type           LowCardinality(String),
			event_time           DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (event_type, genre_name, event_time)
		SETTINGS allow_nullable_key = 1;
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// Verificación estática de la interfaz.
var _ showDomain.ShowAnalyticsRepository = (*ShowAnalyticsRepo)(nil)
