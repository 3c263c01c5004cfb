// Package sqldb implementa el repositorio de series sobre database/sql
// para SQLite y PostgreSQL; el dialecto decide marcadores y tipos.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sharedDomain "github.com/davicafu/hexaspec/internal/shared/domain"
	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/sqlcrit"
	sharedSQL "github.com/davicafu/hexaspec/internal/shared/infra/platform/db/sqldb"
	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/mapping"
	"github.com/google/uuid"
)

// showColumns son las columnas de tv_shows en el orden de scanShow.
var showColumns = []string{
	"id", "genre_id", "name", "synopsis", "available_on_netflix",
	"release_date", "price_amount", "price_currency", "created_at",
}

// ShowRepoSQL implementa ShowRepository con outbox transaccional.
type ShowRepoSQL struct {
	db       *sql.DB
	d        sqlcrit.Dialect
	compiler *sqlcrit.Compiler
}

func NewShowRepoSQL(db *sql.DB, d sqlcrit.Dialect) (*ShowRepoSQL, error) {
	c, err := sqlcrit.NewCompiler(mapping.Model(), d, mapping.ShowEntity)
	if err != nil {
		return nil, err
	}
	return &ShowRepoSQL{db: db, d: d, compiler: c}, nil
}

// Compiler expone el compilador para mostrar el SQL generado.
func (r *ShowRepoSQL) Compiler() *sqlcrit.Compiler { return r.compiler }

func (r *ShowRepoSQL) q(query string) string { return sharedSQL.Rebind(r.d, query) }

// ------------------ CRUD + Outbox ------------------

// Create inserta la serie, su género, sus valoraciones y el evento en una
// transacción. Un género ya existente se reutiliza.
func (r *ShowRepoSQL) Create(ctx context.Context, s *showDomain.TvShow, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback() // Se ignora si el Commit() es exitoso

	var exists int
	err = tx.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM tv_shows WHERE id = ?`), s.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if exists > 0 {
		return showDomain.ErrShowAlreadyExists
	}

	var genreID uuid.NullUUID
	if s.Genre != nil {
		genreID = uuid.NullUUID{UUID: s.Genre.ID, Valid: true}
		if _, err := tx.ExecContext(ctx,
			r.q(`INSERT INTO genres (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`),
			s.Genre.ID, s.Genre.Name,
		); err != nil {
			return fmt.Errorf("failed to insert genre: %w", err)
		}
		for _, sr := range s.Genre.StarRatings {
			if err := r.insertRating(ctx, tx, sr, "genre_id", s.Genre.ID); err != nil {
				return err
			}
		}
	}

	_, err = tx.ExecContext(ctx, r.q(`
		INSERT INTO tv_shows (id, genre_id, name, synopsis, available_on_netflix, release_date, price_amount, price_currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		s.ID, genreID, s.Name, s.Synopsis, s.AvailableOnNetflix, s.ReleaseDate, s.Price.Amount, s.Price.Currency, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert show: %w", err)
	}
	for _, sr := range s.StarRatings {
		if err := r.insertRating(ctx, tx, sr, "tv_show_id", s.ID); err != nil {
			return err
		}
	}

	if err := sharedSQL.InsertOutboxTx(ctx, tx, r.d, evt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ShowRepoSQL) insertRating(ctx context.Context, tx *sql.Tx, sr showDomain.StarRating, owner string, ownerID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		r.q(`INSERT INTO star_ratings (id, stars, `+owner+`) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`),
		sr.ID, sr.Stars, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert star rating: %w", err)
	}
	return nil
}

// DeleteByID elimina la serie y sus valoraciones; el género se conserva.
func (r *ShowRepoSQL) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM star_ratings WHERE tv_show_id = ?`), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	res, err := tx.ExecContext(ctx, r.q(`DELETE FROM tv_shows WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return showDomain.ErrShowNotFound
	}

	if err := sharedSQL.InsertOutboxTx(ctx, tx, r.d, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}
	return tx.Commit()
}

// ------------------ Lectura ------------------

func (r *ShowRepoSQL) GetByID(ctx context.Context, id uuid.UUID) (*showDomain.TvShow, error) {
	return r.FindOne(ctx, spec.Equal(showDomain.ShowID, id))
}

// FindAll ejecuta la especificación sobre tv_shows y completa género y
// valoraciones con dos consultas más.
func (r *ShowRepoSQL) FindAll(ctx context.Context, s spec.Specification[showDomain.TvShow], page sharedQuery.OffsetPagination, sort []sharedQuery.Sort) ([]*showDomain.TvShow, error) {
	opts := sqlcrit.Options{Columns: showColumns, Limit: page.Limit, Offset: page.Offset}
	for _, o := range sortOrDefault(sort) {
		opts.Sort = append(opts.Sort, sqlcrit.Sort{Field: o.Field, Desc: o.Desc})
	}
	stmt, err := r.compiler.Select(filter(s), opts)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("find shows: %w", err)
	}
	defer rows.Close()

	var shows []*showDomain.TvShow
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, show)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, shows); err != nil {
		return nil, err
	}
	return shows, nil
}

func (r *ShowRepoSQL) FindOne(ctx context.Context, s spec.Specification[showDomain.TvShow]) (*showDomain.TvShow, error) {
	shows, err := r.FindAll(ctx, s, sharedQuery.OffsetPagination{}, nil)
	if err != nil {
		return nil, err
	}
	return showDomain.SingleResult(shows)
}

func (r *ShowRepoSQL) Count(ctx context.Context, s spec.Specification[showDomain.TvShow]) (int64, error) {
	stmt, err := r.compiler.Count(filter(s))
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count shows: %w", err)
	}
	return n, nil
}

func scanShow(rows *sql.Rows) (*showDomain.TvShow, error) {
	var s showDomain.TvShow
	var genreID uuid.NullUUID
	var release sql.NullString
	err := rows.Scan(&s.ID, &genreID, &s.Name, &s.Synopsis, &s.AvailableOnNetflix,
		&release, &s.Price.Amount, &s.Price.Currency, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db scan error: %w", err)
	}
	if genreID.Valid {
		s.Genre = &showDomain.Genre{ID: genreID.UUID}
	}
	if release.Valid {
		s.ReleaseDate = &release.String
	}
	return &s, nil
}

// hydrate carga nombres de género y valoraciones de las series leídas. Las
// filas repetidas de un join sin distinct comparten los mismos datos.
func (r *ShowRepoSQL) hydrate(ctx context.Context, shows []*showDomain.TvShow) error {
	if len(shows) == 0 {
		return nil
	}
	showIDs := map[uuid.UUID][]*showDomain.TvShow{}
	genreIDs := map[uuid.UUID][]*showDomain.Genre{}
	for _, s := range shows {
		showIDs[s.ID] = append(showIDs[s.ID], s)
		if s.Genre != nil {
			genreIDs[s.Genre.ID] = append(genreIDs[s.Genre.ID], s.Genre)
		}
	}

	if len(genreIDs) > 0 {
		ids := keys(genreIDs)
		rows, err := r.db.QueryContext(ctx, r.q(`SELECT id, name FROM genres WHERE id IN (`+marks(len(ids))+`)`), ids...)
		if err != nil {
			return fmt.Errorf("load genres: %w", err)
		}
		for rows.Next() {
			var id uuid.UUID
			var name string
			if err := rows.Scan(&id, &name); err != nil {
				rows.Close()
				return err
			}
			for _, g := range genreIDs[id] {
				g.Name = name
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
	}

	ids := append(keys(showIDs), keys(genreIDs)...)
	n := len(showIDs)
	query := `SELECT id, stars, tv_show_id, genre_id FROM star_ratings WHERE tv_show_id IN (` + marks(n) + `)`
	if len(genreIDs) > 0 {
		query += ` OR genre_id IN (` + marks(len(genreIDs)) + `)`
	}
	rows, err := r.db.QueryContext(ctx, r.q(query+` ORDER BY stars, id`), ids...)
	if err != nil {
		return fmt.Errorf("load star ratings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sr showDomain.StarRating
		var showID, genreID uuid.NullUUID
		if err := rows.Scan(&sr.ID, &sr.Stars, &showID, &genreID); err != nil {
			return err
		}
		if showID.Valid {
			for _, s := range showIDs[showID.UUID] {
				s.StarRatings = append(s.StarRatings, sr)
			}
		}
		if genreID.Valid {
			for _, g := range genreIDs[genreID.UUID] {
				g.StarRatings = append(g.StarRatings, sr)
			}
		}
	}
	return rows.Err()
}

// ------------------ Inicialización del Esquema ------------------

// InitSchema crea las tablas del catálogo y la outbox si no existen.
func (r *ShowRepoSQL) InitSchema(ctx context.Context) error {
	t := sharedSQL.TypesFor(r.d)
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS genres (
			id %s PRIMARY KEY,
			name TEXT NOT NULL
		)`, t.UUID),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tv_shows (
			id %[1]s PRIMARY KEY,
			genre_id %[1]s REFERENCES genres(id),
			name TEXT NOT NULL,
			synopsis TEXT NOT NULL DEFAULT '',
			available_on_netflix %[2]s NOT NULL DEFAULT FALSE,
			release_date TEXT,
			price_amount %[3]s NOT NULL DEFAULT 0,
			price_currency TEXT NOT NULL DEFAULT '',
			created_at %[4]s NOT NULL
		)`, t.UUID, t.Bool, t.Float, t.Time),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS star_ratings (
			id %[1]s PRIMARY KEY,
			stars %[2]s NOT NULL,
			tv_show_id %[1]s REFERENCES tv_shows(id) ON DELETE CASCADE,
			genre_id %[1]s REFERENCES genres(id)
		)`, t.UUID, t.Int),
		`CREATE INDEX IF NOT EXISTS idx_star_ratings_show ON star_ratings (tv_show_id)`,
		`CREATE INDEX IF NOT EXISTS idx_star_ratings_genre ON star_ratings (genre_id)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return sharedSQL.InitOutboxSchema(ctx, r.db, r.d)
}

// ------------------ Helpers ------------------

func filter(s spec.Specification[showDomain.TvShow]) spec.Filter {
	if s == nil {
		return nil
	}
	return s
}

func sortOrDefault(sort []sharedQuery.Sort) []sharedQuery.Sort {
	if len(sort) == 0 {
		return []sharedQuery.Sort{{Field: "createdAt"}, {Field: "id"}}
	}
	return sort
}

func marks(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func keys[V any](m map[uuid.UUID]V) []any {
	out := make([]any, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Verificación en tiempo de compilación.
var _ showDomain.ShowRepository = (*ShowRepoSQL)(nil)
