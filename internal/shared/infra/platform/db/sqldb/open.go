// Package sqldb reúne lo común a los repositorios database/sql: apertura de
// conexiones, tipos de columna por dialecto y la tabla outbox.
package sqldb

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/sqlcrit"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL
	_ "modernc.org/sqlite"             // Driver de SQLite sin cgo
)

// OpenSQLite abre path (o ":memory:") con LIKE sensible a mayúsculas, como
// en PostgreSQL. SQLite admite un único escritor: una sola conexión.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=case_sensitive_like(1)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// OpenPostgres abre una conexión con el driver pgx.
func OpenPostgres(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Types son los tipos de columna de cada motor.
type Types struct {
	UUID, Text, Bool, Int, Float, Time, JSON string
}

// TypesFor devuelve los tipos de columna del dialecto.
func TypesFor(d sqlcrit.Dialect) Types {
	if d.Name == sqlcrit.Postgres.Name {
		return Types{UUID: "UUID", Text: "TEXT", Bool: "BOOLEAN", Int: "INTEGER", Float: "DOUBLE PRECISION", Time: "TIMESTAMPTZ", JSON: "JSONB"}
	}
	return Types{UUID: "TEXT", Text: "TEXT", Bool: "BOOLEAN", Int: "INTEGER", Float: "REAL", Time: "DATETIME", JSON: "TEXT"}
}

// Rebind sustituye los '?' de q por los marcadores del dialecto.
func Rebind(d sqlcrit.Dialect, q string) string {
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteString(d.Placeholder(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
