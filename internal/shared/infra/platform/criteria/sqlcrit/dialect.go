package sqlcrit

import (
	"fmt"
	"strings"
)

// Dialect recoge las diferencias de sintaxis entre motores.
type Dialect struct {
	Name string

	placeholder func(n int) string
	// negación con lógica de dos valores: NULL cuenta como falso
	notOpen, notClose string
	// sin cláusula ESCAPE: el motor sólo entiende '\'
	backslashEscape bool
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		placeholder: func(int) string { return "?" },
		notOpen:     "(",
		notClose:    ") IS NOT TRUE",
	}

	Postgres = Dialect{
		Name:        "postgres",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		notOpen:     "(",
		notClose:    ") IS NOT TRUE",
	}

	ClickHouse = Dialect{
		Name:            "clickhouse",
		placeholder:     func(int) string { return "?" },
		notOpen:         "NOT ifNull(",
		notClose:        ", 0)",
		backslashEscape: true,
	}
)

// DialectByName devuelve el dialecto registrado con ese nombre.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case SQLite.Name:
		return SQLite, nil
	case Postgres.Name, "postgresql":
		return Postgres, nil
	case ClickHouse.Name:
		return ClickHouse, nil
	}
	return Dialect{}, fmt.Errorf("unknown sql dialect %q", name)
}

// Placeholder devuelve el marcador del parámetro n (desde 1).
func (d Dialect) Placeholder(n int) string { return d.placeholder(n) }

// toBackslash reescribe un patrón con escape propio al escape '\'. Sin
// escape, una '\' del patrón es un carácter literal.
func toBackslash(pattern string, escape rune) string {
	switch escape {
	case 0:
		return strings.ReplaceAll(pattern, `\`, `\\`)
	case '\\':
		return pattern
	}
	var sb strings.Builder
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			sb.WriteRune('\\')
			sb.WriteRune(r)
			escaped = false
		case r == escape:
			escaped = true
		case r == '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
