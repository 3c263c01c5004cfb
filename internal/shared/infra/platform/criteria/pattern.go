// Package criteria agrupa los backends que ejecutan especificaciones
// (sqlcrit, memcrit, mongocrit) y las utilidades que comparten.
package criteria

import (
	"regexp"
	"strings"
)

// LikeRegexp traduce un patrón LIKE a una expresión regular anclada:
// % es cualquier secuencia, _ un carácter y escape vuelve literal el
// siguiente carácter (0 = sin escape).
func LikeRegexp(pattern string, escape rune) string {
	var sb strings.Builder
	sb.WriteString("^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			sb.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case escape != 0 && r == escape:
			escaped = true
		case r == '%':
			sb.WriteString(".*")
		case r == '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}
