package query

import (
	"strings"
)

// ---------- Paginación / ordenamiento ----------

// OffsetPagination para paginación clásica. Limit 0 significa sin límite.
type OffsetPagination struct {
	Limit  int
	Offset int
}

// Clamp aplica el límite por defecto y el máximo permitido.
func (p OffsetPagination) Clamp(def, max int) OffsetPagination {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if max > 0 && p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Sort indica la ruta del atributo ("name", "price.amount") y la dirección.
type Sort struct {
	Field string
	Desc  bool
}

// ParseSort interpreta "name,-price.amount": un '-' delante invierte el orden.
func ParseSort(raw string) []Sort {
	var out []Sort
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s := Sort{Field: part}
		if strings.HasPrefix(part, "-") {
			s = Sort{Field: part[1:], Desc: true}
		}
		out = append(out, s)
	}
	return out
}
