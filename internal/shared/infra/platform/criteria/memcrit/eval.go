// Package memcrit evalúa especificaciones sobre structs en memoria con la
// misma semántica que el backend SQL: joins INNER/LEFT, colecciones que
// multiplican filas, NULL que no cumple comparaciones y DISTINCT opcional.
package memcrit

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
)

// Sort ordena por la ruta de un atributo escalar de la raíz.
type Sort struct {
	Field string
	Desc  bool
}

// Options configura Select.
type Options struct {
	Sort   []Sort
	Limit  int // 0 = sin límite
	Offset int
}

// Evaluator aplica especificaciones a instancias de una entidad raíz.
type Evaluator struct {
	model  *meta.Model
	entity *meta.Entity
}

func NewEvaluator(m *meta.Model, entity string) (*Evaluator, error) {
	e, err := m.Entity(entity)
	if err != nil {
		return nil, err
	}
	return &Evaluator{model: m, entity: e}, nil
}

// match devuelve, por cada elemento, cuántas tuplas cumplen f.
func (e *Evaluator) match(items reflect.Value, f spec.Filter) ([]int, error) {
	q := newQuery(e.model, e.entity)
	var p pred = func(row) tri { return yes }
	if f != nil {
		b := &builder{q: q}
		sp, err := f.ToPredicate(q, b)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", e.entity.Name, err)
		}
		p = b.pred(sp)
	}
	if q.err != nil {
		return nil, q.err
	}

	hits := make([]int, items.Len())
	for i := range hits {
		q.expand(row{items.Index(i)}, 0, func(r row) {
			if p(r) == yes {
				hits[i]++
			}
		})
		if q.err != nil {
			return nil, q.err
		}
	}
	return hits, nil
}

// Filter devuelve los elementos que cumplen f. Sin Distinct un elemento
// aparece una vez por cada tupla de join que cumpla.
func Filter[T any](e *Evaluator, items []T, f spec.Filter) ([]T, error) {
	hits, err := e.match(reflect.ValueOf(items), f)
	if err != nil {
		return nil, err
	}
	distinct := f != nil && f.Distinct()
	out := make([]T, 0, len(items))
	for i, n := range hits {
		if distinct && n > 0 {
			n = 1
		}
		for range n {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// Count cuenta las filas que devolvería Filter.
func Count[T any](e *Evaluator, items []T, f spec.Filter) (int, error) {
	out, err := Filter(e, items, f)
	return len(out), err
}

// Matches indica si item cumple f en al menos una tupla.
func Matches[T any](e *Evaluator, item T, f spec.Filter) (bool, error) {
	hits, err := e.match(reflect.ValueOf([]T{item}), f)
	if err != nil {
		return false, err
	}
	return hits[0] > 0, nil
}

// Select filtra, ordena y pagina.
func Select[T any](e *Evaluator, items []T, f spec.Filter, opts Options) ([]T, error) {
	out, err := Filter(e, items, f)
	if err != nil {
		return nil, err
	}
	if len(opts.Sort) > 0 {
		if err := e.sort(out, opts.Sort); err != nil {
			return nil, err
		}
	}
	if opts.Offset > 0 {
		out = out[min(opts.Offset, len(out)):]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// sort ordena de forma estable; NULL va primero en orden ascendente.
func (e *Evaluator) sort(items any, sorts []Sort) error {
	scalars := e.model.Scalars(e.entity)
	attrs := make([]meta.Attribute, len(sorts))
	for i, s := range sorts {
		idx := slices.IndexFunc(scalars, func(a meta.Attribute) bool { return a.Name == s.Field })
		if idx < 0 {
			return fmt.Errorf("sort %s: %w", s.Field, spec.ErrUnknownAttribute)
		}
		attrs[i] = scalars[idx]
	}

	rv := reflect.ValueOf(items)
	keys := make([][]any, rv.Len())
	for i := range keys {
		keys[i] = make([]any, len(attrs))
		for j, a := range attrs {
			fv, err := meta.FieldOf(rv.Index(i), a)
			if err != nil {
				return fmt.Errorf("sort %s: %w", sorts[j].Field, err)
			}
			if v, ok := plain(fv); ok {
				keys[i][j] = v
			}
		}
	}

	perm := make([]int, rv.Len())
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(x, y int) int {
		for j, s := range sorts {
			c := compareNullsFirst(keys[x][j], keys[y][j])
			if s.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	sorted := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	for i, p := range perm {
		sorted.Index(i).Set(rv.Index(p))
	}
	reflect.Copy(rv, sorted)
	return nil
}

func compareNullsFirst(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	c, _ := compare(a, b)
	return c
}
