package sqlcrit

import (
	"fmt"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
)

// builder implementa spec.Builder produciendo nodos SQL.
type builder struct {
	q *query
}

var _ spec.Builder = (*builder)(nil)

func (b *builder) Conjunction() spec.Predicate { return alwaysTrue }
func (b *builder) Disjunction() spec.Predicate { return alwaysFalse }

// value convierte una entidad en su id cuando x es una FK.
func value(x spec.Expression, v any) (any, error) {
	c, ok := x.(column)
	if !ok || c.ref == nil {
		return v, nil
	}
	return meta.IDOf(c.ref, v)
}

func (b *builder) cmp(x spec.Expression, op string, v any) spec.Predicate {
	v, err := value(x, v)
	if err != nil {
		return failed{err: err}
	}
	return compare{x: x, op: op, v: v}
}

func (b *builder) Equal(x spec.Expression, v any) spec.Predicate    { return b.cmp(x, "=", v) }
func (b *builder) NotEqual(x spec.Expression, v any) spec.Predicate { return b.cmp(x, "<>", v) }

func (b *builder) In(x spec.Expression, values []any) spec.Predicate {
	if len(values) == 0 {
		return alwaysFalse
	}
	vs := make([]any, len(values))
	for i, v := range values {
		cv, err := value(x, v)
		if err != nil {
			return failed{err: err}
		}
		vs[i] = cv
	}
	return inList{x: x, vs: vs}
}

func (b *builder) LessThan(x spec.Expression, v any) spec.Predicate {
	return b.cmp(x, "<", v)
}
func (b *builder) LessThanOrEqualTo(x spec.Expression, v any) spec.Predicate {
	return b.cmp(x, "<=", v)
}
func (b *builder) GreaterThan(x spec.Expression, v any) spec.Predicate {
	return b.cmp(x, ">", v)
}
func (b *builder) GreaterThanOrEqualTo(x spec.Expression, v any) spec.Predicate {
	return b.cmp(x, ">=", v)
}

func (b *builder) Between(x spec.Expression, lo, hi any) spec.Predicate {
	return between{x: x, lo: lo, hi: hi}
}

func (b *builder) IsTrue(x spec.Expression) spec.Predicate    { return suffix{x: x, op: "= TRUE"} }
func (b *builder) IsFalse(x spec.Expression) spec.Predicate   { return suffix{x: x, op: "= FALSE"} }
func (b *builder) IsNull(x spec.Expression) spec.Predicate    { return suffix{x: x, op: "IS NULL"} }
func (b *builder) IsNotNull(x spec.Expression) spec.Predicate { return suffix{x: x, op: "IS NOT NULL"} }

// ---------------- Colecciones ----------------

func (b *builder) exists(x spec.Expression, not bool) (exists, error) {
	c, ok := x.(collection)
	if !ok {
		return exists{}, fmt.Errorf("%v is not a collection: %w", x, spec.ErrNotTraversable)
	}
	return exists{not: not, table: c.target.Table, alias: b.q.alias(), fk: c.fk, owner: c.owner}, nil
}

func (b *builder) IsEmpty(x spec.Expression) spec.Predicate {
	e, err := b.exists(x, true)
	if err != nil {
		return failed{err: err}
	}
	return e
}

func (b *builder) IsNotEmpty(x spec.Expression) spec.Predicate {
	e, err := b.exists(x, false)
	if err != nil {
		return failed{err: err}
	}
	return e
}

func (b *builder) member(elem any, x spec.Expression, not bool) spec.Predicate {
	e, err := b.exists(x, not)
	if err != nil {
		return failed{err: err}
	}
	target := x.(collection).target
	id, err := meta.IDOf(target, elem)
	if err != nil {
		return failed{err: err}
	}
	e.idColumn = target.IDAttr().Column
	e.id = id
	return e
}

func (b *builder) IsMember(elem any, x spec.Expression) spec.Predicate {
	return b.member(elem, x, false)
}

func (b *builder) IsNotMember(elem any, x spec.Expression) spec.Predicate {
	return b.member(elem, x, true)
}

// ---------------- Patrones ----------------

func (b *builder) Like(x spec.Expression, pattern string, escape rune) spec.Predicate {
	return like{x: x, pattern: pattern, escape: escape}
}

func (b *builder) NotLike(x spec.Expression, pattern string, escape rune) spec.Predicate {
	return like{x: x, pattern: pattern, escape: escape, not: true}
}

func (b *builder) Lower(x spec.Expression) spec.Expression { return lower{x: x} }

// ---------------- Lógica ----------------

func (b *builder) And(x, y spec.Predicate) spec.Predicate { return logic{op: "AND", a: x, b: y} }
func (b *builder) Or(x, y spec.Predicate) spec.Predicate  { return logic{op: "OR", a: x, b: y} }
func (b *builder) Not(p spec.Predicate) spec.Predicate    { return negate{p: p} }
