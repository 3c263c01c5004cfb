package memcrit

import (
	"fmt"
	"regexp"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// pred evalúa una condición sobre una tupla.
type pred func(r row) tri

// expr calcula un valor derivado (lower).
type expr func(r row) (any, bool)

// builder implementa spec.Builder con closures sobre tuplas. Los errores de
// construcción quedan en la consulta y se devuelven al terminar.
type builder struct {
	q *query
}

var _ spec.Builder = (*builder)(nil)

func (b *builder) value(x spec.Expression) expr {
	switch v := x.(type) {
	case path:
		return v.eval
	case expr:
		return v
	}
	b.q.fail(fmt.Errorf("memcrit: %T is not a value: %w", x, spec.ErrNotTraversable))
	return func(row) (any, bool) { return nil, false }
}

// operand convierte una entidad en su id cuando x es un to-one.
func (b *builder) operand(x spec.Expression, v any) any {
	p, ok := x.(path)
	if !ok || p.ref == nil {
		return v
	}
	id, err := meta.IDOf(p.ref, v)
	if err != nil {
		b.q.fail(err)
	}
	return id
}

func (b *builder) pred(p spec.Predicate) pred {
	if fn, ok := p.(pred); ok {
		return fn
	}
	b.q.fail(fmt.Errorf("memcrit: foreign predicate %T: %w", p, spec.ErrUnsupported))
	return func(row) tri { return unknown }
}

func (b *builder) Conjunction() spec.Predicate { return pred(func(row) tri { return yes }) }
func (b *builder) Disjunction() spec.Predicate { return pred(func(row) tri { return no }) }

func (b *builder) cmp(x spec.Expression, v any, test func(c int) bool) spec.Predicate {
	val := b.value(x)
	want := b.operand(x, v)
	return pred(func(r row) tri {
		got, ok := val(r)
		if !ok {
			return unknown
		}
		c, ok := compare(got, want)
		if !ok {
			return unknown
		}
		return truth(test(c))
	})
}

func (b *builder) Equal(x spec.Expression, v any) spec.Predicate {
	return b.cmp(x, v, func(c int) bool { return c == 0 })
}
func (b *builder) NotEqual(x spec.Expression, v any) spec.Predicate {
	return b.cmp(x, v, func(c int) bool { return c != 0 })
}
func (b *builder) LessThan(x spec.Expression, v any) spec.Predicate {
	return b.cmp(x, v, func(c int) bool { return c < 0 })
}
func (b *builder) LessThanOrEqualTo(x spec.Expression, v any) spec.Predicate {
	return b.cmp(x, v, func(c int) bool { return c <= 0 })
}
func (b *builder) GreaterThan(x spec.Expression, v any) spec.Predicate {
	return b.cmp(x, v, func(c int) bool { return c > 0 })
}
func (b *builder) GreaterThanOrEqualTo(x spec.Expression, v any) spec.Predicate {
	return b.cmp(x, v, func(c int) bool { return c >= 0 })
}

func (b *builder) In(x spec.Expression, values []any) spec.Predicate {
	if len(values) == 0 {
		return b.Disjunction()
	}
	preds := make([]pred, len(values))
	for i, v := range values {
		preds[i] = b.pred(b.Equal(x, v))
	}
	return pred(func(r row) tri {
		acc := no
		for _, p := range preds {
			acc = or3(acc, p(r))
		}
		return acc
	})
}

func (b *builder) Between(x spec.Expression, lo, hi any) spec.Predicate {
	ge := b.pred(b.GreaterThanOrEqualTo(x, lo))
	le := b.pred(b.LessThanOrEqualTo(x, hi))
	return pred(func(r row) tri { return and3(ge(r), le(r)) })
}

func (b *builder) IsTrue(x spec.Expression) spec.Predicate  { return b.Equal(x, true) }
func (b *builder) IsFalse(x spec.Expression) spec.Predicate { return b.Equal(x, false) }

func (b *builder) IsNull(x spec.Expression) spec.Predicate {
	val := b.value(x)
	return pred(func(r row) tri {
		_, ok := val(r)
		return truth(!ok)
	})
}

func (b *builder) IsNotNull(x spec.Expression) spec.Predicate {
	val := b.value(x)
	return pred(func(r row) tri {
		_, ok := val(r)
		return truth(ok)
	})
}

// ---------------- Colecciones ----------------

func (b *builder) collection(x spec.Expression) (collection, bool) {
	c, ok := x.(collection)
	if !ok {
		b.q.fail(fmt.Errorf("%v is not a collection: %w", x, spec.ErrNotTraversable))
	}
	return c, ok
}

func (b *builder) IsEmpty(x spec.Expression) spec.Predicate {
	c, ok := b.collection(x)
	if !ok {
		return b.Disjunction()
	}
	return pred(func(r row) tri { return truth(len(c.elems(r)) == 0) })
}

func (b *builder) IsNotEmpty(x spec.Expression) spec.Predicate {
	c, ok := b.collection(x)
	if !ok {
		return b.Disjunction()
	}
	return pred(func(r row) tri { return truth(len(c.elems(r)) > 0) })
}

func (b *builder) member(elem any, x spec.Expression) func(r row) bool {
	c, ok := b.collection(x)
	if !ok {
		return func(row) bool { return false }
	}
	want, err := meta.IDOf(c.target, elem)
	if err != nil {
		b.q.fail(err)
		return func(row) bool { return false }
	}
	return func(r row) bool {
		for _, e := range c.elems(r) {
			id, err := meta.IDOf(c.target, e.Interface())
			if err != nil {
				b.q.fail(err)
				return false
			}
			if n, ok := compare(id, want); ok && n == 0 {
				return true
			}
		}
		return false
	}
}

func (b *builder) IsMember(elem any, x spec.Expression) spec.Predicate {
	has := b.member(elem, x)
	return pred(func(r row) tri { return truth(has(r)) })
}

func (b *builder) IsNotMember(elem any, x spec.Expression) spec.Predicate {
	has := b.member(elem, x)
	return pred(func(r row) tri { return truth(!has(r)) })
}

// ---------------- Patrones ----------------

func (b *builder) like(x spec.Expression, pattern string, escape rune, negate bool) spec.Predicate {
	re, err := regexp.Compile("(?s)" + criteria.LikeRegexp(pattern, escape))
	if err != nil {
		b.q.fail(fmt.Errorf("like %q: %w", pattern, err))
		return b.Disjunction()
	}
	val := b.value(x)
	return pred(func(r row) tri {
		v, ok := val(r)
		if !ok {
			return unknown
		}
		s, ok := normalize(v)
		str, isStr := s.(string)
		if !ok || !isStr {
			return unknown
		}
		return truth(re.MatchString(str) != negate)
	})
}

func (b *builder) Like(x spec.Expression, pattern string, escape rune) spec.Predicate {
	return b.like(x, pattern, escape, false)
}

func (b *builder) NotLike(x spec.Expression, pattern string, escape rune) spec.Predicate {
	return b.like(x, pattern, escape, true)
}

func (b *builder) Lower(x spec.Expression) spec.Expression {
	val := b.value(x)
	caser := cases.Lower(language.Und)
	return expr(func(r row) (any, bool) {
		v, ok := val(r)
		if !ok {
			return nil, false
		}
		s, ok := normalize(v)
		if str, isStr := s.(string); ok && isStr {
			return caser.String(str), true
		}
		return v, true
	})
}

// ---------------- Lógica ----------------

func (b *builder) And(x, y spec.Predicate) spec.Predicate {
	l, r := b.pred(x), b.pred(y)
	return pred(func(t row) tri { return and3(l(t), r(t)) })
}

func (b *builder) Or(x, y spec.Predicate) spec.Predicate {
	l, r := b.pred(x), b.pred(y)
	return pred(func(t row) tri { return or3(l(t), r(t)) })
}

func (b *builder) Not(p spec.Predicate) spec.Predicate {
	inner := b.pred(p)
	return pred(func(t row) tri { return not2(inner(t)) })
}
