package spec

import "fmt"

// ---------------- Especificaciones ----------------

// Filter es la parte de una especificación que consumen los backends.
type Filter interface {
	// ToPredicate construye el predicado usando las primitivas del backend.
	ToPredicate(q Query, cb Builder) (Predicate, error)
	// Distinct indica si la consulta debe eliminar filas duplicadas.
	Distinct() bool
}

// Specification es un filtro componible sobre la entidad T. Es un valor
// inmutable: traducirlo dos veces contra la misma consulta produce
// predicados equivalentes. El método of ata la especificación a T: una
// Specification[Genre] no es una Specification[TvShow].
type Specification[T any] interface {
	Filter
	String() string
	of(T)
}

// PredicateFunc es la forma en que un llamador aporta un predicado a medida.
type PredicateFunc func(q Query, cb Builder) (Predicate, error)

// Spec adapta una función a Specification.
func Spec[T any](distinct bool, desc string, fn PredicateFunc) Specification[T] {
	return leaf[T]{distinct: distinct, desc: desc, fn: fn}
}

// None es la especificación neutra: no impone ninguna restricción.
func None[T any]() Specification[T] { return none[T]{} }

// IsNone indica si s es nil o la especificación neutra.
func IsNone[T any](s Specification[T]) bool {
	if s == nil {
		return true
	}
	_, ok := s.(none[T])
	return ok
}

// MatchAll y MatchNone son constantes explícitas. A diferencia de None,
// MatchAll sí cuenta como operando en And/Or.
func MatchAll[T any](opts ...Option) Specification[T] {
	return constant[T]{value: true, distinct: apply(opts).distinct}
}

func MatchNone[T any](opts ...Option) Specification[T] {
	return constant[T]{value: false, distinct: apply(opts).distinct}
}

// ---------------- Nodos ----------------

type leaf[T any] struct {
	distinct bool
	desc     string
	fn       PredicateFunc
}

func (l leaf[T]) ToPredicate(q Query, cb Builder) (Predicate, error) { return l.fn(q, cb) }
func (l leaf[T]) Distinct() bool                                     { return l.distinct }
func (l leaf[T]) String() string                                     { return l.desc }
func (leaf[T]) of(T)                                                 {}

type none[T any] struct{}

func (none[T]) ToPredicate(_ Query, cb Builder) (Predicate, error) { return cb.Conjunction(), nil }
func (none[T]) Distinct() bool                                     { return false }
func (none[T]) String() string                                     { return "none" }
func (none[T]) of(T)                                                {}

type constant[T any] struct {
	value    bool
	distinct bool
}

func (c constant[T]) ToPredicate(_ Query, cb Builder) (Predicate, error) {
	if c.value {
		return cb.Conjunction(), nil
	}
	return cb.Disjunction(), nil
}

func (c constant[T]) Distinct() bool { return c.distinct }
func (c constant[T]) String() string { return fmt.Sprint(c.value) }
func (constant[T]) of(T)              {}

type opKind int

const (
	opAnd opKind = iota
	opOr
)

func (o opKind) String() string {
	if o == opOr {
		return "or"
	}
	return "and"
}

type binary[T any] struct {
	op          opKind
	left, right Specification[T]
}

func (b binary[T]) ToPredicate(q Query, cb Builder) (Predicate, error) {
	l, err := b.left.ToPredicate(q, cb)
	if err != nil {
		return nil, err
	}
	r, err := b.right.ToPredicate(q, cb)
	if err != nil {
		return nil, err
	}
	if b.op == opOr {
		return cb.Or(l, r), nil
	}
	return cb.And(l, r), nil
}

func (b binary[T]) Distinct() bool { return b.left.Distinct() || b.right.Distinct() }
func (binary[T]) of(T)              {}

func (b binary[T]) String() string {
	return fmt.Sprintf("(%s %s %s)", b.left, b.op, b.right)
}

type negation[T any] struct {
	inner Specification[T]
}

func (n negation[T]) ToPredicate(q Query, cb Builder) (Predicate, error) {
	p, err := n.inner.ToPredicate(q, cb)
	if err != nil {
		return nil, err
	}
	return cb.Not(p), nil
}

func (n negation[T]) Distinct() bool { return n.inner.Distinct() }
func (n negation[T]) String() string { return fmt.Sprintf("not(%s)", n.inner) }
func (negation[T]) of(T)              {}
