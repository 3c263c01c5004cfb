package spec

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// ---------------- Opciones ----------------

type options struct {
	distinct bool
	escape   rune
}

// Option ajusta la construcción de un predicado.
type Option func(*options)

// Distinct pide a la consulta que elimine duplicados (joins de colección).
func Distinct() Option { return func(o *options) { o.distinct = true } }

// WithEscape fija el carácter de escape de Like/NotLike.
func WithEscape(r rune) Option { return func(o *options) { o.escape = r } }

func apply(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Number agrupa los tipos numéricos admitidos por Lt, Le, Gt y Ge.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Ordered agrupa los tipos con orden total.
type Ordered interface {
	cmp.Ordered | time.Time
}

// ---------------- Constructores internos ----------------

func onAttr[T, R any](a Attr[T, R], o options, desc string, fn func(p Path, cb Builder) Predicate) Specification[T] {
	return leaf[T]{distinct: o.distinct, desc: desc, fn: func(q Query, cb Builder) (Predicate, error) {
		p, err := a.resolve(q)
		if err != nil {
			return nil, err
		}
		return fn(p, cb), nil
	}}
}

func onColl[T, E any](c Coll[T, E], o options, desc string, fn func(p Path, cb Builder) Predicate) Specification[T] {
	return leaf[T]{distinct: o.distinct, desc: desc, fn: func(q Query, cb Builder) (Predicate, error) {
		p, err := c.resolve(q)
		if err != nil {
			return nil, err
		}
		return fn(p, cb), nil
	}}
}

func lit(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

// ---------------- Igualdad y pertenencia ----------------

func Equal[T, R any](a Attr[T, R], v R, opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), fmt.Sprintf("%s = %s", a, lit(v)), func(p Path, cb Builder) Predicate {
		return cb.Equal(p, v)
	})
}

// NotEqual usa la comparación nativa: las filas con NULL no cumplen.
func NotEqual[T, R any](a Attr[T, R], v R, opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), fmt.Sprintf("%s <> %s", a, lit(v)), func(p Path, cb Builder) Predicate {
		return cb.NotEqual(p, v)
	})
}

// In sin valores no genera "IN ()": devuelve la especificación que no
// encuentra nada.
func In[T, R any](a Attr[T, R], values []R, opts ...Option) Specification[T] {
	if len(values) == 0 {
		return MatchNone[T](opts...)
	}
	vs := make([]any, len(values))
	descs := make([]string, len(values))
	for i, v := range values {
		vs[i] = v
		descs[i] = lit(v)
	}
	desc := fmt.Sprintf("%s in (%s)", a, strings.Join(descs, ", "))
	return onAttr(a, apply(opts), desc, func(p Path, cb Builder) Predicate {
		return cb.In(p, vs)
	})
}

// NotIn es siempre la negación de In; sin valores encuentra todo.
func NotIn[T, R any](a Attr[T, R], values []R, opts ...Option) Specification[T] {
	return Not(In(a, values, opts...))
}

// ---------------- Comparaciones numéricas ----------------

func Lt[T any, R Number](a Attr[T, R], v R, opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), fmt.Sprintf("%s < %v", a, v), func(p Path, cb Builder) Predicate {
		return cb.LessThan(p, v)
	})
}

func Le[T any, R Number](a Attr[T, R], v R, opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), fmt.Sprintf("%s <= %v", a, v), func(p Path, cb Builder) Predicate {
		return cb.LessThanOrEqualTo(p, v)
	})
}

func Gt[T any, R Number](a Attr[T, R], v R, opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), fmt.Sprintf("%s > %v", a, v), func(p Path, cb Builder) Predicate {
		return cb.GreaterThan(p, v)
	})
}

func Ge[T any, R Number](a Attr[T, R], v R, opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), fmt.Sprintf("%s >= %v", a, v), func(p Path, cb Builder) Predicate {
		return cb.GreaterThanOrEqualTo(p, v)
	})
}

// ---------------- Comparaciones sobre tipos ordenados ----------------

func LessThan[T any, R Ordered](a Attr[T, R], v R, opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), fmt.Sprintf("%s < %s", a, lit(v)), func(p Path, cb Builder) Predicate {
		return cb.LessThan(p, v)
	})
}

func LessThanOrEqualTo[T any, R Ordered](a Attr[T, R], v R, opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), fmt.Sprintf("%s <= %s", a, lit(v)), func(p Path, cb Builder) Predicate {
		return cb.LessThanOrEqualTo(p, v)
	})
}

func GreaterThan[T any, R Ordered](a Attr[T, R], v R, opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), fmt.Sprintf("%s > %s", a, lit(v)), func(p Path, cb Builder) Predicate {
		return cb.GreaterThan(p, v)
	})
}

func GreaterThanOrEqualTo[T any, R Ordered](a Attr[T, R], v R, opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), fmt.Sprintf("%s >= %s", a, lit(v)), func(p Path, cb Builder) Predicate {
		return cb.GreaterThanOrEqualTo(p, v)
	})
}

// Between incluye ambos extremos.
func Between[T any, R Ordered](a Attr[T, R], lo, hi R, opts ...Option) Specification[T] {
	desc := fmt.Sprintf("%s between %s and %s", a, lit(lo), lit(hi))
	return onAttr(a, apply(opts), desc, func(p Path, cb Builder) Predicate {
		return cb.Between(p, lo, hi)
	})
}

// ---------------- Booleanos y nulos ----------------

func IsTrue[T any](a Attr[T, bool], opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), a.String()+" is true", func(p Path, cb Builder) Predicate {
		return cb.IsTrue(p)
	})
}

func IsFalse[T any](a Attr[T, bool], opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), a.String()+" is false", func(p Path, cb Builder) Predicate {
		return cb.IsFalse(p)
	})
}

func IsNull[T, R any](a Attr[T, R], opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), a.String()+" is null", func(p Path, cb Builder) Predicate {
		return cb.IsNull(p)
	})
}

func IsNotNull[T, R any](a Attr[T, R], opts ...Option) Specification[T] {
	return onAttr(a, apply(opts), a.String()+" is not null", func(p Path, cb Builder) Predicate {
		return cb.IsNotNull(p)
	})
}

// ---------------- Colecciones ----------------

func IsEmpty[T, E any](c Coll[T, E], opts ...Option) Specification[T] {
	return onColl(c, apply(opts), c.String()+" is empty", func(p Path, cb Builder) Predicate {
		return cb.IsEmpty(p)
	})
}

func IsNotEmpty[T, E any](c Coll[T, E], opts ...Option) Specification[T] {
	return onColl(c, apply(opts), c.String()+" is not empty", func(p Path, cb Builder) Predicate {
		return cb.IsNotEmpty(p)
	})
}

// IsMember compara por valor: el backend identifica elem por su clave.
func IsMember[T, E any](c Coll[T, E], elem E, opts ...Option) Specification[T] {
	return onColl(c, apply(opts), fmt.Sprintf("%v member of %s", elem, c), func(p Path, cb Builder) Predicate {
		return cb.IsMember(elem, p)
	})
}

func IsNotMember[T, E any](c Coll[T, E], elem E, opts ...Option) Specification[T] {
	return onColl(c, apply(opts), fmt.Sprintf("%v not member of %s", elem, c), func(p Path, cb Builder) Predicate {
		return cb.IsNotMember(elem, p)
	})
}

// ---------------- Patrones ----------------

// Like aplica un patrón SQL (% y _). Con WithEscape los comodines pueden
// buscarse literalmente.
func Like[T any](a Attr[T, string], pattern string, opts ...Option) Specification[T] {
	o := apply(opts)
	return onAttr(a, o, fmt.Sprintf("%s like %q", a, pattern), func(p Path, cb Builder) Predicate {
		return cb.Like(p, pattern, o.escape)
	})
}

func NotLike[T any](a Attr[T, string], pattern string, opts ...Option) Specification[T] {
	o := apply(opts)
	return onAttr(a, o, fmt.Sprintf("%s not like %q", a, pattern), func(p Path, cb Builder) Predicate {
		return cb.NotLike(p, pattern, o.escape)
	})
}

// LikeLower pasa a minúsculas la columna y el patrón.
func LikeLower[T any](a Attr[T, string], pattern string, opts ...Option) Specification[T] {
	o := apply(opts)
	lower := strings.ToLower(pattern)
	return onAttr(a, o, fmt.Sprintf("lower(%s) like %q", a, lower), func(p Path, cb Builder) Predicate {
		return cb.Like(cb.Lower(p), lower, o.escape)
	})
}

// ILike es la variante insensible a mayúsculas de Like.
func ILike[T any](a Attr[T, string], pattern string, opts ...Option) Specification[T] {
	return LikeLower(a, pattern, opts...)
}

// NotILike niega ILike con la comparación nativa (excluye NULL).
func NotILike[T any](a Attr[T, string], pattern string, opts ...Option) Specification[T] {
	o := apply(opts)
	lower := strings.ToLower(pattern)
	return onAttr(a, o, fmt.Sprintf("lower(%s) not like %q", a, lower), func(p Path, cb Builder) Predicate {
		return cb.NotLike(cb.Lower(p), lower, o.escape)
	})
}
