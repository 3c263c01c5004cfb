package spec_test

import (
	"fmt"
	"strings"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
)

// ---------------- Backend de prueba que renderiza texto ----------------

type kind int

const (
	scalar kind = iota
	toOne
	toMany
)

// Esquema plano: el mismo nombre significa lo mismo en cualquier entidad.
var schema = map[string]kind{
	"id":          scalar,
	"name":        scalar,
	"stars":       scalar,
	"netflix":     scalar,
	"releaseDate": scalar,
	"genre":       toOne,
	"starRatings": toMany,
}

type fakeQuery struct {
	joins []string
}

func (q *fakeQuery) Root() spec.From { return fakeFrom{q: q, alias: "root"} }

type fakePath string

func (p fakePath) Name() string { return string(p) }

type fakeFrom struct {
	q     *fakeQuery
	alias string
}

func (f fakeFrom) Name() string { return f.alias }

func (f fakeFrom) lookup(name string, want kind) error {
	k, ok := schema[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, spec.ErrUnknownAttribute)
	}
	if k != want {
		return fmt.Errorf("%s: %w", name, spec.ErrNotTraversable)
	}
	return nil
}

func (f fakeFrom) Get(name string) (spec.Path, error) {
	if err := f.lookup(name, scalar); err != nil {
		return nil, err
	}
	return fakePath(f.alias + "." + name), nil
}

func (f fakeFrom) Collection(name string) (spec.Path, error) {
	if err := f.lookup(name, toMany); err != nil {
		return nil, err
	}
	return fakePath(f.alias + "." + name), nil
}

func (f fakeFrom) join(name string, jt spec.JoinType, want kind) (spec.From, error) {
	if err := f.lookup(name, want); err != nil {
		return nil, err
	}
	alias := fmt.Sprintf("j%d", len(f.q.joins))
	f.q.joins = append(f.q.joins, fmt.Sprintf("%s %s.%s AS %s", jt, f.alias, name, alias))
	return fakeFrom{q: f.q, alias: alias}, nil
}

func (f fakeFrom) Join(name string, jt spec.JoinType) (spec.From, error) {
	return f.join(name, jt, toOne)
}

func (f fakeFrom) JoinCollection(name string, jt spec.JoinType) (spec.From, error) {
	return f.join(name, jt, toMany)
}

type textBuilder struct{}

func (textBuilder) Conjunction() spec.Predicate { return "TRUE" }
func (textBuilder) Disjunction() spec.Predicate { return "FALSE" }

func (textBuilder) Equal(x spec.Expression, v any) spec.Predicate {
	return fmt.Sprintf("%v = %v", x, v)
}
func (textBuilder) NotEqual(x spec.Expression, v any) spec.Predicate {
	return fmt.Sprintf("%v <> %v", x, v)
}
func (textBuilder) In(x spec.Expression, vs []any) spec.Predicate {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("%v IN (%s)", x, strings.Join(parts, ", "))
}
func (textBuilder) LessThan(x spec.Expression, v any) spec.Predicate {
	return fmt.Sprintf("%v < %v", x, v)
}
func (textBuilder) LessThanOrEqualTo(x spec.Expression, v any) spec.Predicate {
	return fmt.Sprintf("%v <= %v", x, v)
}
func (textBuilder) GreaterThan(x spec.Expression, v any) spec.Predicate {
	return fmt.Sprintf("%v > %v", x, v)
}
func (textBuilder) GreaterThanOrEqualTo(x spec.Expression, v any) spec.Predicate {
	return fmt.Sprintf("%v >= %v", x, v)
}
func (textBuilder) Between(x spec.Expression, lo, hi any) spec.Predicate {
	return fmt.Sprintf("%v BETWEEN %v AND %v", x, lo, hi)
}
func (textBuilder) IsTrue(x spec.Expression) spec.Predicate    { return fmt.Sprintf("%v IS TRUE", x) }
func (textBuilder) IsFalse(x spec.Expression) spec.Predicate   { return fmt.Sprintf("%v IS FALSE", x) }
func (textBuilder) IsNull(x spec.Expression) spec.Predicate    { return fmt.Sprintf("%v IS NULL", x) }
func (textBuilder) IsNotNull(x spec.Expression) spec.Predicate { return fmt.Sprintf("%v IS NOT NULL", x) }
func (textBuilder) IsEmpty(x spec.Expression) spec.Predicate   { return fmt.Sprintf("%v IS EMPTY", x) }
func (textBuilder) IsNotEmpty(x spec.Expression) spec.Predicate {
	return fmt.Sprintf("%v IS NOT EMPTY", x)
}
func (textBuilder) IsMember(elem any, x spec.Expression) spec.Predicate {
	return fmt.Sprintf("%v MEMBER OF %v", elem, x)
}
func (textBuilder) IsNotMember(elem any, x spec.Expression) spec.Predicate {
	return fmt.Sprintf("%v NOT MEMBER OF %v", elem, x)
}
func (textBuilder) Like(x spec.Expression, pattern string, escape rune) spec.Predicate {
	if escape != 0 {
		return fmt.Sprintf("%v LIKE '%s' ESCAPE '%c'", x, pattern, escape)
	}
	return fmt.Sprintf("%v LIKE '%s'", x, pattern)
}
func (textBuilder) NotLike(x spec.Expression, pattern string, escape rune) spec.Predicate {
	if escape != 0 {
		return fmt.Sprintf("%v NOT LIKE '%s' ESCAPE '%c'", x, pattern, escape)
	}
	return fmt.Sprintf("%v NOT LIKE '%s'", x, pattern)
}
func (textBuilder) Lower(x spec.Expression) spec.Expression { return fmt.Sprintf("lower(%v)", x) }
func (textBuilder) And(a, b spec.Predicate) spec.Predicate {
	return fmt.Sprintf("(%v AND %v)", a, b)
}
func (textBuilder) Or(a, b spec.Predicate) spec.Predicate {
	return fmt.Sprintf("(%v OR %v)", a, b)
}
func (textBuilder) Not(p spec.Predicate) spec.Predicate { return fmt.Sprintf("NOT (%v)", p) }

// render traduce s con un contexto nuevo y devuelve el predicado y los joins.
func render[T any](s spec.Specification[T]) (string, []string, error) {
	q := &fakeQuery{}
	p, err := s.ToPredicate(q, textBuilder{})
	if err != nil {
		return "", q.joins, err
	}
	return fmt.Sprint(p), q.joins, nil
}

// ---------------- Entidades de prueba ----------------

type show struct{}
type genre struct{}
type rating struct {
	ID int64
}

func (r rating) String() string { return fmt.Sprintf("rating#%d", r.ID) }

var (
	showID          = spec.NewAttr[show, int64]("id")
	showName        = spec.NewAttr[show, string]("name")
	showNetflix     = spec.NewAttr[show, bool]("netflix")
	showReleaseDate = spec.NewAttr[show, string]("releaseDate")
	showGenre       = spec.NewAttr[show, genre]("genre")
	showRatings     = spec.NewCollection[show, rating]("starRatings")
	genreName       = spec.NewAttr[genre, string]("name")
	genreRatings    = spec.NewCollection[genre, rating]("starRatings")
	ratingStars     = spec.NewAttr[rating, int]("stars")
)
