// Package mongocrit traduce especificaciones a filtros de MongoDB.
//
// Las asociaciones se guardan embebidas en el documento raíz, así que un
// join es un prefijo de ruta con punto. Un join INNER añade una condición
// de existencia a nivel de consulta, igual que en SQL descarta filas antes
// del WHERE. Las condiciones sobre una colección se cumplen si algún
// elemento las cumple; dos condiciones sobre la misma colección pueden
// cumplirse en elementos distintos.
//
// La negación se evalúa por documento y no por fila unida. NOT p sobre un
// elemento de colección cumple si ningún elemento cumple p, mientras que en
// SQL y en memoria la raíz pasa si alguna fila del join no cumple p. Con
// colecciones de un solo elemento ambos resultados coinciden.
package mongocrit

import (
	"fmt"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sort ordena por la ruta de un atributo escalar de la raíz.
type Sort struct {
	Field string
	Desc  bool
}

// Translator traduce especificaciones sobre una entidad raíz.
type Translator struct {
	model  *meta.Model
	entity *meta.Entity
}

func NewTranslator(m *meta.Model, entity string) (*Translator, error) {
	e, err := m.Entity(entity)
	if err != nil {
		return nil, err
	}
	return &Translator{model: m, entity: e}, nil
}

// Filter devuelve el filtro para Find/CountDocuments. Distinct no cambia
// nada: cada documento aparece una sola vez.
func (t *Translator) Filter(f spec.Filter) (bson.D, error) {
	if f == nil {
		return bson.D{}, nil
	}
	q := &query{model: t.model}
	q.root = &from{q: q, entity: t.entity}
	b := &builder{q: q}
	p, err := f.ToPredicate(q, b)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", t.entity.Name, err)
	}
	if q.err != nil {
		return nil, q.err
	}
	doc := b.doc(p)
	if len(q.guards) == 0 {
		return doc, nil
	}
	all := make(bson.A, 0, len(q.guards)+1)
	for _, g := range q.guards {
		all = append(all, g)
	}
	if len(doc) > 0 {
		all = append(all, doc)
	}
	return bson.D{{Key: "$and", Value: all}}, nil
}

// Sort traduce el orden; sólo admite atributos escalares de la raíz o de
// sus embebidos.
func (t *Translator) Sort(sorts []Sort) (bson.D, error) {
	scalars := t.model.Scalars(t.entity)
	out := bson.D{}
	for _, s := range sorts {
		key := ""
		for _, a := range scalars {
			if a.Name == s.Field {
				key = a.Key
				break
			}
		}
		if key == "" {
			return nil, fmt.Errorf("sort %s: %w", s.Field, spec.ErrUnknownAttribute)
		}
		dir := 1
		if s.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: key, Value: dir})
	}
	return out, nil
}

// ---------------- Rutas ----------------

type query struct {
	model  *meta.Model
	root   *from
	guards []bson.D
	err    error
}

func (q *query) Root() spec.From { return q.root }

func (q *query) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

type from struct {
	q      *query
	entity *meta.Entity
	prefix string // ruta BSON con punto final, "" en la raíz
	path   string
}

func (f *from) Name() string {
	if f.path == "" {
		return f.entity.Name
	}
	return f.path
}

func (f *from) child(name string) string {
	if f.path == "" {
		return name
	}
	return f.path + "." + name
}

// field es una ruta BSON. idKey es la ruta del id cuando el atributo es un
// to-one; las comparaciones usan idKey y los tests de nulo usan key.
type field struct {
	key   string
	idKey string
	ref   *meta.Entity
	path  string
}

func (p field) Name() string { return p.path }

type lowered struct {
	field field
}

type collection struct {
	key    string
	target *meta.Entity
	path   string
}

func (c collection) Name() string { return c.path }

func (f *from) Get(name string) (spec.Path, error) {
	a, err := f.entity.Attr(name)
	if err != nil {
		return nil, err
	}
	p := field{key: f.prefix + a.Key, path: f.child(name)}
	switch a.Kind {
	case meta.Scalar:
		return p, nil
	case meta.ToOne:
		if p.ref, err = f.q.model.Target(a); err != nil {
			return nil, err
		}
		p.idKey = p.key + "." + p.ref.IDAttr().Key
		return p, nil
	}
	return nil, fmt.Errorf("%s is %s: %w", f.child(name), a.Kind, spec.ErrNotTraversable)
}

func (f *from) Collection(name string) (spec.Path, error) {
	a, err := f.entity.Attr(name)
	if err != nil {
		return nil, err
	}
	if a.Kind != meta.ToMany {
		return nil, fmt.Errorf("%s is %s, not a collection: %w", f.child(name), a.Kind, spec.ErrNotTraversable)
	}
	target, err := f.q.model.Target(a)
	if err != nil {
		return nil, err
	}
	return collection{key: f.prefix + a.Key, target: target, path: f.child(name)}, nil
}

func (f *from) Join(name string, jt spec.JoinType) (spec.From, error) {
	a, err := f.entity.Attr(name)
	if err != nil {
		return nil, err
	}
	if a.Kind != meta.ToOne && a.Kind != meta.Embedded {
		return nil, fmt.Errorf("%s is %s: %w", f.child(name), a.Kind, spec.ErrNotTraversable)
	}
	target, err := f.q.model.Target(a)
	if err != nil {
		return nil, err
	}
	key := f.prefix + a.Key
	if jt == spec.JoinInner && a.Kind == meta.ToOne {
		f.q.guards = append(f.q.guards, bson.D{{Key: key, Value: bson.D{{Key: "$ne", Value: nil}}}})
	}
	return &from{q: f.q, entity: target, prefix: key + ".", path: f.child(name)}, nil
}

func (f *from) JoinCollection(name string, jt spec.JoinType) (spec.From, error) {
	a, err := f.entity.Attr(name)
	if err != nil {
		return nil, err
	}
	if a.Kind != meta.ToMany {
		return nil, fmt.Errorf("%s is %s, not a collection: %w", f.child(name), a.Kind, spec.ErrNotTraversable)
	}
	target, err := f.q.model.Target(a)
	if err != nil {
		return nil, err
	}
	key := f.prefix + a.Key
	if jt == spec.JoinInner {
		f.q.guards = append(f.q.guards, bson.D{{Key: key + ".0", Value: bson.D{{Key: "$exists", Value: true}}}})
	}
	return &from{q: f.q, entity: target, prefix: key + ".", path: f.child(name)}, nil
}

// ---------------- Builder ----------------

type builder struct {
	q *query
}

var _ spec.Builder = (*builder)(nil)

func (b *builder) doc(p spec.Predicate) bson.D {
	d, ok := p.(bson.D)
	if !ok {
		b.q.fail(fmt.Errorf("mongocrit: foreign predicate %T: %w", p, spec.ErrUnsupported))
		return bson.D{}
	}
	return d
}

// target devuelve la clave y el valor a comparar; las entidades se
// comparan por id.
func (b *builder) target(x spec.Expression, v any) (string, any) {
	switch p := x.(type) {
	case field:
		if p.ref == nil {
			return p.key, v
		}
		id, err := meta.IDOf(p.ref, v)
		if err != nil {
			b.q.fail(err)
		}
		return p.idKey, id
	case lowered:
		b.q.fail(fmt.Errorf("lower(%s) only supports like: %w", p.field.path, spec.ErrUnsupported))
		return p.field.key, v
	}
	b.q.fail(fmt.Errorf("mongocrit: %T is not a field: %w", x, spec.ErrNotTraversable))
	return "", v
}

func (b *builder) key(x spec.Expression) string {
	if p, ok := x.(field); ok {
		return p.key
	}
	k, _ := b.target(x, nil)
	return k
}

func op(key, operator string, v any) bson.D {
	return bson.D{{Key: key, Value: bson.D{{Key: operator, Value: v}}}}
}

func (b *builder) Conjunction() spec.Predicate { return bson.D{} }

func (b *builder) Disjunction() spec.Predicate {
	return op("_id", "$exists", false)
}

func (b *builder) Equal(x spec.Expression, v any) spec.Predicate {
	k, v := b.target(x, v)
	return op(k, "$eq", v)
}

// NotEqual excluye los documentos sin valor, como la comparación SQL.
func (b *builder) NotEqual(x spec.Expression, v any) spec.Predicate {
	k, v := b.target(x, v)
	return op(k, "$nin", bson.A{v, nil})
}

func (b *builder) In(x spec.Expression, values []any) spec.Predicate {
	if len(values) == 0 {
		return b.Disjunction()
	}
	k, _ := b.target(x, nil)
	vs := make(bson.A, len(values))
	for i, v := range values {
		_, vs[i] = b.target(x, v)
	}
	return op(k, "$in", vs)
}

func (b *builder) LessThan(x spec.Expression, v any) spec.Predicate {
	k, v := b.target(x, v)
	return op(k, "$lt", v)
}

func (b *builder) LessThanOrEqualTo(x spec.Expression, v any) spec.Predicate {
	k, v := b.target(x, v)
	return op(k, "$lte", v)
}

func (b *builder) GreaterThan(x spec.Expression, v any) spec.Predicate {
	k, v := b.target(x, v)
	return op(k, "$gt", v)
}

func (b *builder) GreaterThanOrEqualTo(x spec.Expression, v any) spec.Predicate {
	k, v := b.target(x, v)
	return op(k, "$gte", v)
}

func (b *builder) Between(x spec.Expression, lo, hi any) spec.Predicate {
	k, lo := b.target(x, lo)
	_, hi = b.target(x, hi)
	return bson.D{{Key: k, Value: bson.D{{Key: "$gte", Value: lo}, {Key: "$lte", Value: hi}}}}
}

func (b *builder) IsTrue(x spec.Expression) spec.Predicate  { return op(b.key(x), "$eq", true) }
func (b *builder) IsFalse(x spec.Expression) spec.Predicate { return op(b.key(x), "$eq", false) }

// IsNull también encuentra documentos donde la clave no existe.
func (b *builder) IsNull(x spec.Expression) spec.Predicate    { return op(b.key(x), "$eq", nil) }
func (b *builder) IsNotNull(x spec.Expression) spec.Predicate { return op(b.key(x), "$ne", nil) }

func (b *builder) collection(x spec.Expression) (collection, bool) {
	c, ok := x.(collection)
	if !ok {
		b.q.fail(fmt.Errorf("%v is not a collection: %w", x, spec.ErrNotTraversable))
	}
	return c, ok
}

func (b *builder) IsEmpty(x spec.Expression) spec.Predicate {
	c, _ := b.collection(x)
	return op(c.key+".0", "$exists", false)
}

func (b *builder) IsNotEmpty(x spec.Expression) spec.Predicate {
	c, _ := b.collection(x)
	return op(c.key+".0", "$exists", true)
}

func (b *builder) memberKey(elem any, x spec.Expression) (string, any) {
	c, ok := b.collection(x)
	if !ok {
		return "", nil
	}
	id, err := meta.IDOf(c.target, elem)
	if err != nil {
		b.q.fail(err)
	}
	return c.key + "." + c.target.IDAttr().Key, id
}

func (b *builder) IsMember(elem any, x spec.Expression) spec.Predicate {
	k, id := b.memberKey(elem, x)
	return op(k, "$eq", id)
}

func (b *builder) IsNotMember(elem any, x spec.Expression) spec.Predicate {
	k, id := b.memberKey(elem, x)
	return op(k, "$ne", id)
}

// ---------------- Patrones ----------------

// regex traduce LIKE; lower(x) se resuelve con la opción "i".
func (b *builder) regex(x spec.Expression, pattern string, escape rune) (string, primitive.Regex) {
	opts := "s"
	key := ""
	switch p := x.(type) {
	case lowered:
		key = p.field.key
		opts = "is"
	case field:
		key = p.key
	default:
		b.q.fail(fmt.Errorf("mongocrit: %T is not a field: %w", x, spec.ErrNotTraversable))
	}
	return key, primitive.Regex{Pattern: criteria.LikeRegexp(pattern, escape), Options: opts}
}

func (b *builder) Like(x spec.Expression, pattern string, escape rune) spec.Predicate {
	k, re := b.regex(x, pattern, escape)
	return op(k, "$regex", re)
}

// NotLike excluye los documentos sin valor, como en SQL.
func (b *builder) NotLike(x spec.Expression, pattern string, escape rune) spec.Predicate {
	k, re := b.regex(x, pattern, escape)
	return bson.D{{Key: k, Value: bson.D{{Key: "$not", Value: re}, {Key: "$ne", Value: nil}}}}
}

func (b *builder) Lower(x spec.Expression) spec.Expression {
	p, ok := x.(field)
	if !ok {
		b.q.fail(fmt.Errorf("mongocrit: lower of %T: %w", x, spec.ErrUnsupported))
	}
	return lowered{field: p}
}

// ---------------- Lógica ----------------

func (b *builder) And(x, y spec.Predicate) spec.Predicate {
	return bson.D{{Key: "$and", Value: bson.A{b.doc(x), b.doc(y)}}}
}

func (b *builder) Or(x, y spec.Predicate) spec.Predicate {
	return bson.D{{Key: "$or", Value: bson.A{b.doc(x), b.doc(y)}}}
}

// Not usa $nor: un documento sin el campo no cumple p y por tanto pasa.
// Sobre colecciones niega el documento entero (ver el comentario del paquete).
func (b *builder) Not(p spec.Predicate) spec.Predicate {
	return bson.D{{Key: "$nor", Value: bson.A{b.doc(p)}}}
}

