package memcrit

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
)

// row es una tupla de la consulta: la raíz en la posición 0 y después un
// valor por join. Un valor inválido es NULL (join LEFT sin pareja).
type row []reflect.Value

type join struct {
	parent *from
	attr   meta.Attribute
	jt     spec.JoinType
	many   bool
}

// query recoge los joins de una evaluación y el primer error encontrado.
type query struct {
	model *meta.Model
	root  *from
	joins []join
	err   error
}

func newQuery(m *meta.Model, e *meta.Entity) *query {
	q := &query{model: m}
	q.root = &from{q: q, entity: e}
	return q
}

func (q *query) Root() spec.From { return q.root }

func (q *query) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

// expand enumera las tuplas de una raíz: los joins INNER descartan, los
// LEFT rellenan con NULL y las colecciones multiplican.
func (q *query) expand(r row, i int, emit func(row)) {
	if i == len(q.joins) {
		emit(r)
		return
	}
	j := q.joins[i]
	var children []reflect.Value
	if base, ok := j.parent.base(r); ok {
		fv, err := meta.FieldOf(base, j.attr)
		if err != nil {
			q.fail(err)
			return
		}
		if v, ok := meta.Indirect(fv); ok {
			if j.many {
				for k := 0; k < v.Len(); k++ {
					children = append(children, v.Index(k))
				}
			} else {
				children = append(children, v)
			}
		}
	}
	next := r[:len(r):len(r)]
	if len(children) == 0 {
		if j.jt == spec.JoinLeft {
			q.expand(append(next, reflect.Value{}), i+1, emit)
		}
		return
	}
	for _, c := range children {
		q.expand(append(next, c), i+1, emit)
	}
}

// from es la raíz, un join (nueva posición en la tupla) o un embebido
// (misma posición con una ruta de campos).
type from struct {
	q       *query
	entity  *meta.Entity
	binding int
	via     []meta.Attribute
	path    string
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

// base devuelve el struct sobre el que se leen los atributos de f.
func (f *from) base(r row) (reflect.Value, bool) {
	v := r[f.binding]
	if !v.IsValid() {
		return reflect.Value{}, false
	}
	for _, a := range f.via {
		fv, err := meta.FieldOf(v, a)
		if err != nil {
			f.q.fail(err)
			return reflect.Value{}, false
		}
		if v = fv; !v.IsValid() {
			return reflect.Value{}, false
		}
	}
	return v, true
}

func (f *from) field(r row, a meta.Attribute) (reflect.Value, bool) {
	base, ok := f.base(r)
	if !ok {
		return reflect.Value{}, false
	}
	fv, err := meta.FieldOf(base, a)
	if err != nil {
		f.q.fail(err)
		return reflect.Value{}, false
	}
	return fv, fv.IsValid()
}

func (f *from) Get(name string) (spec.Path, error) {
	a, err := f.entity.Attr(name)
	if err != nil {
		return nil, err
	}
	switch a.Kind {
	case meta.Scalar:
		return path{name: f.child(name), eval: func(r row) (any, bool) {
			fv, ok := f.field(r, a)
			if !ok {
				return nil, false
			}
			return plain(fv)
		}}, nil
	case meta.ToOne:
		target, err := f.q.model.Target(a)
		if err != nil {
			return nil, err
		}
		return path{name: f.child(name), ref: target, eval: func(r row) (any, bool) {
			fv, ok := f.field(r, a)
			if !ok {
				return nil, false
			}
			id, err := meta.IDOf(target, fv.Interface())
			if err != nil {
				f.q.fail(err)
				return nil, false
			}
			return id, id != nil
		}}, nil
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
	return collection{owner: f, attr: a, target: target, name: f.child(name)}, nil
}

func (f *from) Join(name string, jt spec.JoinType) (spec.From, error) {
	a, err := f.entity.Attr(name)
	if err != nil {
		return nil, err
	}
	switch a.Kind {
	case meta.Embedded:
		target, err := f.q.model.Target(a)
		if err != nil {
			return nil, err
		}
		via := append(slices.Clone(f.via), a)
		return &from{q: f.q, entity: target, binding: f.binding, via: via, path: f.child(name)}, nil
	case meta.ToOne:
		return f.addJoin(name, a, jt, false)
	}
	return nil, fmt.Errorf("%s is %s: %w", f.child(name), a.Kind, spec.ErrNotTraversable)
}

func (f *from) JoinCollection(name string, jt spec.JoinType) (spec.From, error) {
	a, err := f.entity.Attr(name)
	if err != nil {
		return nil, err
	}
	if a.Kind != meta.ToMany {
		return nil, fmt.Errorf("%s is %s, not a collection: %w", f.child(name), a.Kind, spec.ErrNotTraversable)
	}
	return f.addJoin(name, a, jt, true)
}

func (f *from) addJoin(name string, a meta.Attribute, jt spec.JoinType, many bool) (spec.From, error) {
	target, err := f.q.model.Target(a)
	if err != nil {
		return nil, err
	}
	f.q.joins = append(f.q.joins, join{parent: f, attr: a, jt: jt, many: many})
	return &from{q: f.q, entity: target, binding: len(f.q.joins), path: f.child(name)}, nil
}

// path es un valor escalar de la tupla.
type path struct {
	name string
	ref  *meta.Entity // destino si el valor es el id de un to-one
	eval func(r row) (any, bool)
}

func (p path) Name() string { return p.name }

// collection es una colección to-many usada como ruta.
type collection struct {
	owner  *from
	attr   meta.Attribute
	target *meta.Entity
	name   string
}

func (c collection) Name() string { return c.name }

// elems devuelve los elementos; una raíz NULL equivale a colección vacía.
func (c collection) elems(r row) []reflect.Value {
	fv, ok := c.owner.field(r, c.attr)
	if !ok {
		return nil
	}
	v, ok := meta.Indirect(fv)
	if !ok {
		return nil
	}
	out := make([]reflect.Value, v.Len())
	for i := range out {
		out[i] = v.Index(i)
	}
	return out
}
