package sqlcrit

import (
	"fmt"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
)

// ---------------- Raíz y joins ----------------

// query acumula los joins de una única compilación. Los alias se asignan
// en orden de resolución: t0 es la raíz.
type query struct {
	model *meta.Model
	root  *from
	joins []string
	next  int
}

func newQuery(m *meta.Model, e *meta.Entity) *query {
	q := &query{model: m}
	q.root = &from{q: q, entity: e, alias: q.alias(), idColumn: e.IDAttr().Column}
	return q
}

func (q *query) alias() string {
	a := fmt.Sprintf("t%d", q.next)
	q.next++
	return a
}

func (q *query) Root() spec.From { return q.root }

// from es la raíz, un join o un embebido (mismo alias con prefijo).
type from struct {
	q        *query
	entity   *meta.Entity
	alias    string
	prefix   string
	path     string
	idColumn string // id de la fila propietaria
}

func (f *from) Name() string {
	if f.path == "" {
		return f.entity.Name
	}
	return f.path
}

func (f *from) render(w *writer) { w.write(f.alias, ".", f.idColumn) }

func (f *from) child(name string) string {
	if f.path == "" {
		return name
	}
	return f.path + "." + name
}

func (f *from) Get(name string) (spec.Path, error) {
	a, err := f.entity.Attr(name)
	if err != nil {
		return nil, err
	}
	c := column{alias: f.alias, name: f.prefix + a.Column, path: f.child(name)}
	switch a.Kind {
	case meta.Scalar:
		return c, nil
	case meta.ToOne:
		if c.ref, err = f.q.model.Target(a); err != nil {
			return nil, err
		}
		return c, nil
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
	return collection{
		owner:  column{alias: f.alias, name: f.idColumn, path: f.Name()},
		target: target,
		fk:     a.Column,
		path:   f.child(name),
	}, nil
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
		return &from{
			q: f.q, entity: target, alias: f.alias,
			prefix: f.prefix + a.Column, path: f.child(name), idColumn: f.idColumn,
		}, nil
	case meta.ToOne:
		target, err := f.q.model.Target(a)
		if err != nil {
			return nil, err
		}
		alias := f.q.alias()
		id := target.IDAttr().Column
		f.q.joins = append(f.q.joins, fmt.Sprintf("%s JOIN %s %s ON %s.%s = %s.%s",
			jt, target.Table, alias, alias, id, f.alias, f.prefix+a.Column))
		return &from{q: f.q, entity: target, alias: alias, path: f.child(name), idColumn: id}, nil
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
	target, err := f.q.model.Target(a)
	if err != nil {
		return nil, err
	}
	alias := f.q.alias()
	id := target.IDAttr().Column
	f.q.joins = append(f.q.joins, fmt.Sprintf("%s JOIN %s %s ON %s.%s = %s.%s",
		jt, target.Table, alias, alias, a.Column, f.alias, f.idColumn))
	return &from{q: f.q, entity: target, alias: alias, path: f.child(name), idColumn: id}, nil
}

// collection es una colección to-many usada como ruta (IsEmpty, IsMember...).
type collection struct {
	owner  column
	target *meta.Entity
	fk     string
	path   string
}

func (c collection) Name() string { return c.path }

func (c collection) render(w *writer) {
	w.fail(fmt.Errorf("collection %s used as a value: %w", c.path, spec.ErrNotTraversable))
}
