// Package sqlcrit traduce especificaciones a SQL parametrizado para SQLite,
// PostgreSQL y ClickHouse.
package sqlcrit

import (
	"fmt"
	"strings"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
	"github.com/davicafu/hexaspec/internal/shared/infra/utils"
)

// Statement es una sentencia lista para database/sql.
type Statement struct {
	SQL  string
	Args []any
}

func (s Statement) String() string {
	if len(s.Args) == 0 {
		return s.SQL
	}
	return fmt.Sprintf("%s -- %v", s.SQL, s.Args)
}

// Sort ordena por la ruta de un atributo de la raíz ("name", "price.amount").
type Sort struct {
	Field string
	Desc  bool
}

// Options configura un SELECT.
type Options struct {
	Columns []string // columnas de la raíz; por defecto el id
	Sort    []Sort
	Limit   int // 0 = sin límite
	Offset  int
}

// Compiler compila especificaciones sobre una entidad raíz.
type Compiler struct {
	model   *meta.Model
	dialect Dialect
	entity  *meta.Entity
}

func NewCompiler(m *meta.Model, d Dialect, entity string) (*Compiler, error) {
	e, err := m.Entity(entity)
	if err != nil {
		return nil, err
	}
	if e.Embeddable() {
		return nil, fmt.Errorf("entity %s has no table: %w", entity, spec.ErrUnsupported)
	}
	return &Compiler{model: m, dialect: d, entity: e}, nil
}

func (c *Compiler) Dialect() Dialect { return c.dialect }

// Select genera SELECT [DISTINCT] ... FROM ... WHERE ... ORDER BY ... LIMIT.
func (c *Compiler) Select(f spec.Filter, opts Options) (Statement, error) {
	q := newQuery(c.model, c.entity)
	pred, err := c.predicate(q, f)
	if err != nil {
		return Statement{}, err
	}
	orders, err := c.orderBy(q, opts.Sort)
	if err != nil {
		return Statement{}, err
	}

	cols := opts.Columns
	if len(cols) == 0 {
		cols = []string{c.entity.IDAttr().Column}
	}
	qualified := make([]string, len(cols))
	for i, col := range cols {
		qualified[i] = q.root.alias + "." + col
	}

	w := &writer{d: c.dialect}
	w.write("SELECT ")
	if f != nil && f.Distinct() {
		w.write("DISTINCT ")
	}
	w.write(strings.Join(qualified, ", "))
	c.fromWhere(w, q, pred)
	if len(orders) > 0 {
		w.write(" ORDER BY ", strings.Join(orders, ", "))
	}
	if opts.Limit > 0 {
		w.write(" LIMIT ")
		w.arg(opts.Limit)
		if opts.Offset > 0 {
			w.write(" OFFSET ")
			w.arg(opts.Offset)
		}
	}
	return w.statement()
}

// Count genera el recuento de raíces que cumplen f; con Distinct cuenta ids
// distintos.
func (c *Compiler) Count(f spec.Filter) (Statement, error) {
	q := newQuery(c.model, c.entity)
	pred, err := c.predicate(q, f)
	if err != nil {
		return Statement{}, err
	}
	w := &writer{d: c.dialect}
	if f != nil && f.Distinct() {
		w.write("SELECT COUNT(DISTINCT ", q.root.alias, ".", q.root.idColumn, ")")
	} else {
		w.write("SELECT COUNT(*)")
	}
	c.fromWhere(w, q, pred)
	return w.statement()
}

func (c *Compiler) predicate(q *query, f spec.Filter) (spec.Predicate, error) {
	if f == nil {
		return alwaysTrue, nil
	}
	p, err := f.ToPredicate(q, &builder{q: q})
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", c.entity.Name, err)
	}
	return p, nil
}

func (c *Compiler) fromWhere(w *writer, q *query, pred spec.Predicate) {
	w.write(" FROM ", c.entity.Table, " ", q.root.alias)
	for _, j := range q.joins {
		w.write(" ", j)
	}
	if pred != alwaysTrue {
		w.write(" WHERE ")
		w.node(pred)
	}
}

// orderBy sólo admite columnas de la raíz o de sus embebidos: con DISTINCT
// el ORDER BY debe referirse a columnas seleccionables sin joins extra.
func (c *Compiler) orderBy(q *query, sorts []Sort) ([]string, error) {
	out := make([]string, 0, len(sorts))
	for _, s := range sorts {
		parts := strings.Split(s.Field, ".")
		cur := q.root
		for _, name := range parts[:len(parts)-1] {
			a, err := cur.entity.Attr(name)
			if err != nil {
				return nil, fmt.Errorf("sort %s: %w", s.Field, err)
			}
			if a.Kind != meta.Embedded {
				return nil, fmt.Errorf("sort %s: %s is %s: %w", s.Field, name, a.Kind, spec.ErrNotTraversable)
			}
			next, err := cur.Join(name, spec.JoinInner)
			if err != nil {
				return nil, fmt.Errorf("sort %s: %w", s.Field, err)
			}
			cur = next.(*from)
		}
		p, err := cur.Get(parts[len(parts)-1])
		if err != nil {
			return nil, fmt.Errorf("sort %s: %w", s.Field, err)
		}
		col := p.(column)
		out = append(out, col.alias+"."+col.name+" "+utils.Ternary(s.Desc, "DESC", "ASC"))
	}
	return out, nil
}

func (w *writer) statement() (Statement, error) {
	if w.err != nil {
		return Statement{}, w.err
	}
	return Statement{SQL: w.sb.String(), Args: w.args}, nil
}
