package sqlcrit

import (
	"fmt"
	"strings"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
)

// ---------------- Árbol de predicados ----------------
//
// Los nodos se renderizan al final para que la numeración de parámetros
// ($1, $2...) siga el orden del texto.

type node interface {
	render(w *writer)
}

type writer struct {
	d    Dialect
	sb   strings.Builder
	args []any
	err  error
}

func (w *writer) write(parts ...string) {
	for _, p := range parts {
		w.sb.WriteString(p)
	}
}

func (w *writer) arg(v any) {
	w.args = append(w.args, v)
	w.sb.WriteString(w.d.Placeholder(len(w.args)))
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) node(n spec.Expression) {
	rn, ok := n.(node)
	if !ok {
		w.fail(errForeign(n))
		return
	}
	rn.render(w)
}

// column es una columna resuelta; también implementa spec.Path.
type column struct {
	alias string
	name  string
	path  string
	// entidad referenciada si la columna es una FK (atributo to-one)
	ref *meta.Entity
}

func (c column) Name() string { return c.path }

func (c column) render(w *writer) { w.write(c.alias, ".", c.name) }

type literal string

func (l literal) render(w *writer) { w.write(string(l)) }

var (
	alwaysTrue  = literal("1 = 1")
	alwaysFalse = literal("1 = 0")
)

type compare struct {
	x  spec.Expression
	op string
	v  any
}

func (c compare) render(w *writer) {
	w.node(c.x)
	w.write(" ", c.op, " ")
	w.arg(c.v)
}

type between struct {
	x      spec.Expression
	lo, hi any
}

func (b between) render(w *writer) {
	w.node(b.x)
	w.write(" BETWEEN ")
	w.arg(b.lo)
	w.write(" AND ")
	w.arg(b.hi)
}

type inList struct {
	x  spec.Expression
	vs []any
}

func (in inList) render(w *writer) {
	w.node(in.x)
	w.write(" IN (")
	for i, v := range in.vs {
		if i > 0 {
			w.write(", ")
		}
		w.arg(v)
	}
	w.write(")")
}

type suffix struct {
	x  spec.Expression
	op string
}

func (s suffix) render(w *writer) {
	w.node(s.x)
	w.write(" ", s.op)
}

type like struct {
	x       spec.Expression
	pattern string
	escape  rune
	not     bool
}

func (l like) render(w *writer) {
	w.node(l.x)
	if l.not {
		w.write(" NOT")
	}
	w.write(" LIKE ")
	if w.d.backslashEscape {
		w.arg(toBackslash(l.pattern, l.escape))
		return
	}
	w.arg(l.pattern)
	if l.escape != 0 {
		w.write(" ESCAPE '", strings.ReplaceAll(string(l.escape), "'", "''"), "'")
	}
}

type lower struct {
	x spec.Expression
}

func (l lower) render(w *writer) {
	w.write("lower(")
	w.node(l.x)
	w.write(")")
}

type logic struct {
	op   string
	a, b spec.Predicate
}

func (l logic) render(w *writer) {
	w.write("(")
	w.node(l.a)
	w.write(" ", l.op, " ")
	w.node(l.b)
	w.write(")")
}

type negate struct {
	p spec.Predicate
}

func (n negate) render(w *writer) {
	w.write(w.d.notOpen)
	w.node(n.p)
	w.write(w.d.notClose)
}

// exists es la subconsulta correlacionada de una colección to-many.
type exists struct {
	not   bool
	table string
	alias string
	fk    string
	owner column
	// filtro opcional por id del elemento
	idColumn string
	id       any
}

func (e exists) render(w *writer) {
	if e.not {
		w.write("NOT ")
	}
	w.write("EXISTS (SELECT 1 FROM ", e.table, " ", e.alias, " WHERE ", e.alias, ".", e.fk, " = ")
	e.owner.render(w)
	if e.idColumn != "" {
		w.write(" AND ", e.alias, ".", e.idColumn, " = ")
		w.arg(e.id)
	}
	w.write(")")
}

// failed difiere un error de construcción hasta el renderizado: las
// primitivas de spec.Builder no devuelven error.
type failed struct {
	err error
}

func (f failed) render(w *writer) { w.fail(f.err) }

func errForeign(x any) error {
	return fmt.Errorf("sqlcrit: foreign expression %T: %w", x, spec.ErrUnsupported)
}
