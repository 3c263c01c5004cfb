package spec

import (
	"fmt"
	"strings"
)

// ---------------- Referencias tipadas a propiedades ----------------

// joinStep es un paso de recorrido desde la raíz.
type joinStep struct {
	name       string
	jt         JoinType
	collection bool
}

// Attr referencia un atributo de valor R alcanzable desde la entidad raíz T,
// directamente o a través de joins. Se declara una vez por campo
// (ver NewAttr) y se reutiliza; el nombre nunca aparece en los llamadores.
type Attr[T, R any] struct {
	steps []joinStep
	name  string
}

// NewAttr declara el atributo name de la entidad T.
func NewAttr[T, R any](name string) Attr[T, R] {
	mustName(name)
	return Attr[T, R]{name: name}
}

// Name devuelve el nombre del atributo terminal.
func (a Attr[T, R]) Name() string { return a.name }

// String devuelve la ruta completa, p.ej. "genre.starRatings.stars".
func (a Attr[T, R]) String() string { return describe(a.steps, a.name) }

func (a Attr[T, R]) resolve(q Query) (Path, error) {
	from, err := walk(q.Root(), a.steps)
	if err != nil {
		return nil, err
	}
	p, err := from.Get(a.name)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", a, err)
	}
	return p, nil
}

// Coll referencia un atributo to-many de T con elementos de tipo E.
type Coll[T, E any] struct {
	steps []joinStep
	name  string
}

// NewCollection declara la colección name de la entidad T.
func NewCollection[T, E any](name string) Coll[T, E] {
	mustName(name)
	return Coll[T, E]{name: name}
}

func (c Coll[T, E]) Name() string   { return c.name }
func (c Coll[T, E]) String() string { return describe(c.steps, c.name) }

func (c Coll[T, E]) resolve(q Query) (Path, error) {
	from, err := walk(q.Root(), c.steps)
	if err != nil {
		return nil, err
	}
	p, err := from.Collection(c.name)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", c, err)
	}
	return p, nil
}

// walk aplica los joins en orden. Cada llamada crea joins nuevos: dos
// especificaciones sobre la misma asociación no comparten alias.
func walk(root From, steps []joinStep) (From, error) {
	from := root
	for i, s := range steps {
		var err error
		if s.collection {
			from, err = from.JoinCollection(s.name, s.jt)
		} else {
			from, err = from.Join(s.name, s.jt)
		}
		if err != nil {
			return nil, fmt.Errorf("join %s: %w", describe(steps[:i], s.name), err)
		}
	}
	return from, nil
}

func describe(steps []joinStep, name string) string {
	if len(steps) == 0 {
		return name
	}
	parts := make([]string, 0, len(steps)+1)
	for _, s := range steps {
		parts = append(parts, s.name)
	}
	return strings.Join(append(parts, name), ".")
}

func mustName(name string) {
	if strings.TrimSpace(name) == "" || strings.Contains(name, ".") {
		panic(fmt.Sprintf("spec: invalid attribute name %q", name))
	}
}
