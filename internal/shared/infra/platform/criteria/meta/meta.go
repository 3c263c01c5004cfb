// Package meta describe cómo se persisten las entidades: tablas, columnas,
// claves BSON y campos Go. Los backends de criterios lo consultan para
// resolver las rutas de una especificación.
package meta

import (
	"fmt"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
)

// Kind clasifica un atributo.
type Kind int

const (
	Scalar   Kind = iota
	Embedded      // objeto de valor guardado en la tabla del propietario
	ToOne         // FK en la tabla del propietario
	ToMany        // FK en la tabla destino
)

func (k Kind) String() string {
	switch k {
	case Embedded:
		return "embedded"
	case ToOne:
		return "to-one"
	case ToMany:
		return "to-many"
	default:
		return "scalar"
	}
}

// Attribute es el mapeo de un atributo.
//
// Column depende de Kind: columna para Scalar, FK local para ToOne, FK en
// la tabla destino para ToMany y prefijo de columnas para Embedded.
type Attribute struct {
	Name   string
	Kind   Kind
	Column string
	Key    string // clave BSON
	Field  string // campo del struct Go; vacío si sólo existe en la tabla
	Target string // entidad destino (Embedded, ToOne, ToMany)
}

func NewScalar(name, column, field string) Attribute {
	return Attribute{Name: name, Kind: Scalar, Column: column, Key: name, Field: field}
}

func NewEmbedded(name, prefix, field, target string) Attribute {
	return Attribute{Name: name, Kind: Embedded, Column: prefix, Key: name, Field: field, Target: target}
}

func NewToOne(name, fkColumn, field, target string) Attribute {
	return Attribute{Name: name, Kind: ToOne, Column: fkColumn, Key: name, Field: field, Target: target}
}

func NewToMany(name, mappedBy, field, target string) Attribute {
	return Attribute{Name: name, Kind: ToMany, Column: mappedBy, Key: name, Field: field, Target: target}
}

// WithKey cambia la clave BSON del atributo.
func (a Attribute) WithKey(key string) Attribute {
	a.Key = key
	return a
}

// Entity es el mapeo de una entidad o de un objeto de valor embebible.
type Entity struct {
	Name       string
	Table      string
	Collection string
	ID         string // nombre del atributo identificador

	attrs map[string]Attribute
	order []string
}

// NewEntity crea una entidad con identificador "id". Con table vacío la
// entidad sólo puede usarse embebida.
func NewEntity(name, table string, attrs ...Attribute) *Entity {
	e := &Entity{Name: name, Table: table, Collection: table, ID: "id", attrs: map[string]Attribute{}}
	for _, a := range attrs {
		if _, dup := e.attrs[a.Name]; dup {
			panic(fmt.Sprintf("meta: duplicated attribute %s.%s", name, a.Name))
		}
		e.attrs[a.Name] = a
		e.order = append(e.order, a.Name)
	}
	return e
}

// InCollection cambia la colección Mongo de la entidad.
func (e *Entity) InCollection(name string) *Entity {
	e.Collection = name
	return e
}

// Attr busca un atributo por nombre.
func (e *Entity) Attr(name string) (Attribute, error) {
	a, ok := e.attrs[name]
	if !ok {
		return Attribute{}, fmt.Errorf("%s.%s: %w", e.Name, name, spec.ErrUnknownAttribute)
	}
	return a, nil
}

// Attributes devuelve los atributos en orden de declaración.
func (e *Entity) Attributes() []Attribute {
	out := make([]Attribute, 0, len(e.order))
	for _, n := range e.order {
		out = append(out, e.attrs[n])
	}
	return out
}

// IDAttr devuelve el atributo identificador.
func (e *Entity) IDAttr() Attribute {
	return e.attrs[e.ID]
}

// Embeddable indica si la entidad no tiene tabla propia.
func (e *Entity) Embeddable() bool { return e.Table == "" }

// ---------------- Modelo ----------------

// Model agrupa las entidades de un backend.
type Model struct {
	entities map[string]*Entity
}

func NewModel(entities ...*Entity) *Model {
	m := &Model{entities: map[string]*Entity{}}
	for _, e := range entities {
		m.entities[e.Name] = e
	}
	return m
}

// Entity devuelve la entidad name.
func (m *Model) Entity(name string) (*Entity, error) {
	e, ok := m.entities[name]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", name, spec.ErrUnknownAttribute)
	}
	return e, nil
}

// Target devuelve la entidad destino de una asociación o embebido.
func (m *Model) Target(a Attribute) (*Entity, error) {
	if a.Kind == Scalar {
		return nil, fmt.Errorf("%s is %s: %w", a.Name, a.Kind, spec.ErrNotTraversable)
	}
	return m.Entity(a.Target)
}

// Scalars devuelve los atributos escalares de e expandiendo los embebidos,
// con la ruta punteada, la columna y la clave BSON ya prefijadas.
func (m *Model) Scalars(e *Entity) []Attribute {
	var out []Attribute
	for _, a := range e.Attributes() {
		switch a.Kind {
		case Scalar:
			out = append(out, a)
		case Embedded:
			t, err := m.Target(a)
			if err != nil {
				continue
			}
			for _, inner := range m.Scalars(t) {
				inner.Name = a.Name + "." + inner.Name
				inner.Column = a.Column + inner.Column
				inner.Key = a.Key + "." + inner.Key
				inner.Field = a.Field + "." + inner.Field
				out = append(out, inner)
			}
		}
	}
	return out
}
