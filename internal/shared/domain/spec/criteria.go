package spec

// ---------------- Contrato con el backend de persistencia ----------------
//
// El DSL no genera SQL ni evalúa filas: sólo habla con estas interfaces.
// Cada backend (SQL, memoria, Mongo) las implementa y decide cómo ejecutar.

// JoinType indica cómo se recorre una asociación.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
)

func (j JoinType) String() string {
	if j == JoinLeft {
		return "LEFT"
	}
	return "INNER"
}

// Expression es cualquier nodo que produce un valor dentro de una consulta.
type Expression interface{}

// Predicate es una condición booleana evaluada por fila.
type Predicate interface{}

// Path es una referencia resuelta a un atributo (o a una colección completa).
type Path interface {
	Expression
	// Name devuelve la ruta punteada desde la raíz, p.ej. "genre.name".
	Name() string
}

// From es un punto de recorrido: la raíz de la consulta o un join previo.
type From interface {
	Path

	// Get resuelve un atributo escalar, embebido o to-one.
	Get(name string) (Path, error)

	// Collection resuelve un atributo to-many como ruta (para IsEmpty, IsMember...).
	Collection(name string) (Path, error)

	// Join recorre una asociación to-one o un embebido.
	Join(name string, jt JoinType) (From, error)

	// JoinCollection recorre los elementos de una asociación to-many.
	JoinCollection(name string, jt JoinType) (From, error)
}

// Query es el contexto de ejecución que el backend entrega a cada especificación.
type Query interface {
	Root() From
}

// Builder expone las primitivas de predicado del backend.
type Builder interface {
	Conjunction() Predicate // siempre verdadero
	Disjunction() Predicate // siempre falso

	Equal(x Expression, v any) Predicate
	NotEqual(x Expression, v any) Predicate
	In(x Expression, values []any) Predicate

	LessThan(x Expression, v any) Predicate
	LessThanOrEqualTo(x Expression, v any) Predicate
	GreaterThan(x Expression, v any) Predicate
	GreaterThanOrEqualTo(x Expression, v any) Predicate
	Between(x Expression, lo, hi any) Predicate

	IsTrue(x Expression) Predicate
	IsFalse(x Expression) Predicate
	IsNull(x Expression) Predicate
	IsNotNull(x Expression) Predicate

	IsEmpty(x Expression) Predicate
	IsNotEmpty(x Expression) Predicate
	IsMember(elem any, x Expression) Predicate
	IsNotMember(elem any, x Expression) Predicate

	// Like recibe escape == 0 cuando no hay carácter de escape.
	Like(x Expression, pattern string, escape rune) Predicate
	NotLike(x Expression, pattern string, escape rune) Predicate
	Lower(x Expression) Expression

	And(a, b Predicate) Predicate
	Or(a, b Predicate) Predicate
	Not(p Predicate) Predicate
}
