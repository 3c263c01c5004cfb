package spec

// ---------------- Recorrido por joins ----------------

// FromBuilder es un contexto de recorrido: la entidad T alcanzada desde la
// raíz Z mediante una cadena de joins. Es un valor inmutable; los joins se
// materializan sólo cuando una especificación se traduce a predicado.
type FromBuilder[Z, T any] struct {
	steps []joinStep
}

// Root inicia un recorrido en la entidad raíz Z.
func Root[Z any]() FromBuilder[Z, Z] {
	return FromBuilder[Z, Z]{}
}

// String devuelve la cadena de joins, p.ej. "genre(INNER).starRatings(LEFT)".
func (f FromBuilder[Z, T]) String() string {
	out := ""
	for i, s := range f.steps {
		if i > 0 {
			out += "."
		}
		out += s.name + "(" + s.jt.String() + ")"
	}
	return out
}

// Where termina el recorrido en el atributo a de T.
func Where[Z, T, R any](f FromBuilder[Z, T], a Attr[T, R]) Attr[Z, R] {
	return Attr[Z, R]{steps: concat(f.steps, a.steps), name: a.name}
}

// WhereCollection termina el recorrido en la colección c de T, como ruta.
func WhereCollection[Z, T, E any](f FromBuilder[Z, T], c Coll[T, E]) Coll[Z, E] {
	return Coll[Z, E]{steps: concat(f.steps, c.steps), name: c.name}
}

// JoinWith recorre la asociación to-one (o el embebido) a con el tipo de join indicado.
func JoinWith[Z, T, R any](f FromBuilder[Z, T], a Attr[T, R], jt JoinType) FromBuilder[Z, R] {
	return FromBuilder[Z, R]{steps: concat(f.steps, a.steps, joinStep{name: a.name, jt: jt})}
}

func Join[Z, T, R any](f FromBuilder[Z, T], a Attr[T, R]) FromBuilder[Z, R] {
	return JoinWith(f, a, JoinInner)
}

func LeftJoin[Z, T, R any](f FromBuilder[Z, T], a Attr[T, R]) FromBuilder[Z, R] {
	return JoinWith(f, a, JoinLeft)
}

// JoinCollectionWith recorre los elementos de la colección c. A diferencia de
// un join to-one, multiplica filas: combínese con Distinct() si hace falta.
func JoinCollectionWith[Z, T, E any](f FromBuilder[Z, T], c Coll[T, E], jt JoinType) FromBuilder[Z, E] {
	return FromBuilder[Z, E]{steps: concat(f.steps, c.steps, joinStep{name: c.name, jt: jt, collection: true})}
}

func JoinCollection[Z, T, E any](f FromBuilder[Z, T], c Coll[T, E]) FromBuilder[Z, E] {
	return JoinCollectionWith(f, c, JoinInner)
}

func LeftJoinCollection[Z, T, E any](f FromBuilder[Z, T], c Coll[T, E]) FromBuilder[Z, E] {
	return JoinCollectionWith(f, c, JoinLeft)
}

// --- Atajos desde un atributo de la raíz ---

func ToJoin[Z, R any](a Attr[Z, R]) FromBuilder[Z, R] {
	return Join(Root[Z](), a)
}

func ToLeftJoin[Z, R any](a Attr[Z, R]) FromBuilder[Z, R] {
	return LeftJoin(Root[Z](), a)
}

func ToCollectionJoin[Z, E any](c Coll[Z, E]) FromBuilder[Z, E] {
	return JoinCollection(Root[Z](), c)
}

func ToCollectionLeftJoin[Z, E any](c Coll[Z, E]) FromBuilder[Z, E] {
	return LeftJoinCollection(Root[Z](), c)
}

func concat(base []joinStep, rest []joinStep, extra ...joinStep) []joinStep {
	out := make([]joinStep, 0, len(base)+len(rest)+len(extra))
	out = append(out, base...)
	out = append(out, rest...)
	return append(out, extra...)
}
