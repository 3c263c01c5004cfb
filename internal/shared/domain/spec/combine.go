package spec

// ---------------- Álgebra booleana ----------------

// And combina las especificaciones en orden. Las entradas nil o None se
// ignoran; si no queda ninguna el resultado es None (sin filtro).
func And[T any](specs ...Specification[T]) Specification[T] {
	return fold(opAnd, specs)
}

// Or combina las especificaciones en orden con la misma regla que And: sin
// operandos el resultado es None, es decir, encuentra todo.
func Or[T any](specs ...Specification[T]) Specification[T] {
	return fold(opOr, specs)
}

// Not niega s. Not(Not(s)) devuelve s y Not de nil o None no encuentra nada.
func Not[T any](s Specification[T]) Specification[T] {
	if IsNone(s) {
		return MatchNone[T]()
	}
	switch v := s.(type) {
	case negation[T]:
		return v.inner
	case constant[T]:
		return constant[T]{value: !v.value, distinct: v.distinct}
	}
	return negation[T]{inner: s}
}

func fold[T any](op opKind, specs []Specification[T]) Specification[T] {
	var acc Specification[T]
	for _, s := range specs {
		if IsNone(s) {
			continue
		}
		if acc == nil {
			acc = s
			continue
		}
		acc = binary[T]{op: op, left: acc, right: s}
	}
	if acc == nil {
		return None[T]()
	}
	return acc
}
