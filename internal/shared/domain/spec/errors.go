package spec

import "errors"

var (
	// ErrUnknownAttribute se devuelve cuando una entidad no tiene el atributo pedido.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrNotTraversable indica que el atributo existe pero no admite la operación
	// (p.ej. un join de colección sobre un atributo escalar).
	ErrNotTraversable = errors.New("attribute is not traversable")
	// ErrUnsupported lo devuelven los backends que no soportan una primitiva.
	ErrUnsupported = errors.New("operation not supported by backend")
)
