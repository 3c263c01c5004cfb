package meta

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
)

// ---------------- Acceso por reflexión ----------------

// Indirect sigue punteros e interfaces. ok es false si encuentra nil.
func Indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

// FieldOf devuelve el campo Go de a dentro de obj. Admite rutas con punto
// ("Price.Amount").
func FieldOf(obj reflect.Value, a Attribute) (reflect.Value, error) {
	if a.Field == "" {
		return reflect.Value{}, fmt.Errorf("%s has no struct field: %w", a.Name, spec.ErrUnsupported)
	}
	v := obj
	for _, part := range strings.Split(a.Field, ".") {
		var ok bool
		v, ok = Indirect(v)
		if !ok {
			return reflect.Value{}, nil
		}
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("%s: %s is not a struct: %w", a.Name, v.Type(), spec.ErrNotTraversable)
		}
		v = v.FieldByName(part)
		if !v.IsValid() {
			return reflect.Value{}, fmt.Errorf("%s: field %s: %w", a.Name, part, spec.ErrUnknownAttribute)
		}
	}
	return v, nil
}

// IDOf extrae el identificador de una instancia de e. Si v ya es un valor
// escalar (no struct) se devuelve tal cual.
func IDOf(e *Entity, v any) (any, error) {
	rv, ok := Indirect(reflect.ValueOf(v))
	if !ok {
		return nil, nil
	}
	if rv.Kind() != reflect.Struct {
		return rv.Interface(), nil
	}
	f, err := FieldOf(rv, e.IDAttr())
	if err != nil {
		return nil, fmt.Errorf("id of %s: %w", e.Name, err)
	}
	if !f.IsValid() {
		return nil, nil
	}
	return f.Interface(), nil
}
