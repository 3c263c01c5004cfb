package memcrit

import (
	"reflect"
	"strings"
	"time"

	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
)

// ---------------- Lógica de tres valores ----------------

type tri int8

const (
	no tri = iota
	unknown
	yes
)

func and3(a, b tri) tri {
	if a == no || b == no {
		return no
	}
	if a == yes && b == yes {
		return yes
	}
	return unknown
}

func or3(a, b tri) tri {
	if a == yes || b == yes {
		return yes
	}
	if a == no && b == no {
		return no
	}
	return unknown
}

// not2 es la negación de dos valores: sólo lo verdadero pasa a falso.
func not2(a tri) tri {
	if a == yes {
		return no
	}
	return yes
}

func truth(b bool) tri {
	if b {
		return yes
	}
	return no
}

// ---------------- Comparación de valores ----------------

// plain desreferencia v; ok es false para NULL.
func plain(v reflect.Value) (any, bool) {
	v, ok := meta.Indirect(v)
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

func normalize(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	rv, ok := meta.Indirect(reflect.ValueOf(v))
	if !ok {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return rv.Bool(), true
	}
	if t, ok := rv.Interface().(time.Time); ok {
		return t, true
	}
	return rv.Interface(), true
}

// compare ordena a y b. ok es false si alguno es NULL o no son comparables.
func compare(a, b any) (int, bool) {
	x, okx := normalize(a)
	y, oky := normalize(b)
	if !okx || !oky {
		return 0, false
	}
	if xi, ok := x.(int64); ok {
		if yi, ok := y.(int64); ok {
			return cmpOrdered(xi, yi), true
		}
		x = float64(xi)
	}
	if yi, ok := y.(int64); ok {
		y = float64(yi)
	}
	switch xv := x.(type) {
	case float64:
		if yv, ok := y.(float64); ok {
			return cmpOrdered(xv, yv), true
		}
	case string:
		if yv, ok := y.(string); ok {
			return strings.Compare(xv, yv), true
		}
	case bool:
		if yv, ok := y.(bool); ok {
			switch {
			case xv == yv:
				return 0, true
			case !xv:
				return -1, true
			default:
				return 1, true
			}
		}
	case time.Time:
		if yv, ok := y.(time.Time); ok {
			return xv.Compare(yv), true
		}
	}
	if reflect.DeepEqual(x, y) {
		return 0, true
	}
	return 0, false
}

func cmpOrdered[N int64 | float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
