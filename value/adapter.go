package value

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
)

// FromAny converts a Go value into a typed Value.
//
// Nil slices, maps and pointers convert to Null; empty non-nil collections
// convert to an empty Array.
//
// Common native types take a fast path. Named types, pointers, arrays and
// slices of any element type are handled through reflection.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x)
	case []Value:
		if x == nil {
			return Null(), nil
		}
		return Array(x), nil
	case []any:
		if x == nil {
			return Null(), nil
		}
		arr := make([]Value, len(x))
		for i := range x {
			vv, err := FromAny(x[i])
			if err != nil {
				return Value{}, err
			}
			arr[i] = vv
		}
		return Array(arr), nil
	case []string:
		if x == nil {
			return Null(), nil
		}
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = String(x[i])
		}
		return Array(arr), nil
	case []int:
		if x == nil {
			return Null(), nil
		}
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = Int(int64(x[i]))
		}
		return Array(arr), nil
	case []float64:
		if x == nil {
			return Null(), nil
		}
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = Float(x[i])
		}
		return Array(arr), nil
	default:
		return fromReflect(reflect.ValueOf(v))
	}
}

// MustFromAny is FromAny for literals known to be convertible. It panics otherwise.
func MustFromAny(v any) Value {
	vv, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return vv
}

func fromUint(x uint64) (Value, error) {
	if x > math.MaxInt64 {
		// Avoid silently wrapping large values.
		return Value{}, fmt.Errorf("value uint64 out of range: %d", x)
	}
	return Int(int64(x)), nil
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return fromReflect(rv.Elem())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}
		fallthrough
	case reflect.Array:
		arr := make([]Value, rv.Len())
		for i := range arr {
			vv, err := fromReflect(rv.Index(i))
			if err != nil {
				return Value{}, err
			}
			arr[i] = vv
		}
		return Array(arr), nil
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		// Sets modelled as map[K]struct{} or map[K]bool index their keys,
		// ordered by Key so equal sets convert to equal arrays.
		arr := make([]Value, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			vv, err := fromReflect(iter.Key())
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, vv)
		}
		slices.SortFunc(arr, func(a, b Value) int { return strings.Compare(a.Key(), b.Key()) })
		return Array(arr), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %s", rv.Type())
	}
}
