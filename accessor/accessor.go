package accessor

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/hupe1980/idxset/value"
)

// TagName is the struct tag consulted before the Go field name.
const TagName = "idx"

// Reader extracts a named attribute from an object.
type Reader interface {
	Read(obj any, attr string) (v value.Value, found bool, err error)
}

// ReaderFunc adapts a plain function to Reader.
type ReaderFunc func(obj any, attr string) (value.Value, bool, error)

// Read implements Reader.
func (f ReaderFunc) Read(obj any, attr string) (value.Value, bool, error) { return f(obj, attr) }

// For returns the Reader best suited to objects of type T.
func For[T any]() Reader {
	return forType(reflect.TypeFor[T]())
}

func forType(t reflect.Type) Reader {
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	switch {
	case base.Kind() == reflect.Struct:
		return NewStructReader()
	case base.Kind() == reflect.Map && base.Key().Kind() == reflect.String:
		return MapReader{}
	default:
		return Dynamic()
	}
}

// Dynamic returns a Reader that dispatches on the runtime type of each object.
// It suits collections of type any holding mixed maps and structs.
func Dynamic() Reader {
	return dynamicReader{structs: NewStructReader()}
}

type dynamicReader struct {
	structs *StructReader
}

func (r dynamicReader) Read(obj any, attr string) (value.Value, bool, error) {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return value.Value{}, false, nil
		}
		rv = rv.Elem()
	}
	switch {
	case rv.Kind() == reflect.Struct:
		return r.structs.readValue(rv, attr)
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		return MapReader{}.Read(obj, attr)
	default:
		return value.Value{}, false, nil
	}
}

// MapReader reads attributes from maps keyed by string.
type MapReader struct{}

// Read implements Reader.
func (MapReader) Read(obj any, attr string) (value.Value, bool, error) {
	switch m := obj.(type) {
	case map[string]any:
		raw, ok := m[attr]
		if !ok {
			return value.Value{}, false, nil
		}
		return convert(attr, raw)
	case map[string]value.Value:
		v, ok := m[attr]
		return v, ok, nil
	case nil:
		return value.Value{}, false, nil
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return value.Value{}, false, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return value.Value{}, false, nil
	}

	mv := rv.MapIndex(reflect.ValueOf(attr).Convert(rv.Type().Key()))
	if !mv.IsValid() {
		return value.Value{}, false, nil
	}
	return convert(attr, mv.Interface())
}

// StructReader reads exported struct fields. A field matches an attribute by
// its `idx` tag, then its exact name, then its name ignoring case. Field
// lookups are cached per type.
type StructReader struct {
	fields sync.Map // fieldKey -> []int (nil when absent)
}

type fieldKey struct {
	t    reflect.Type
	attr string
}

// NewStructReader returns a StructReader with an empty field cache.
func NewStructReader() *StructReader {
	return &StructReader{}
}

// Read implements Reader.
func (r *StructReader) Read(obj any, attr string) (value.Value, bool, error) {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return value.Value{}, false, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return value.Value{}, false, nil
	}
	return r.readValue(rv, attr)
}

func (r *StructReader) readValue(rv reflect.Value, attr string) (value.Value, bool, error) {
	index := r.lookup(rv.Type(), attr)
	if index == nil {
		return value.Value{}, false, nil
	}

	fv, err := rv.FieldByIndexErr(index)
	if err != nil {
		// Nil embedded pointer on the path.
		return value.Value{}, false, nil
	}
	return convert(attr, fv.Interface())
}

func (r *StructReader) lookup(t reflect.Type, attr string) []int {
	key := fieldKey{t: t, attr: attr}
	if cached, ok := r.fields.Load(key); ok {
		return cached.([]int)
	}
	index := resolveField(t, attr)
	r.fields.Store(key, index)
	return index
}

func resolveField(t reflect.Type, attr string) []int {
	fields := reflect.VisibleFields(t)

	for _, f := range fields {
		if !f.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(f.Tag.Get(TagName), ","); tag == attr {
			return f.Index
		}
	}
	if f, ok := t.FieldByName(attr); ok && f.IsExported() {
		return f.Index
	}
	for _, f := range fields {
		if f.IsExported() && !f.Anonymous && strings.EqualFold(f.Name, attr) {
			return f.Index
		}
	}
	return nil
}

// TupleReader reads positional attributes from slices and arrays.
type TupleReader struct {
	positions map[string]int
}

// Tuple returns a TupleReader naming the positions of a tuple in order.
func Tuple(names ...string) *TupleReader {
	positions := make(map[string]int, len(names))
	for i, n := range names {
		positions[n] = i
	}
	return &TupleReader{positions: positions}
}

// Read implements Reader.
func (r *TupleReader) Read(obj any, attr string) (value.Value, bool, error) {
	pos, ok := r.positions[attr]
	if !ok {
		return value.Value{}, false, nil
	}

	if items, ok := obj.([]any); ok {
		if pos >= len(items) {
			return value.Value{}, false, nil
		}
		return convert(attr, items[pos])
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return value.Value{}, false, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return value.Value{}, false, nil
	}
	if pos >= rv.Len() {
		return value.Value{}, false, nil
	}
	return convert(attr, rv.Index(pos).Interface())
}

// Getter computes a derived attribute from an object.
type Getter func(obj any) any

// Funcs maps computed attribute names to getters.
type Funcs map[string]Getter

// WithFuncs overlays computed attributes on base. Getters shadow attributes
// of the same name in base.
func WithFuncs(base Reader, funcs Funcs) Reader {
	if len(funcs) == 0 {
		return base
	}
	return funcReader{base: base, funcs: funcs}
}

type funcReader struct {
	base  Reader
	funcs Funcs
}

func (r funcReader) Read(obj any, attr string) (value.Value, bool, error) {
	if get, ok := r.funcs[attr]; ok {
		return convert(attr, get(obj))
	}
	return r.base.Read(obj, attr)
}

func convert(attr string, raw any) (value.Value, bool, error) {
	v, err := value.FromAny(raw)
	if err != nil {
		return value.Value{}, true, fmt.Errorf("attribute %q: %w", attr, err)
	}
	return v, true, nil
}
