package inspect

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"sync"
)

// ErrUnexported is returned when resolving a struct field that cannot be
// read through reflection.
var ErrUnexported = errors.New("field is not exported")

// Adapter enumerates the attributes of values of one runtime type.
type Adapter func(v any) []Attribute

// Registry maps runtime types to Adapters. Values without a registered
// adapter use Inspectable if they implement it, and reflection otherwise.
type Registry struct {
	mu       sync.RWMutex
	adapters map[reflect.Type]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[reflect.Type]Adapter)}
}

// Register installs the adapter for values whose dynamic type is t.
func (r *Registry) Register(t reflect.Type, a Adapter) error {
	if t == nil {
		return fmt.Errorf("type required")
	}
	if a == nil {
		return fmt.Errorf("adapter required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[t] = a
	return nil
}

// Lookup returns the adapter registered for t.
func (r *Registry) Lookup(t reflect.Type) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[t]
	return a, ok
}

// Attributes lists the attributes of v in enumeration order. It never
// panics: a panicking adapter yields no attributes and an error.
func (r *Registry) Attributes(v any) (attrs []Attribute, err error) {
	defer func() {
		if p := recover(); p != nil {
			attrs, err = nil, fmt.Errorf("enumerating attributes: %v", p)
		}
	}()

	if v == nil {
		return nil, nil
	}
	if r != nil {
		if a, ok := r.Lookup(reflect.TypeOf(v)); ok {
			return a(v), nil
		}
	}
	if in, ok := v.(Inspectable); ok {
		return in.Attributes(), nil
	}
	return reflectAttributes(reflect.ValueOf(v)), nil
}

// Resolve calls a.Resolve, converting panics into errors.
func Resolve(a Attribute) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, fmt.Errorf("resolving %s: %v", a.Name, p)
		}
	}()
	if a.Resolve == nil {
		return nil, fmt.Errorf("resolving %s: no resolver", a.Name)
	}
	return a.Resolve()
}

// reflectAttributes is the fallback adapter.
func reflectAttributes(rv reflect.Value) []Attribute {
	if !rv.IsValid() {
		return nil
	}

	var attrs []Attribute
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		elem := rv.Elem()
		switch elem.Kind() {
		case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
			attrs = append(attrs, dataAttributes(elem)...)
		default:
			attrs = append(attrs, Value("*", elem.Interface()))
		}
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return reflectAttributes(rv.Elem())
	default:
		attrs = append(attrs, dataAttributes(rv)...)
	}

	return append(attrs, methodAttributes(rv)...)
}

func dataAttributes(rv reflect.Value) []Attribute {
	var attrs []Attribute
	switch rv.Kind() {
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			fv := rv.Field(i)
			attrs = append(attrs, Attribute{
				Name: f.Name,
				Resolve: func() (any, error) {
					if !fv.CanInterface() {
						return nil, fmt.Errorf("%s.%s: %w", t, f.Name, ErrUnexported)
					}
					return fv.Interface(), nil
				},
			})
		}

	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = fmt.Sprint(k.Interface())
		}
		idx := make([]int, len(keys))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return names[idx[a]] < names[idx[b]] })
		for _, i := range idx {
			k := keys[i]
			attrs = append(attrs, Attribute{
				Name: names[i],
				Resolve: func() (any, error) {
					v := rv.MapIndex(k)
					if !v.IsValid() {
						return nil, fmt.Errorf("key %v vanished", k)
					}
					return v.Interface(), nil
				},
			})
		}

	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			attrs = append(attrs, Attribute{
				Name: "[" + strconv.Itoa(i) + "]",
				Resolve: func() (any, error) {
					if i >= rv.Len() {
						return nil, fmt.Errorf("index %d out of range", i)
					}
					return rv.Index(i).Interface(), nil
				},
			})
		}
	}
	return attrs
}

func methodAttributes(rv reflect.Value) []Attribute {
	t := rv.Type()
	attrs := make([]Attribute, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		decl := t.Method(i)
		attrs = append(attrs, Attribute{
			Name: decl.Name,
			Resolve: func() (any, error) {
				return &Method{Recv: t, Decl: decl, Bound: rv.Method(i)}, nil
			},
		})
	}
	return attrs
}
