// Package inspect classifies runtime values and extracts their metadata.
//
// Go has no universal "list every attribute" facility, so every value is
// explored through the Inspectable capability: a value either implements it
// directly, has an Adapter registered for its type, or falls back to the
// reflection adapter.
package inspect

import (
	"fmt"
	"reflect"
)

// Attribute is one named member of a value. Resolve is called lazily and may
// fail, in which case the member is skipped.
type Attribute struct {
	Name    string
	Resolve func() (any, error)
}

// Inspectable is implemented by values that enumerate their own attributes.
type Inspectable interface {
	Attributes() []Attribute
}

// Documented values provide their own documentation text.
type Documented interface {
	Doc() string
}

// Signed values are callable and describe their own call signature.
type Signed interface {
	Signature() (string, error)
}

// Sourced values provide their own source listing.
type Sourced interface {
	Source() (string, error)
}

// Helper values provide a raw help page. The page may contain overstrike
// sequences; they are stripped before display.
type Helper interface {
	Help() string
}

// Value returns an Attribute that resolves to v.
func Value(name string, v any) Attribute {
	return Attribute{Name: name, Resolve: func() (any, error) { return v, nil }}
}

// Module is a named, ordered namespace of members. It stands in for an
// importable package, which Go cannot reach at runtime.
type Module struct {
	path    string
	doc     string
	names   []string
	members map[string]any
}

// NewModule creates an empty module with the given import path and doc text.
func NewModule(path, doc string) *Module {
	return &Module{path: path, doc: doc, members: make(map[string]any)}
}

// Add registers a member and returns the module for chaining. Re-adding a
// name replaces its value but keeps its original position.
func (m *Module) Add(name string, v any) *Module {
	if _, ok := m.members[name]; !ok {
		m.names = append(m.names, name)
	}
	m.members[name] = v
	return m
}

// Path returns the module's import path.
func (m *Module) Path() string { return m.path }

// Doc implements Documented.
func (m *Module) Doc() string { return m.doc }

// Member returns the member registered under name.
func (m *Module) Member(name string) (any, bool) {
	v, ok := m.members[name]
	return v, ok
}

// Names returns member names in registration order.
func (m *Module) Names() []string {
	return append([]string(nil), m.names...)
}

// Attributes implements Inspectable.
func (m *Module) Attributes() []Attribute {
	attrs := make([]Attribute, 0, len(m.names))
	for _, name := range m.names {
		attrs = append(attrs, Value(name, m.members[name]))
	}
	return attrs
}

func (m *Module) String() string {
	return fmt.Sprintf("<module %q>", m.path)
}

// Type wraps a reflect.Type so that a type can be explored like a class.
type Type struct {
	reflect.Type
}

// TypeOf returns the Type of v's dynamic type.
func TypeOf(v any) Type {
	return Type{reflect.TypeOf(v)}
}

// TypeFor returns the Type for T, which may be an interface type.
func TypeFor[T any]() Type {
	return Type{reflect.TypeFor[T]()}
}

func (t Type) String() string {
	if t.Type == nil {
		return "<type nil>"
	}
	return "<type " + t.Type.String() + ">"
}

// Attributes implements Inspectable: exported methods of T and *T, struct
// fields as their field types, and the element/key types of composites.
func (t Type) Attributes() []Attribute {
	if t.Type == nil {
		return nil
	}

	var attrs []Attribute
	seen := make(map[string]bool)

	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			seen[f.Name] = true
			attrs = append(attrs, Value(f.Name, Type{f.Type}))
		}
	}

	addMethods := func(rt reflect.Type) {
		for i := 0; i < rt.NumMethod(); i++ {
			m := rt.Method(i)
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			attrs = append(attrs, Value(m.Name, &Method{Recv: rt, Decl: m}))
		}
	}
	addMethods(t.Type)
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer {
		addMethods(reflect.PointerTo(t.Type))
	}

	switch t.Kind() {
	case reflect.Map:
		attrs = append(attrs, Value("key", Type{t.Key()}), Value("elem", Type{t.Elem()}))
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Chan:
		attrs = append(attrs, Value("elem", Type{t.Elem()}))
	}

	return attrs
}

// Method is a method of a receiver type. A bound method carries the receiver
// value it was taken from; an unbound one is a method expression.
type Method struct {
	Recv  reflect.Type
	Decl  reflect.Method
	Bound reflect.Value
}

// IsBound reports whether the method is bound to a receiver value.
func (m *Method) IsBound() bool { return m.Bound.IsValid() }

// FullName returns "Recv.Name", e.g. "*strings.Builder.WriteString".
func (m *Method) FullName() string {
	return m.Recv.String() + "." + m.Decl.Name
}

func (m *Method) String() string {
	return "<method " + m.FullName() + ">"
}

// Object is an insertion-ordered, string-keyed map. Loaders produce it so
// that documents keep their key order.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores v under key, appending key if it is new.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Attributes implements Inspectable.
func (o *Object) Attributes() []Attribute {
	attrs := make([]Attribute, 0, len(o.keys))
	for _, k := range o.keys {
		attrs = append(attrs, Value(k, o.values[k]))
	}
	return attrs
}
