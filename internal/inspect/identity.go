package inspect

import "reflect"

type addrKey struct {
	kind reflect.Kind
	typ  reflect.Type
	ptr  uintptr
}

// Identity returns a comparable key identifying the referent of v, used for
// cycle detection. Plain values (scalars, structs, strings) have no identity
// and report ok=false; two of them are never considered the same node.
func Identity(v any) (key any, ok bool) {
	defer func() {
		if recover() != nil {
			key, ok = nil, false
		}
	}()

	switch x := v.(type) {
	case nil:
		return nil, false
	case *Module:
		return x, x != nil
	case *Object:
		return x, x != nil
	case Type:
		return x.Type, x.Type != nil
	case *Method:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			return nil, false
		}
		return addrKey{kind: rv.Kind(), typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Slice:
		if rv.IsNil() || rv.Len() == 0 {
			return nil, false
		}
		return addrKey{kind: rv.Kind(), typ: rv.Type(), ptr: rv.Pointer()}, true
	}
	return nil, false
}
