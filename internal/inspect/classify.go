package inspect

import (
	"reflect"
	"runtime"
	"strings"
)

// Flags are independent capability markers describing a value. A class is
// also callable, so flags are deliberately not an exclusive variant.
type Flags struct {
	Callable  bool
	Class     bool
	Module    bool
	Function  bool
	Method    bool
	Builtin   bool
	Generator bool
	Coroutine bool
	Abstract  bool
	Struct    bool
	Map       bool
	Slice     bool
	Pointer   bool
	Chan      bool
	Scalar    bool
	Error     bool
	Nil       bool
}

// Filter tokens, one per flag.
const (
	TokenCallable  = "callable"
	TokenClass     = "class"
	TokenModule    = "module"
	TokenFunction  = "function"
	TokenMethod    = "method"
	TokenBuiltin   = "builtin"
	TokenGenerator = "generator"
	TokenCoroutine = "coroutine"
	TokenAbstract  = "abstract"
	TokenStruct    = "struct"
	TokenMap       = "map"
	TokenSlice     = "slice"
	TokenPointer   = "pointer"
	TokenChan      = "chan"
	TokenScalar    = "scalar"
	TokenError     = "error"
	TokenNil       = "nil"
)

// Tokens returns every flag token in display order.
func Tokens() []string {
	return []string{
		TokenClass, TokenFunction, TokenMethod, TokenModule, TokenBuiltin,
		TokenCallable, TokenGenerator, TokenCoroutine, TokenAbstract,
		TokenStruct, TokenMap, TokenSlice, TokenPointer, TokenChan, TokenScalar,
		TokenError, TokenNil,
	}
}

// Has reports whether the flag named by token is set. Unknown tokens are
// never set.
func (f Flags) Has(token string) bool {
	switch token {
	case TokenCallable:
		return f.Callable
	case TokenClass:
		return f.Class
	case TokenModule:
		return f.Module
	case TokenFunction:
		return f.Function
	case TokenMethod:
		return f.Method
	case TokenBuiltin:
		return f.Builtin
	case TokenGenerator:
		return f.Generator
	case TokenCoroutine:
		return f.Coroutine
	case TokenAbstract:
		return f.Abstract
	case TokenStruct:
		return f.Struct
	case TokenMap:
		return f.Map
	case TokenSlice:
		return f.Slice
	case TokenPointer:
		return f.Pointer
	case TokenChan:
		return f.Chan
	case TokenScalar:
		return f.Scalar
	case TokenError:
		return f.Error
	case TokenNil:
		return f.Nil
	}
	return false
}

// Names returns the tokens of all set flags.
func (f Flags) Names() []string {
	var names []string
	for _, tok := range Tokens() {
		if f.Has(tok) {
			names = append(names, tok)
		}
	}
	return names
}

// Category is the display category of a value.
type Category int

const (
	CategoryValue Category = iota
	CategoryModule
	CategoryCallable
	CategoryClass
)

func (c Category) String() string {
	switch c {
	case CategoryClass:
		return "class"
	case CategoryCallable:
		return "callable"
	case CategoryModule:
		return "module"
	default:
		return "value"
	}
}

// Category returns the display category; the first match in the order
// class, callable, module wins.
func (f Flags) Category() Category {
	switch {
	case f.Class:
		return CategoryClass
	case f.Callable:
		return CategoryCallable
	case f.Module:
		return CategoryModule
	default:
		return CategoryValue
	}
}

// Classify computes the flags of v. It is total: any panic while probing a
// value leaves the remaining flags unset.
func Classify(v any) (f Flags) {
	defer func() { _ = recover() }()

	if v == nil {
		f.Nil = true
		return f
	}

	switch x := v.(type) {
	case *Module:
		f.Module = true
		f.Builtin = x != nil && isStdlibPath(x.path)
		return f
	case Type:
		f.Class = true
		f.Callable = true
		f.Abstract = x.Type != nil && x.Kind() == reflect.Interface
		return f
	case *Method:
		f.Callable = true
		f.Method = true
		if x != nil && x.Recv != nil {
			f.Builtin = isStdlibPath(baseType(x.Recv).PkgPath())
		}
		return f
	case *Object:
		f.Map = true
		return f
	}

	if _, ok := v.(Signed); ok {
		f.Callable = true
	}
	if _, ok := v.(error); ok {
		f.Error = true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		f.Callable = true
		if rv.IsNil() {
			f.Nil = true
			return f
		}
		name := funcName(rv)
		if strings.HasSuffix(name, "-fm") {
			f.Method = true
		} else {
			f.Function = true
		}
		f.Builtin = isStdlibPath(funcPackage(name))
		f.Generator = isSeqFunc(rv.Type())
		f.Coroutine = returnsRecvChan(rv.Type())
	case reflect.Chan:
		f.Chan = true
		f.Nil = rv.IsNil()
		f.Generator = rv.Type().ChanDir()&reflect.RecvDir != 0
	case reflect.Struct:
		f.Struct = true
	case reflect.Map:
		f.Map = true
		f.Nil = rv.IsNil()
	case reflect.Slice:
		f.Slice = true
		f.Nil = rv.IsNil()
	case reflect.Array:
		f.Slice = true
	case reflect.Pointer, reflect.UnsafePointer:
		f.Pointer = true
		f.Nil = rv.IsNil()
		if rv.Kind() == reflect.Pointer && rv.Type().Elem().Kind() == reflect.Struct {
			f.Struct = true
		}
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		f.Scalar = true
	}

	return f
}

// TypeName returns the runtime type name used for type filtering and
// sorting: the declared name of named types, the kind otherwise.
func TypeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case *Module:
		return "module"
	case Type:
		return "type"
	case *Method:
		return "method"
	case *Object:
		return "map"
	case error:
		if reflect.TypeOf(x).Name() == "" {
			return "error"
		}
	}

	t := reflect.TypeOf(v)
	if name := t.Name(); name != "" {
		return name
	}
	if t.Kind() == reflect.Pointer {
		return "ptr"
	}
	return t.Kind().String()
}

// funcName returns the runtime name of a func value, e.g. "strings.Split".
func funcName(rv reflect.Value) string {
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil {
		return ""
	}
	return fn.Name()
}

// funcPackage extracts the import path from a runtime func name such as
// "path/filepath.Join" or "github.com/a/b.(*T).M".
func funcPackage(name string) string {
	slash := strings.LastIndex(name, "/")
	dot := strings.Index(name[slash+1:], ".")
	if dot < 0 {
		return ""
	}
	return name[:slash+1+dot]
}

// isStdlibPath reports whether an import path belongs to the standard
// library: its first element has no dot and it is not package main.
func isStdlibPath(path string) bool {
	if path == "" || path == "main" {
		return false
	}
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

// baseType strips pointers. Recursive pointer types such as "type P *P"
// stop after a fixed number of steps.
func baseType(t reflect.Type) reflect.Type {
	for i := 0; t.Kind() == reflect.Pointer && i < 8; i++ {
		t = t.Elem()
	}
	return t
}

// isSeqFunc matches the iter.Seq / iter.Seq2 shape: func(yield func(...) bool).
func isSeqFunc(t reflect.Type) bool {
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}
	yield := t.In(0)
	return yield.Kind() == reflect.Func && yield.NumOut() == 1 && yield.Out(0).Kind() == reflect.Bool
}

func returnsRecvChan(t reflect.Type) bool {
	for i := 0; i < t.NumOut(); i++ {
		out := t.Out(i)
		if out.Kind() == reflect.Chan && out.ChanDir() == reflect.RecvDir {
			return true
		}
	}
	return false
}
