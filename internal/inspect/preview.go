package inspect

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var durationType = reflect.TypeFor[time.Duration]()

// PreviewOptions bound the size of a preview.
type PreviewOptions struct {
	// MaxElements is the number of elements, entries or fields rendered per
	// container before the ellipsis.
	MaxElements int

	// MaxString is the number of runes of a string rendered before the ellipsis.
	MaxString int

	// MaxDepth is the nesting depth below which containers collapse to the
	// ellipsis.
	MaxDepth int

	// MaxWidth is the total rune width of the preview.
	MaxWidth int
}

// Ellipsis marks truncated output.
const Ellipsis = "..."

// DefaultPreviewOptions returns the default preview bounds.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{
		MaxElements: 10,
		MaxString:   60,
		MaxDepth:    3,
		MaxWidth:    120,
	}
}

func (o PreviewOptions) withDefaults() PreviewOptions {
	d := DefaultPreviewOptions()
	if o.MaxElements <= 0 {
		o.MaxElements = d.MaxElements
	}
	if o.MaxString <= 0 {
		o.MaxString = d.MaxString
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = d.MaxWidth
	}
	return o
}

// Preview renders a short, bounded, single-line representation of v.
// Containers are cut after MaxElements items and a pointer already being
// rendered prints as "&...", so cyclic and very large structures render in
// bounded time.
func Preview(v any, opts PreviewOptions) string {
	opts = opts.withDefaults()
	p := previewer{opts: opts, active: make(map[uintptr]bool)}
	return truncate(p.value(reflect.ValueOf(v), 0), opts.MaxWidth)
}

type previewer struct {
	opts PreviewOptions

	// active holds the pointers on the current rendering path.
	active map[uintptr]bool
}

func (p previewer) value(rv reflect.Value, depth int) string {
	if !rv.IsValid() {
		return "nil"
	}

	if rv.CanInterface() {
		switch x := rv.Interface().(type) {
		case *Module, Type, *Method:
			return fmt.Sprint(x)
		case *Object:
			return p.object(x, depth)
		case error:
			if rv.Kind() != reflect.Pointer || !rv.IsNil() {
				return "error(" + p.str(x.Error()) + ")"
			}
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Type() == durationType && rv.CanInterface() {
			return fmt.Sprint(rv.Interface())
		}
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits())
	case reflect.Complex64, reflect.Complex128:
		return strconv.FormatComplex(rv.Complex(), 'g', -1, rv.Type().Bits())
	case reflect.String:
		return p.str(rv.String())
	case reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return p.value(rv.Elem(), depth)
	case reflect.Pointer:
		if rv.IsNil() {
			return "nil"
		}
		addr := rv.Pointer()
		if p.active[addr] {
			return "&" + Ellipsis
		}
		p.active[addr] = true
		defer delete(p.active, addr)

		elem := rv.Elem()
		if elem.Kind() == reflect.Pointer {
			if depth >= p.opts.MaxDepth {
				return "&" + Ellipsis
			}
			return "&" + p.value(elem, depth+1)
		}
		return "&" + p.value(elem, depth)
	case reflect.Func:
		if rv.IsNil() {
			return "nil"
		}
		if name := funcName(rv); name != "" {
			return "func " + name
		}
		return rv.Type().String()
	case reflect.Chan:
		if rv.IsNil() {
			return "nil"
		}
		return fmt.Sprintf("%s (len %d, cap %d)", rv.Type(), rv.Len(), rv.Cap())
	case reflect.UnsafePointer:
		return fmt.Sprintf("unsafe.Pointer(%#x)", rv.Pointer())
	case reflect.Slice:
		if rv.IsNil() {
			return "nil"
		}
		return p.list(rv, depth)
	case reflect.Array:
		return p.list(rv, depth)
	case reflect.Map:
		if rv.IsNil() {
			return "nil"
		}
		return p.mapping(rv, depth)
	case reflect.Struct:
		return p.structure(rv, depth)
	}
	return rv.Type().String()
}

func (p previewer) str(s string) string {
	if utf8.RuneCountInString(s) <= p.opts.MaxString {
		return strconv.Quote(s)
	}
	return strconv.Quote(string([]rune(s)[:p.opts.MaxString])) + Ellipsis
}

func (p previewer) list(rv reflect.Value, depth int) string {
	if rv.Len() == 0 {
		return "[]"
	}
	if depth >= p.opts.MaxDepth {
		return "[" + Ellipsis + "]"
	}
	n := min(rv.Len(), p.opts.MaxElements)
	parts := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		parts = append(parts, p.value(rv.Index(i), depth+1))
	}
	if rv.Len() > n {
		parts = append(parts, Ellipsis)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (p previewer) mapping(rv reflect.Value, depth int) string {
	if rv.Len() == 0 {
		return "map[]"
	}
	if depth >= p.opts.MaxDepth {
		return "map[" + Ellipsis + "]"
	}

	type entry struct {
		text string
		key  reflect.Value
	}
	keys := rv.MapKeys()
	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, entry{text: p.value(k, depth+1), key: k})
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].text < entries[b].text })

	// Only the entries that are shown get their values rendered.
	n := min(len(entries), p.opts.MaxElements)
	parts := make([]string, 0, n+1)
	for _, e := range entries[:n] {
		parts = append(parts, e.text+":"+p.value(rv.MapIndex(e.key), depth+1))
	}
	if len(entries) > n {
		parts = append(parts, Ellipsis)
	}
	return "map[" + strings.Join(parts, " ") + "]"
}

func (p previewer) object(o *Object, depth int) string {
	if o == nil {
		return "nil"
	}
	if o.Len() == 0 {
		return "{}"
	}
	if depth >= p.opts.MaxDepth {
		return "{" + Ellipsis + "}"
	}
	keys := o.Keys()
	n := min(len(keys), p.opts.MaxElements)
	parts := make([]string, 0, n+1)
	for _, k := range keys[:n] {
		v, _ := o.Get(k)
		parts = append(parts, strconv.Quote(k)+": "+p.value(reflect.ValueOf(v), depth+1))
	}
	if len(keys) > n {
		parts = append(parts, Ellipsis)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (p previewer) structure(rv reflect.Value, depth int) string {
	t := rv.Type()
	name := t.String()
	if t.Name() == "" {
		name = "struct"
	}
	if t.NumField() == 0 {
		return name + "{}"
	}
	if depth >= p.opts.MaxDepth {
		return name + "{" + Ellipsis + "}"
	}
	n := min(t.NumField(), p.opts.MaxElements)
	parts := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		parts = append(parts, t.Field(i).Name+":"+p.value(rv.Field(i), depth+1))
	}
	if t.NumField() > n {
		parts = append(parts, Ellipsis)
	}
	return name + "{" + strings.Join(parts, " ") + "}"
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	keep := width - len(Ellipsis)
	if keep < 0 {
		keep = 0
	}
	return string([]rune(s)[:keep]) + Ellipsis
}
