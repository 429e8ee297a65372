package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/Benny93/objex-go/internal/parsers"
)

// Field names a metadata field.
type Field string

const (
	FieldDoc       Field = "doc"
	FieldHelp      Field = "help"
	FieldSignature Field = "signature"
	FieldSource    Field = "source"
	FieldPreview   Field = "preview"
)

// Metadata is the extracted description of a value. Every field is computed
// independently; a field that could not be computed is empty and, if its
// computation failed rather than simply not applying, has an entry in
// Failures.
type Metadata struct {
	// Doc is the cleaned documentation text.
	Doc string

	// Help is Doc when non-empty, otherwise a rendered help page.
	Help string

	// Signature is the call signature; valid only if HasSignature.
	Signature    string
	HasSignature bool

	// Source is the declaration's source text; valid only if HasSource.
	Source    string
	HasSource bool

	// Preview is a short bounded rendering of the value.
	Preview string

	// Failures records why a field is unavailable.
	Failures map[Field]error
}

func (m *Metadata) fail(f Field, err error) {
	if m.Failures == nil {
		m.Failures = make(map[Field]error)
	}
	m.Failures[f] = err
}

// Extractor computes Metadata for values.
type Extractor struct {
	registry *Registry
	locator  *SourceLocator
	preview  PreviewOptions
	logger   *slog.Logger
}

// ExtractorConfig configures an Extractor. Zero fields select defaults: no
// registry adapters, no source lookup, default preview bounds and a discarding
// logger.
type ExtractorConfig struct {
	Registry *Registry
	Locator  *SourceLocator
	Preview  PreviewOptions
	Logger   *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{
		registry: cfg.Registry,
		locator:  cfg.Locator,
		preview:  cfg.Preview.withDefaults(),
		logger:   logger,
	}
}

// Extract computes the metadata of v, reached under name. It never panics.
func (e *Extractor) Extract(v any, name string) Metadata {
	var m Metadata
	flags := Classify(v)
	ctx := context.Background()

	m.Doc, _ = e.field(&m, name, FieldDoc, func() (string, error) {
		return e.doc(ctx, v)
	})
	m.Signature, m.HasSignature = e.field(&m, name, FieldSignature, func() (string, error) {
		return e.signature(ctx, v, name, flags)
	})
	m.Source, m.HasSource = e.field(&m, name, FieldSource, func() (string, error) {
		return e.source(ctx, v)
	})
	m.Preview, _ = e.field(&m, name, FieldPreview, func() (string, error) {
		return Preview(v, e.preview), nil
	})
	m.Help, _ = e.field(&m, name, FieldHelp, func() (string, error) {
		return e.help(v, name, flags, m)
	})

	return m
}

// field runs fn behind a recover boundary. ok is false when the field is
// empty, not applicable, or failed.
func (e *Extractor) field(m *Metadata, name string, f Field, fn func() (string, error)) (s string, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			m.fail(f, err)
			e.logger.Debug("metadata field failed", "name", name, "field", f, "error", err)
			s, ok = "", false
		}
	}()

	s, err := fn()
	if err != nil {
		if !errors.Is(err, ErrNoSource) {
			m.fail(f, err)
			e.logger.Debug("metadata field failed", "name", name, "field", f, "error", err)
		}
		return "", false
	}
	return s, s != ""
}

func (e *Extractor) doc(ctx context.Context, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case *Module:
		if x.Doc() != "" || e.locator == nil || !isStdlibPath(x.Path()) {
			return CleanDoc(x.Doc()), nil
		}
		doc, err := e.locator.Package(ctx, x.Path())
		return CleanDoc(doc), err
	case Documented:
		return CleanDoc(x.Doc()), nil
	}

	d, err := e.decl(ctx, v)
	if err != nil || d == nil {
		return "", err
	}
	return CleanDoc(d.Doc), nil
}

func (e *Extractor) signature(ctx context.Context, v any, name string, flags Flags) (string, error) {
	if s, ok := v.(Signed); ok {
		return s.Signature()
	}
	if !flags.Callable || flags.Class || flags.Nil {
		return "", nil
	}

	d, err := e.decl(ctx, v)
	if err == nil && d != nil && d.Signature != "" {
		if d.Kind == parsers.DeclLiteral {
			return name + strings.TrimPrefix(d.Signature, "func"), nil
		}
		return d.Signature, nil
	}

	switch x := v.(type) {
	case *Method:
		return reflectSignature(x.Decl.Name, methodType(x)), nil
	default:
		return reflectSignature(name, reflect.TypeOf(v)), nil
	}
}

func (e *Extractor) source(ctx context.Context, v any) (string, error) {
	if s, ok := v.(Sourced); ok {
		return s.Source()
	}
	switch v.(type) {
	case Type, *Method:
	default:
		if reflect.TypeOf(v) == nil || reflect.TypeOf(v).Kind() != reflect.Func {
			return "", nil
		}
	}

	d, err := e.decl(ctx, v)
	if err != nil || d == nil {
		return "", err
	}
	return d.Content, nil
}

func (e *Extractor) help(v any, name string, flags Flags, m Metadata) (string, error) {
	if m.Doc != "" {
		return m.Doc, nil
	}
	if h, ok := v.(Helper); ok {
		return StripOverstrike(h.Help()), nil
	}

	page := helpPage{
		name:      name,
		kind:      flags.Category().String(),
		flags:     flags.Names(),
		signature: m.Signature,
		value:     m.Preview,
	}
	if t := reflect.TypeOf(v); t != nil {
		page.typ = t.String()
	}
	if attrs, err := e.registry.Attributes(v); err == nil {
		for _, a := range attrs {
			page.members = append(page.members, a.Name)
		}
	}
	return StripOverstrike(page.render()), nil
}

// decl locates the declaration behind v: the function for func values, the
// method, the type for Types, and the named type of any other value.
func (e *Extractor) decl(ctx context.Context, v any) (*parsers.Decl, error) {
	if e.locator == nil {
		return nil, ErrNoSource
	}
	switch x := v.(type) {
	case Type:
		if x.Type == nil {
			return nil, ErrNoSource
		}
		return e.locator.Type(ctx, x.Type)
	case *Method:
		return e.locator.Method(ctx, x)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func {
		if strings.HasSuffix(funcName(rv), "-fm") {
			return nil, ErrNoSource
		}
		return e.locator.Func(ctx, rv)
	}
	return e.locator.Type(ctx, rv.Type())
}

// methodType returns the func type of m as seen by a caller: without the
// receiver for bound methods, with it for method expressions.
func methodType(m *Method) reflect.Type {
	if m.IsBound() {
		return m.Bound.Type()
	}
	return m.Decl.Type
}

// reflectSignature renders a signature from a func type, e.g.
// "Join(...string) string".
func reflectSignature(name string, t reflect.Type) string {
	if t == nil || t.Kind() != reflect.Func {
		return ""
	}

	params := make([]string, t.NumIn())
	for i := range params {
		if t.IsVariadic() && i == t.NumIn()-1 {
			params[i] = "..." + t.In(i).Elem().String()
			continue
		}
		params[i] = t.In(i).String()
	}
	sig := name + "(" + strings.Join(params, ", ") + ")"

	switch t.NumOut() {
	case 0:
	case 1:
		sig += " " + t.Out(0).String()
	default:
		results := make([]string, t.NumOut())
		for i := range results {
			results[i] = t.Out(i).String()
		}
		sig += " (" + strings.Join(results, ", ") + ")"
	}
	return sig
}
