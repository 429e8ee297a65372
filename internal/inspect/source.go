package inspect

import (
	"context"
	"errors"
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/Benny93/objex-go/internal/parsers"
	"github.com/Benny93/objex-go/internal/storage"
)

// ErrNoSource is returned when no Go source can be found for a value, e.g.
// for values of unnamed types or binaries built with -trimpath.
var ErrNoSource = errors.New("source not available")

// SourceLocator maps runtime functions, methods and types back to their Go
// declarations. The storage.Backend is the only cache of file contents: every
// lookup reads through it and parses the file again, so lookups of sibling
// declarations are served by the backend.
type SourceLocator struct {
	cache  storage.Backend
	parser *parsers.GoParser

	mu   sync.Mutex
	dirs map[string][]string
}

// NewSourceLocator creates a locator reading files through cache. A nil cache
// uses a fresh memory backend.
func NewSourceLocator(cache storage.Backend) *SourceLocator {
	if cache == nil {
		cache = storage.NewMemoryBackend()
	}
	return &SourceLocator{
		cache:  cache,
		parser: parsers.NewGoParser(),
		dirs:   make(map[string][]string),
	}
}

// Func returns the declaration of the function value fn.
func (l *SourceLocator) Func(ctx context.Context, fn reflect.Value) (*parsers.Decl, error) {
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("not a function: %w", ErrNoSource)
	}
	return l.pc(ctx, fn.Pointer())
}

// Method returns the declaration of m. Interface methods are looked up in
// their interface's type declaration.
func (l *SourceLocator) Method(ctx context.Context, m *Method) (*parsers.Decl, error) {
	recv := baseType(m.Recv)
	if m.Recv.Kind() == reflect.Interface {
		files, err := l.typeFiles(ctx, recv)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if d, ok := f.InterfaceMethod(typeName(recv), m.Decl.Name); ok {
				return d, nil
			}
		}
		return nil, fmt.Errorf("method %s: %w", m.FullName(), ErrNoSource)
	}

	d, err := l.pc(ctx, m.Decl.Func.Pointer())
	if err == nil {
		return d, nil
	}
	// Value-receiver methods reached through *T resolve to a generated
	// wrapper; retry on the value type.
	if m.Recv.Kind() == reflect.Pointer {
		if vm, ok := recv.MethodByName(m.Decl.Name); ok {
			return l.pc(ctx, vm.Func.Pointer())
		}
	}
	return nil, err
}

// Type returns the declaration of the named type t.
func (l *SourceLocator) Type(ctx context.Context, t reflect.Type) (*parsers.Decl, error) {
	t = baseType(t)
	files, err := l.typeFiles(ctx, t)
	if err != nil {
		return nil, err
	}
	name := typeName(t)
	for _, f := range files {
		if d, ok := f.TypeDecl(name); ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("type %s: %w", t, ErrNoSource)
}

// Package returns the package doc comment of the package with import path
// path.
func (l *SourceLocator) Package(ctx context.Context, path string) (string, error) {
	dir, err := packageDir(path)
	if err != nil {
		return "", err
	}
	files, err := l.dirFiles(ctx, dir)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if doc := f.PackageDoc(); doc != "" {
			return doc, nil
		}
	}
	return "", fmt.Errorf("package %s: %w", path, ErrNoSource)
}

// Cached returns the number of source files held by the backing cache.
func (l *SourceLocator) Cached() int {
	return l.cache.Len()
}

func (l *SourceLocator) pc(ctx context.Context, pc uintptr) (*parsers.Decl, error) {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return nil, ErrNoSource
	}
	file, line := fn.FileLine(fn.Entry())
	if !filepath.IsAbs(file) {
		return nil, fmt.Errorf("%s: %w", fn.Name(), ErrNoSource)
	}

	f, err := l.file(ctx, file)
	if err != nil {
		return nil, err
	}
	d, ok := f.DeclAt(line)
	if !ok {
		return nil, fmt.Errorf("%s: no declaration at %s:%d: %w", fn.Name(), file, line, ErrNoSource)
	}
	return d, nil
}

// typeFiles returns the parsed files of t's package, found through the
// file of one of its methods or, failing that, the go/build package lookup.
func (l *SourceLocator) typeFiles(ctx context.Context, t reflect.Type) ([]*parsers.File, error) {
	if t.Name() == "" || t.PkgPath() == "" {
		return nil, fmt.Errorf("type %s: %w", t, ErrNoSource)
	}

	dir := ""
	for _, rt := range []reflect.Type{t, reflect.PointerTo(t)} {
		if t.Kind() == reflect.Interface {
			break
		}
		for i := 0; i < rt.NumMethod() && dir == ""; i++ {
			fn := runtime.FuncForPC(rt.Method(i).Func.Pointer())
			if fn == nil {
				continue
			}
			if file, _ := fn.FileLine(fn.Entry()); filepath.IsAbs(file) {
				dir = filepath.Dir(file)
			}
		}
		if dir != "" {
			break
		}
	}

	if dir == "" {
		var err error
		if dir, err = packageDir(t.PkgPath()); err != nil {
			return nil, err
		}
	}
	return l.dirFiles(ctx, dir)
}

func (l *SourceLocator) dirFiles(ctx context.Context, dir string) ([]*parsers.File, error) {
	names, err := l.goFiles(dir)
	if err != nil {
		return nil, err
	}
	files := make([]*parsers.File, 0, len(names))
	for _, name := range names {
		f, err := l.file(ctx, name)
		if err != nil {
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

func (l *SourceLocator) goFiles(dir string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if names, ok := l.dirs[dir]; ok {
		return names, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		names = append(names, filepath.Join(dir, name))
	}
	sort.Strings(names)
	l.dirs[dir] = names
	return names, nil
}

func (l *SourceLocator) file(ctx context.Context, path string) (*parsers.File, error) {
	content, err := storage.ReadThrough(ctx, l.cache, path, os.ReadFile)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return l.parser.Parse(path, content)
}

func packageDir(path string) (string, error) {
	wd, _ := os.Getwd()
	pkg, err := build.Default.Import(path, wd, build.FindOnly)
	if err != nil || pkg.Dir == "" {
		return "", fmt.Errorf("package %s: %w", path, ErrNoSource)
	}
	return pkg.Dir, nil
}

// typeName strips type arguments from an instantiated generic type name.
func typeName(t reflect.Type) string {
	name, _, _ := strings.Cut(t.Name(), "[")
	return name
}
