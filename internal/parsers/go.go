package parsers

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// GoParser parses Go source code using the standard library's go/parser.
type GoParser struct{}

// NewGoParser creates a new Go parser.
func NewGoParser() *GoParser {
	return &GoParser{}
}

// Language returns the language this parser handles.
func (p *GoParser) Language() string {
	return "go"
}

// File is a parsed Go source file.
type File struct {
	Path    string
	Package string

	fset    *token.FileSet
	ast     *ast.File
	content []byte
}

// Parse parses Go source code, keeping comments for doc extraction.
// Identifiers are not resolved; lookups go by name and position only.
func (p *GoParser) Parse(filePath string, content []byte) (*File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, content, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing Go code: %w", err)
	}

	return &File{
		Path:    filePath,
		Package: file.Name.Name,
		fset:    fset,
		ast:     file,
		content: content,
	}, nil
}

// PackageDoc returns the package doc comment of the file, if any.
func (f *File) PackageDoc() string {
	if f.ast.Doc == nil {
		return ""
	}
	return f.ast.Doc.Text()
}

// DeclAt returns the innermost function declaration or literal whose source
// range covers line. This is how a compiled function's entry line maps back
// to its declaration.
func (f *File) DeclAt(line int) (*Decl, bool) {
	var best ast.Node
	bestSpan := -1

	ast.Inspect(f.ast, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.FuncDecl, *ast.FuncLit:
		default:
			return true
		}
		start := f.fset.Position(n.Pos()).Line
		end := f.fset.Position(n.End()).Line
		if line < start || line > end {
			return false
		}
		if span := end - start; bestSpan < 0 || span <= bestSpan {
			best, bestSpan = n, span
		}
		return true
	})

	switch d := best.(type) {
	case *ast.FuncDecl:
		return f.funcDecl(d), true
	case *ast.FuncLit:
		return f.funcLit(d), true
	}
	return nil, false
}

// TypeDecl returns the type declaration named name.
func (f *File) TypeDecl(name string) (*Decl, bool) {
	for _, decl := range f.ast.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || ts.Name.Name != name {
				continue
			}
			return f.typeDecl(gen, ts), true
		}
	}
	return nil, false
}

// InterfaceMethod returns the method named method declared inside the
// interface type typeName.
func (f *File) InterfaceMethod(typeName, method string) (*Decl, bool) {
	decl, ok := f.findTypeSpec(typeName)
	if !ok {
		return nil, false
	}
	iface, ok := decl.Type.(*ast.InterfaceType)
	if !ok || iface.Methods == nil {
		return nil, false
	}
	for _, field := range iface.Methods.List {
		for _, ident := range field.Names {
			if ident.Name != method {
				continue
			}
			d := &Decl{
				Name:      method,
				Kind:      DeclMethod,
				Receiver:  typeName,
				Signature: method + strings.TrimPrefix(f.nodeText(field.Type), "func"),
				Content:   f.nodeText(field),
				StartLine: f.fset.Position(field.Pos()).Line,
				EndLine:   f.fset.Position(field.End()).Line,
			}
			if field.Doc != nil {
				d.Doc = field.Doc.Text()
			}
			return d, true
		}
	}
	return nil, false
}

func (f *File) findTypeSpec(name string) (*ast.TypeSpec, bool) {
	for _, decl := range f.ast.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.Name == name {
				return ts, true
			}
		}
	}
	return nil, false
}

func (f *File) funcDecl(fn *ast.FuncDecl) *Decl {
	d := &Decl{
		Name:      fn.Name.Name,
		Kind:      DeclFunction,
		StartLine: f.fset.Position(fn.Pos()).Line,
		EndLine:   f.fset.Position(fn.End()).Line,
		Content:   f.nodeText(fn),
	}
	if fn.Doc != nil {
		d.Doc = fn.Doc.Text()
	}

	sig := f.buildSignature(fn.Name.Name, fn.Type)
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		d.Kind = DeclMethod
		recv := fn.Recv.List[0]
		d.Receiver = receiverName(recv.Type)
		sig = "(" + f.nodeText(recv) + ") " + sig
	}
	d.Signature = sig

	return d
}

func (f *File) funcLit(fn *ast.FuncLit) *Decl {
	return &Decl{
		Kind:      DeclLiteral,
		Signature: f.buildSignature("func", fn.Type),
		Content:   f.nodeText(fn),
		StartLine: f.fset.Position(fn.Pos()).Line,
		EndLine:   f.fset.Position(fn.End()).Line,
	}
}

func (f *File) typeDecl(gen *ast.GenDecl, ts *ast.TypeSpec) *Decl {
	d := &Decl{
		Name:      ts.Name.Name,
		Kind:      DeclType,
		StartLine: f.fset.Position(ts.Pos()).Line,
		EndLine:   f.fset.Position(ts.End()).Line,
	}

	// Grouped declarations carry docs per spec; single ones on the GenDecl.
	switch {
	case ts.Doc != nil:
		d.Doc = ts.Doc.Text()
	case gen.Doc != nil && !gen.Lparen.IsValid():
		d.Doc = gen.Doc.Text()
	}

	if gen.Lparen.IsValid() {
		d.Content = "type " + f.nodeText(ts)
	} else {
		d.Content = f.nodeText(gen)
		d.StartLine = f.fset.Position(gen.Pos()).Line
	}

	switch t := ts.Type.(type) {
	case *ast.StructType:
		d.Signature = "type " + ts.Name.Name + " struct"
	case *ast.InterfaceType:
		d.Signature = "type " + ts.Name.Name + " interface"
	default:
		d.Signature = "type " + ts.Name.Name + " " + f.nodeText(t)
	}

	return d
}

func (f *File) buildSignature(name string, ft *ast.FuncType) string {
	sig := name

	// Add parameters
	params := []string{}
	if ft.Params != nil {
		for _, param := range ft.Params.List {
			params = append(params, f.nodeText(param))
		}
	}
	sig += "(" + strings.Join(params, ", ") + ")"

	// Add return types
	if ft.Results != nil && len(ft.Results.List) > 0 {
		returns := []string{}
		for _, ret := range ft.Results.List {
			returns = append(returns, f.nodeText(ret))
		}
		if len(returns) == 1 && len(ft.Results.List[0].Names) == 0 {
			sig += " " + returns[0]
		} else {
			sig += " (" + strings.Join(returns, ", ") + ")"
		}
	}

	return sig
}

func (f *File) nodeText(n ast.Node) string {
	if n == nil {
		return ""
	}
	start := f.fset.Position(n.Pos()).Offset
	end := f.fset.Position(n.End()).Offset
	if start >= 0 && end <= len(f.content) && start <= end {
		return string(f.content[start:end])
	}
	return ""
}

// receiverName returns the base type name of a receiver expression,
// unwrapping pointers and type parameters.
func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}
