// Package parsers locates Go declarations in source files.
//
// It backs metadata extraction: given the file and line a runtime function
// was compiled from, or the name of a type, it returns the declaration's doc
// comment, signature and source text.
package parsers

// DeclKind is the kind of a located declaration.
type DeclKind string

const (
	DeclFunction DeclKind = "function"
	DeclMethod   DeclKind = "method"
	DeclLiteral  DeclKind = "literal"
	DeclType     DeclKind = "type"
)

// Decl is a declaration extracted from Go source.
type Decl struct {
	// Name is the declared name; empty for function literals.
	Name string

	// Kind is the declaration kind.
	Kind DeclKind

	// Receiver is the receiver type name (for methods).
	Receiver string

	// Doc is the doc comment text with comment markers removed.
	Doc string

	// Signature is the function/method signature, or the type header.
	Signature string

	// Content is the declaration's source text.
	Content string

	// StartLine is the starting line number (1-based).
	StartLine int

	// EndLine is the ending line number (1-based).
	EndLine int
}
