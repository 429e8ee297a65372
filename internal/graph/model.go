// Package graph provides the lazily built object graph for objex-go.
//
// A Node wraps one runtime value reached from the root under an attribute
// name. Classification and metadata are computed once when the node is
// created; children are discovered on demand, exactly once.
package graph

import (
	"errors"
	"sync"

	"github.com/Benny93/objex-go/internal/inspect"
)

// RootName is the name of a root node.
const RootName = "root"

// ErrNoSuchChild is returned when a child name does not exist on a node.
var ErrNoSuchChild = errors.New("no such child")

// Node represents one runtime value at one point in the graph.
type Node struct {
	// value is the wrapped value. The node does not own it.
	value any

	// name is the attribute label under which the value was reached.
	name string

	// parent is the node that produced this one; nil for the root.
	parent *Node

	// depth is the distance from the root.
	depth int

	// flags and typeName are computed once at construction.
	flags    inspect.Flags
	typeName string

	// meta is computed once at construction.
	meta inspect.Metadata

	// identity is the referent key used for cycle detection.
	identity    any
	hasIdentity bool

	// ancestor is the first ancestor with the same identity, if any.
	ancestor *Node

	builder *Builder

	mu        sync.Mutex
	populated bool
	children  map[string]*Node
	order     []*Node
}

// Name returns the attribute label of the node.
func (n *Node) Name() string { return n.name }

// Value returns the wrapped value.
func (n *Node) Value() any { return n.value }

// Parent returns the node that produced this one, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Depth returns the distance from the root.
func (n *Node) Depth() int { return n.depth }

// Flags returns the classification flags.
func (n *Node) Flags() inspect.Flags { return n.flags }

// Category returns the display category.
func (n *Node) Category() inspect.Category { return n.flags.Category() }

// TypeName returns the runtime type name used for filtering and sorting.
func (n *Node) TypeName() string { return n.typeName }

// Metadata returns a copy of the extracted metadata.
func (n *Node) Metadata() inspect.Metadata { return n.meta }

// Doc returns the cleaned documentation text.
func (n *Node) Doc() string { return n.meta.Doc }

// Help returns the documentation, or the rendered help page.
func (n *Node) Help() string { return n.meta.Help }

// Signature returns the call signature, if the node is callable and one
// could be determined.
func (n *Node) Signature() (string, bool) { return n.meta.Signature, n.meta.HasSignature }

// Source returns the source listing, if available.
func (n *Node) Source() (string, bool) { return n.meta.Source, n.meta.HasSource }

// Preview returns the short bounded rendering of the value.
func (n *Node) Preview() string { return n.meta.Preview }

// Cycle reports whether the node's value is also the value of one of its
// ancestors.
func (n *Node) Cycle() bool { return n.ancestor != nil }

// Ancestor returns the ancestor this node repeats, or nil.
func (n *Node) Ancestor() *Node { return n.ancestor }

// Path returns the names from the root to this node, root first.
func (n *Node) Path() []string {
	path := make([]string, n.depth+1)
	for cur := n; cur != nil; cur = cur.parent {
		path[cur.depth] = cur.name
	}
	return path
}

// Populated reports whether the children have been computed.
func (n *Node) Populated() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.populated
}

// Children returns the children in discovery order. It returns nil until
// PopulateChildren has run.
func (n *Node) Children() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*Node(nil), n.order...)
}

// Child returns the child named name.
func (n *Node) Child(name string) (*Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	c, ok := n.children[name]
	return c, ok
}

// Len returns the number of children.
func (n *Node) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.order)
}

// Walk follows path from n, populating each node on the way.
func (n *Node) Walk(path ...string) (*Node, error) {
	cur := n
	for _, name := range path {
		cur.PopulateChildren()
		next, ok := cur.Child(name)
		if !ok {
			return nil, &ChildError{Parent: cur, Name: name}
		}
		cur = next
	}
	cur.PopulateChildren()
	return cur, nil
}

// ChildError reports a missing child.
type ChildError struct {
	Parent *Node
	Name   string
}

func (e *ChildError) Error() string {
	return "node " + e.Parent.name + ": " + e.Name + ": " + ErrNoSuchChild.Error()
}

// Unwrap returns ErrNoSuchChild.
func (e *ChildError) Unwrap() error { return ErrNoSuchChild }
