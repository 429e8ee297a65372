package graph

import (
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Benny93/objex-go/internal/inspect"
)

// Options configures a Builder.
type Options struct {
	// Registry enumerates attributes. Nil uses an empty registry.
	Registry *inspect.Registry

	// Extractor computes node metadata. Nil uses an extractor without
	// source lookup.
	Extractor *inspect.Extractor

	// Logger receives debug records for skipped attributes.
	Logger *slog.Logger

	// Workers bounds parallel metadata extraction while populating children.
	// Values below 2 build children sequentially.
	Workers int
}

// Builder creates nodes and populates their children.
type Builder struct {
	registry  *inspect.Registry
	extractor *inspect.Extractor
	logger    *slog.Logger
	workers   int
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		registry:  opts.Registry,
		extractor: opts.Extractor,
		logger:    opts.Logger,
		workers:   opts.Workers,
	}
	if b.registry == nil {
		b.registry = inspect.NewRegistry()
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if b.extractor == nil {
		b.extractor = inspect.NewExtractor(inspect.ExtractorConfig{
			Registry: b.registry,
			Logger:   b.logger,
		})
	}
	return b
}

// Root creates the root node for v. A nil v yields a well-defined empty
// node without children.
func (b *Builder) Root(v any) *Node {
	return b.newNode(nil, RootName, v)
}

// NewRoot creates a root node with a default Builder.
func NewRoot(v any) *Node {
	return NewBuilder(Options{}).Root(v)
}

func (b *Builder) newNode(parent *Node, name string, v any) *Node {
	n := &Node{
		value:    v,
		name:     name,
		parent:   parent,
		flags:    inspect.Classify(v),
		typeName: inspect.TypeName(v),
		meta:     b.extractor.Extract(v, name),
		builder:  b,
	}
	if parent != nil {
		n.depth = parent.depth + 1
	}

	n.identity, n.hasIdentity = inspect.Identity(v)
	if n.hasIdentity {
		for a := parent; a != nil; a = a.parent {
			if a.hasIdentity && a.identity == n.identity {
				n.ancestor = a
				break
			}
		}
	}
	return n
}

// PopulateChildren discovers and builds the node's children. It is
// idempotent: once populated, later calls return immediately and the
// children never change. Attributes that fail to resolve are skipped.
func (n *Node) PopulateChildren() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.populated {
		return
	}
	order := n.builder.children(n)
	children := make(map[string]*Node, len(order))
	for _, c := range order {
		children[c.name] = c
	}
	n.children, n.order, n.populated = children, order, true
}

type resolved struct {
	name  string
	value any
}

func (b *Builder) children(n *Node) []*Node {
	attrs, err := b.registry.Attributes(n.value)
	if err != nil {
		b.logger.Debug("enumerating attributes failed", "node", n.name, "error", err)
		return nil
	}

	// Attribute accessors may have side effects, so resolution stays on the
	// calling goroutine in enumeration order.
	seen := make(map[string]bool, len(attrs))
	items := make([]resolved, 0, len(attrs))
	for _, a := range attrs {
		if seen[a.Name] {
			continue
		}
		v, err := inspect.Resolve(a)
		if err != nil {
			b.logger.Debug("skipping attribute", "node", n.name, "attribute", a.Name, "error", err)
			continue
		}
		seen[a.Name] = true
		items = append(items, resolved{name: a.Name, value: v})
	}

	nodes := make([]*Node, len(items))
	if b.workers < 2 || len(items) < 2 {
		for i, it := range items {
			nodes[i] = b.newNode(n, it.name, it.value)
		}
		return nodes
	}

	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, it := range items {
		g.Go(func() error {
			nodes[i] = b.newNode(n, it.name, it.value)
			return nil
		})
	}
	_ = g.Wait()
	return nodes
}
