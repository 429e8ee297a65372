package navigation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Benny93/objex-go/internal/filter"
	"github.com/Benny93/objex-go/internal/graph"
)

// ErrNilNode is returned when entering a nil node.
var ErrNilNode = errors.New("nil node")

// Breadcrumb is one entry of the navigation trail.
type Breadcrumb struct {
	Name  string
	Index int
}

// Explorer is an exploration session: a navigation stack plus the active
// filter configuration. It is safe for concurrent use.
type Explorer struct {
	mu      sync.Mutex
	builder *graph.Builder
	stack   *Stack
	cfg     filter.Config
}

// New creates an explorer rooted at v. A nil builder uses the defaults.
func New(builder *graph.Builder, v any, cfg filter.Config) *Explorer {
	if builder == nil {
		builder = graph.NewBuilder(graph.Options{})
	}
	e := &Explorer{builder: builder, cfg: cfg.Clone()}
	e.reset(builder.Root(v))
	return e
}

// Root replaces the session with a fresh root built from v. The filter
// configuration is kept.
func (e *Explorer) Root(v any) *graph.Node {
	root := e.builder.Root(v)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset(root)
	return root
}

func (e *Explorer) reset(root *graph.Node) {
	root.PopulateChildren()
	e.stack = NewStack(root)
}

// Enter populates n and makes it the current node.
func (e *Explorer) Enter(n *graph.Node) error {
	if n == nil {
		return ErrNilNode
	}
	n.PopulateChildren()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stack.Push(n)
	return nil
}

// EnterName enters the current node's child called name. Hidden children
// can be entered by name too.
func (e *Explorer) EnterName(name string) (*graph.Node, error) {
	cur := e.Current()
	child, ok := cur.Child(name)
	if !ok {
		return nil, fmt.Errorf("entering %q under %s: %w", name, cur.Name(), graph.ErrNoSuchChild)
	}
	return child, e.Enter(child)
}

// Back leaves the current node. It reports false at the root.
func (e *Explorer) Back() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack.Pop()
}

// BackTo returns to the breadcrumb at index i. It reports false if i is out
// of range.
func (e *Explorer) BackTo(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack.PopTo(i)
}

// Current returns the current node.
func (e *Explorer) Current() *graph.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack.Current()
}

// RootNode returns the session's root node.
func (e *Explorer) RootNode() *graph.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack.Root()
}

// Depth returns the navigation stack length.
func (e *Explorer) Depth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack.Len()
}

// Breadcrumbs returns the trail from the root to the current node.
func (e *Explorer) Breadcrumbs() []Breadcrumb {
	e.mu.Lock()
	defer e.mu.Unlock()

	nodes := e.stack.Nodes()
	crumbs := make([]Breadcrumb, len(nodes))
	for i, n := range nodes {
		crumbs[i] = Breadcrumb{Name: n.Name(), Index: i}
	}
	return crumbs
}

// SetFilterConfig replaces the active filter configuration.
func (e *Explorer) SetFilterConfig(cfg filter.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg.Clone()
}

// FilterConfig returns a copy of the active filter configuration.
func (e *Explorer) FilterConfig() filter.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Clone()
}

// UpdateFilter applies fn to a copy of the active configuration and
// installs the result.
func (e *Explorer) UpdateFilter(fn func(*filter.Config)) filter.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg := e.cfg.Clone()
	fn(&cfg)
	e.cfg = cfg
	return cfg.Clone()
}

// VisibleChildren returns the current node's children under the active
// filter configuration.
func (e *Explorer) VisibleChildren() []*graph.Node {
	e.mu.Lock()
	cur, cfg := e.stack.Current(), e.cfg.Clone()
	e.mu.Unlock()
	return filter.VisibleChildren(cur, cfg)
}
