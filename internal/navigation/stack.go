// Package navigation tracks the path of nodes a user has drilled into.
package navigation

import "github.com/Benny93/objex-go/internal/graph"

// Stack is the ordered list of entered nodes, root first and current node
// last. It is never empty.
type Stack struct {
	nodes []*graph.Node
}

// NewStack creates a stack holding only root.
func NewStack(root *graph.Node) *Stack {
	return &Stack{nodes: []*graph.Node{root}}
}

// Push appends n. Callers populate n's children first.
func (s *Stack) Push(n *graph.Node) {
	s.nodes = append(s.nodes, n)
}

// Pop removes the current node. The root is never removed; Pop reports
// whether the stack changed.
func (s *Stack) Pop() bool {
	if len(s.nodes) <= 1 {
		return false
	}
	s.nodes[len(s.nodes)-1] = nil
	s.nodes = s.nodes[:len(s.nodes)-1]
	return true
}

// PopTo truncates the stack to indexes [0, i]. Out-of-range indexes leave
// the stack unchanged; PopTo reports whether i was in range.
func (s *Stack) PopTo(i int) bool {
	if i < 0 || i >= len(s.nodes) {
		return false
	}
	clear(s.nodes[i+1:])
	s.nodes = s.nodes[:i+1]
	return true
}

// Current returns the last node.
func (s *Stack) Current() *graph.Node {
	return s.nodes[len(s.nodes)-1]
}

// Root returns the first node.
func (s *Stack) Root() *graph.Node {
	return s.nodes[0]
}

// Len returns the stack depth.
func (s *Stack) Len() int {
	return len(s.nodes)
}

// Nodes returns a copy of the stack, root first.
func (s *Stack) Nodes() []*graph.Node {
	return append([]*graph.Node(nil), s.nodes...)
}
