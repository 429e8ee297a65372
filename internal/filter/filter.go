// Package filter selects and orders the children of a node for display.
//
// Filtering runs in four stages: visibility (underscore prefixes), type
// (classification tokens or exact type names), search (substring, plus
// fuzzy similarity for longer queries) and a stable sort. Every stage is
// pure with respect to the graph, so VisibleChildren can be called on every
// keystroke.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Benny93/objex-go/internal/graph"
	"github.com/Benny93/objex-go/internal/inspect"
)

// SortKey selects the display order.
type SortKey string

const (
	SortByName SortKey = "name"
	SortByType SortKey = "type"
)

// ParseSortKey parses "name" or "type".
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(s)) {
	case SortByName:
		return SortByName, nil
	case SortByType:
		return SortByType, nil
	}
	return "", fmt.Errorf("unknown sort key %q (must be %s or %s)", s, SortByName, SortByType)
}

const (
	// FuzzyMinLength is the query length, in runes, from which fuzzy
	// matching applies.
	FuzzyMinLength = 4

	// FuzzyThreshold is the similarity a fuzzy match must exceed.
	FuzzyThreshold = 50
)

// Config is the transient filter and search state.
type Config struct {
	// Query is the search text; empty matches everything.
	Query string

	// Fuzzy enables similarity matching for queries of at least
	// FuzzyMinLength runes.
	Fuzzy bool

	// SearchHelp also matches the query against each child's help text.
	SearchHelp bool

	// Private shows names with a single leading underscore.
	Private bool

	// Dunder shows names with two or more leading underscores.
	Dunder bool

	// Sort is the display order.
	Sort SortKey

	types map[string]bool
}

// DefaultConfig returns the initial configuration: fuzzy search on, help
// search off, private and dunder names hidden, every type token active,
// sorted by name.
func DefaultConfig() Config {
	c := Config{Fuzzy: true, Sort: SortByName}
	c.SetTypes(inspect.Tokens()...)
	return c
}

// Clear resets the type filters to every token and hides private and dunder
// names. Search settings and sort order are kept.
func (c *Config) Clear() {
	c.SetTypes(inspect.Tokens()...)
	c.Private = false
	c.Dunder = false
}

// SetTypes replaces the active type filters. No arguments leaves none
// active, which hides every child.
func (c *Config) SetTypes(tokens ...string) {
	c.types = make(map[string]bool, len(tokens))
	for _, t := range tokens {
		c.types[t] = true
	}
}

// EnableType activates a type filter: a flag token or an exact type name.
func (c *Config) EnableType(token string) {
	if c.types == nil {
		c.types = make(map[string]bool)
	}
	c.types[token] = true
}

// DisableType deactivates a type filter.
func (c *Config) DisableType(token string) {
	delete(c.types, token)
}

// TypeActive reports whether token is an active type filter.
func (c Config) TypeActive(token string) bool {
	return c.types[token]
}

// Types returns the active type filters, sorted.
func (c Config) Types() []string {
	types := make([]string, 0, len(c.types))
	for t := range c.types {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Clone returns a copy that shares no state with c.
func (c Config) Clone() Config {
	out := c
	out.SetTypes(c.Types()...)
	return out
}

// VisibleChildren returns the node's cached children that pass every stage,
// in display order. It never populates or mutates the node.
func VisibleChildren(n *graph.Node, cfg Config) []*graph.Node {
	if n == nil {
		return nil
	}
	return Apply(n.Children(), cfg)
}

// Apply filters and sorts children. The input slice is not modified.
func Apply(children []*graph.Node, cfg Config) []*graph.Node {
	if len(cfg.types) == 0 {
		return nil
	}

	m := newMatcher(cfg)
	out := make([]*graph.Node, 0, len(children))
	for _, c := range children {
		if Visible(c.Name(), cfg) && matchesType(c, cfg) && m.matches(c) {
			out = append(out, c)
		}
	}

	switch cfg.Sort {
	case SortByType:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TypeName() < out[j].TypeName() })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	}
	return out
}

// Visible reports whether name passes the visibility stage.
func Visible(name string, cfg Config) bool {
	switch {
	case strings.HasPrefix(name, "__"):
		return cfg.Dunder
	case strings.HasPrefix(name, "_"):
		return cfg.Private
	default:
		return true
	}
}

func matchesType(n *graph.Node, cfg Config) bool {
	if cfg.types[n.TypeName()] {
		return true
	}
	flags := n.Flags()
	for t := range cfg.types {
		if flags.Has(t) {
			return true
		}
	}
	return false
}

type matcher struct {
	query      string
	fuzzy      bool
	searchHelp bool
}

func newMatcher(cfg Config) matcher {
	q := strings.ToLower(cfg.Query)
	return matcher{
		query:      q,
		fuzzy:      cfg.Fuzzy && utf8.RuneCountInString(cfg.Query) >= FuzzyMinLength,
		searchHelp: cfg.SearchHelp,
	}
}

func (m matcher) matches(n *graph.Node) bool {
	if m.query == "" {
		return true
	}

	name := strings.ToLower(n.Name())
	if strings.Contains(name, m.query) {
		return true
	}
	if m.fuzzy && Ratio(m.query, name) > FuzzyThreshold {
		return true
	}
	if !m.searchHelp {
		return false
	}

	help := strings.ToLower(n.Help())
	if help == "" {
		return false
	}
	if m.fuzzy {
		return PartialRatio(m.query, help) > FuzzyThreshold
	}
	return strings.Contains(help, m.query)
}
