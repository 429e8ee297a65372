// Package render formats explorer nodes for the terminal.
package render

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/Benny93/objex-go/internal/filter"
	"github.com/Benny93/objex-go/internal/graph"
	"github.com/Benny93/objex-go/internal/inspect"
	"github.com/Benny93/objex-go/internal/navigation"
)

// maxInlineString bounds the string shown in a `name = 'value'` label.
const maxInlineString = 40

// Printer renders labels and panels. The zero value is not usable; use New.
type Printer struct {
	class, module, callable, nilv *color.Color
	mapping, list, truth, falsity *color.Color
	str, heading, dim             *color.Color
}

// New creates a Printer. When enabled is false every style renders plain
// text, otherwise color is forced on regardless of the terminal.
func New(enabled bool) *Printer {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &Printer{
		class:    mk(color.FgMagenta),
		module:   mk(color.FgBlue),
		callable: mk(color.FgCyan),
		nilv:     mk(color.CrossedOut, color.Faint),
		mapping:  mk(color.FgCyan),
		list:     mk(color.FgRed),
		truth:    mk(color.FgGreen, color.Italic),
		falsity:  mk(color.FgRed, color.Italic),
		str:      mk(color.FgGreen, color.Italic),
		heading:  mk(color.Bold),
		dim:      mk(color.Faint),
	}
}

// Auto creates a Printer that follows fatih/color's terminal detection,
// which honors NO_COLOR and non-TTY output.
func Auto() *Printer {
	return New(!color.NoColor)
}

// Label returns the one-line list entry for a child node.
func (p *Printer) Label(n *graph.Node) string {
	label := p.label(n)
	if n.Cycle() {
		label += p.dim.Sprintf(" (cycle: %s)", strings.Join(n.Ancestor().Path(), "."))
	}
	return label
}

func (p *Printer) label(n *graph.Node) string {
	name := n.Name()
	flags := n.Flags()

	switch {
	case flags.Nil:
		return p.nilv.Sprint(name)
	case flags.Class:
		return p.class.Sprint(name)
	case flags.Callable:
		return p.callable.Sprint(name) + "()"
	case flags.Module:
		return p.module.Sprint(name)
	case flags.Map:
		return "{**" + p.mapping.Sprint(name) + "}"
	}

	rv := reflect.ValueOf(n.Value())
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return name + " = " + p.truth.Sprint("true")
		}
		return name + " = " + p.falsity.Sprint("false")
	case reflect.String:
		return name + " = " + p.str.Sprint("'"+clip(rv.String(), maxInlineString)+"'")
	case reflect.Slice, reflect.Array:
		return "[*" + p.list.Sprint(name) + "]"
	}
	return name
}

// List writes one label per line.
func (p *Printer) List(w io.Writer, nodes []*graph.Node) {
	for _, n := range nodes {
		fmt.Fprintln(w, p.Label(n))
	}
}

// Breadcrumbs renders the trail as "root > a > b" with indexes.
func (p *Printer) Breadcrumbs(crumbs []navigation.Breadcrumb) string {
	parts := make([]string, len(crumbs))
	for i, c := range crumbs {
		parts[i] = p.dim.Sprintf("%d:", c.Index) + c.Name
	}
	return strings.Join(parts, " > ")
}

// Filters summarizes a filter configuration, one setting per line.
func (p *Printer) Filters(cfg filter.Config) string {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	types := "none"
	switch active := cfg.Types(); {
	case len(active) == len(inspect.Tokens()) && allTokens(cfg):
		types = "all"
	case len(active) > 0:
		types = strings.Join(active, ", ")
	}

	lines := []string{
		"query:      " + cfg.Query,
		"fuzzy:      " + onOff(cfg.Fuzzy),
		"helpsearch: " + onOff(cfg.SearchHelp),
		"private:    " + onOff(cfg.Private),
		"dunder:     " + onOff(cfg.Dunder),
		"types:      " + types,
		"sort:       " + string(cfg.Sort),
	}
	return strings.Join(lines, "\n")
}

func allTokens(cfg filter.Config) bool {
	for _, tok := range inspect.Tokens() {
		if !cfg.TypeActive(tok) {
			return false
		}
	}
	return true
}

// Inspect writes the full metadata panel for n: name, type, preview,
// docstring, help and source. Absent sections are omitted.
func (p *Printer) Inspect(w io.Writer, n *graph.Node) {
	p.section(w, "Name", strings.Join(n.Path(), "."))
	p.section(w, "Type", typeLine(n))
	p.section(w, "Value", n.Preview())
	if sig, ok := n.Signature(); ok {
		p.section(w, "Signature", sig)
	}
	p.section(w, "Docstring", n.Doc())
	if help := n.Help(); help != n.Doc() {
		p.section(w, "Help", help)
	}
	if src, ok := n.Source(); ok {
		p.section(w, "Source", src)
	}
	for field, err := range n.Metadata().Failures {
		p.section(w, "Unavailable "+string(field), err.Error())
	}
}

// Doc writes the docstring section only.
func (p *Printer) Doc(w io.Writer, n *graph.Node) {
	p.section(w, "Docstring", n.Doc())
}

// Help writes the help section only.
func (p *Printer) Help(w io.Writer, n *graph.Node) {
	p.section(w, "Help", n.Help())
}

// Source writes the source section, or a note when there is none.
func (p *Printer) Source(w io.Writer, n *graph.Node) {
	src, ok := n.Source()
	if !ok {
		fmt.Fprintln(w, p.dim.Sprint("no source available"))
		return
	}
	p.section(w, "Source", src)
}

func (p *Printer) section(w io.Writer, title, body string) {
	if body == "" {
		return
	}
	fmt.Fprintln(w, p.heading.Sprint(title))
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintln(w, "  "+line)
	}
}

func typeLine(n *graph.Node) string {
	line := n.TypeName()
	if names := n.Flags().Names(); len(names) > 0 {
		line += " [" + strings.Join(names, ", ") + "]"
	}
	if n.Category() != inspect.CategoryValue {
		line += " " + n.Category().String()
	}
	return line
}

func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + inspect.Ellipsis
}
