package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Benny93/objex-go/internal/filter"
	"github.com/Benny93/objex-go/internal/graph"
	"github.com/Benny93/objex-go/internal/inspect"
	"github.com/Benny93/objex-go/internal/navigation"
	"github.com/Benny93/objex-go/internal/render"
)

const shellUsage = `Navigation
  ls                 list visible children
  cd NAME            enter a child (hidden children too)
  cd ..  | back      go back one level
  cd /               return to the root
  crumb N            return to breadcrumb N
  pwd                show the breadcrumbs
Search and filters
  /TEXT | search TEXT  filter by name; no text clears the search
  fuzzy on|off       fuzzy matching for queries of 4+ characters
  helpsearch on|off  also match help text
  private on|off     show _private names
  dunder on|off      show __dunder names
  types [all|none|+TOKEN|-TOKEN|TOKEN...]
  sort name|type
  clear              reset type, private and dunder filters
  filters            show the filter settings
Inspection
  show [NAME]        full panel of the current node or a child
  doc [NAME]         docstring
  help [NAME]        help text
  src [NAME]         source
  ?                  this text
  quit               leave`

var errUsage = errors.New("usage")

// shell is the line-oriented explorer front end.
type shell struct {
	explorer *navigation.Explorer
	printer  *render.Printer
	out      io.Writer
	logger   *slog.Logger

	// reload rebuilds the root value after a watched change. Nil disables
	// reloading.
	reload func() (any, error)
}

func newShell(explorer *navigation.Explorer, printer *render.Printer, out io.Writer, logger *slog.Logger) *shell {
	return &shell{explorer: explorer, printer: printer, out: out, logger: logger}
}

// Run reads commands from in until quit, end of input or ctx is done.
// Batches received on changes trigger a reload of the root.
func (sh *shell) Run(ctx context.Context, in io.Reader, changes <-chan []string) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	sh.list()
	sh.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			quit, err := sh.Exec(line)
			if err != nil {
				fmt.Fprintln(sh.out, "error:", err)
			}
			if quit {
				return nil
			}
			sh.prompt()
		case batch := <-changes:
			sh.reloadRoot(batch)
			sh.prompt()
		}
	}
}

func (sh *shell) prompt() {
	fmt.Fprint(sh.out, sh.printer.Breadcrumbs(sh.explorer.Breadcrumbs())+" $ ")
}

// Exec runs one command line. It reports true when the shell should exit.
func (sh *shell) Exec(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, "/") && line != "/" {
		sh.setQuery(strings.TrimSpace(line[1:]))
		return false, nil
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "?", "commands":
		fmt.Fprintln(sh.out, shellUsage)
	case "ls":
		sh.list()
	case "cd":
		return false, sh.cd(rest)
	case "back":
		if !sh.explorer.Back() {
			fmt.Fprintln(sh.out, "already at the root")
			return false, nil
		}
		sh.list()
	case "crumb":
		i, err := strconv.Atoi(rest)
		if err != nil {
			return false, fmt.Errorf("%w: crumb N", errUsage)
		}
		if !sh.explorer.BackTo(i) {
			return false, fmt.Errorf("breadcrumb %d out of range [0, %d]", i, sh.explorer.Depth()-1)
		}
		sh.list()
	case "pwd":
		fmt.Fprintln(sh.out, sh.printer.Breadcrumbs(sh.explorer.Breadcrumbs()))
	case "search":
		sh.setQuery(rest)
	case "fuzzy", "helpsearch", "private", "dunder":
		return false, sh.toggle(cmd, rest)
	case "types":
		return false, sh.types(strings.Fields(rest))
	case "sort":
		key, err := filter.ParseSortKey(rest)
		if err != nil {
			return false, err
		}
		sh.explorer.UpdateFilter(func(c *filter.Config) { c.Sort = key })
		sh.list()
	case "clear":
		sh.explorer.UpdateFilter(func(c *filter.Config) { c.Clear() })
		sh.list()
	case "filters":
		fmt.Fprintln(sh.out, sh.printer.Filters(sh.explorer.FilterConfig()))
	case "show", "doc", "help", "src":
		n, err := sh.target(rest)
		if err != nil {
			return false, err
		}
		switch cmd {
		case "show":
			sh.printer.Inspect(sh.out, n)
		case "doc":
			sh.printer.Doc(sh.out, n)
		case "help":
			sh.printer.Help(sh.out, n)
		default:
			sh.printer.Source(sh.out, n)
		}
	default:
		return false, fmt.Errorf("unknown command %q (? lists commands)", cmd)
	}
	return false, nil
}

func (sh *shell) list() {
	visible := sh.explorer.VisibleChildren()
	sh.printer.List(sh.out, visible)
	if hidden := sh.explorer.Current().Len() - len(visible); hidden > 0 {
		fmt.Fprintf(sh.out, "(%d hidden)\n", hidden)
	}
}

func (sh *shell) cd(arg string) error {
	switch arg {
	case "":
		return fmt.Errorf("%w: cd NAME", errUsage)
	case "..":
		if !sh.explorer.Back() {
			fmt.Fprintln(sh.out, "already at the root")
			return nil
		}
	case "/":
		sh.explorer.BackTo(0)
	default:
		if _, err := sh.explorer.EnterName(arg); err != nil {
			return err
		}
	}
	sh.list()
	return nil
}

func (sh *shell) target(name string) (*graph.Node, error) {
	cur := sh.explorer.Current()
	if name == "" {
		return cur, nil
	}
	child, ok := cur.Child(name)
	if !ok {
		return nil, &graph.ChildError{Parent: cur, Name: name}
	}
	child.PopulateChildren()
	return child, nil
}

func (sh *shell) setQuery(q string) {
	sh.explorer.UpdateFilter(func(c *filter.Config) { c.Query = q })
	sh.list()
}

func (sh *shell) toggle(name, arg string) error {
	var on bool
	switch arg {
	case "on":
		on = true
	case "off":
	default:
		return fmt.Errorf("%w: %s on|off", errUsage, name)
	}
	sh.explorer.UpdateFilter(func(c *filter.Config) {
		switch name {
		case "fuzzy":
			c.Fuzzy = on
		case "helpsearch":
			c.SearchHelp = on
		case "private":
			c.Private = on
		case "dunder":
			c.Dunder = on
		}
	})
	sh.list()
	return nil
}

// types edits the type filters. "+tok" and "-tok" toggle single filters,
// bare tokens replace the set.
func (sh *shell) types(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(sh.out, strings.Join(sh.explorer.FilterConfig().Types(), " "))
		return nil
	}
	sh.explorer.UpdateFilter(func(c *filter.Config) {
		var replace []string
		for _, a := range args {
			switch {
			case a == "all":
				c.SetTypes(inspect.Tokens()...)
			case a == "none":
				c.SetTypes()
			case strings.HasPrefix(a, "+"):
				c.EnableType(a[1:])
			case strings.HasPrefix(a, "-"):
				c.DisableType(a[1:])
			default:
				replace = append(replace, a)
			}
		}
		if len(replace) > 0 {
			c.SetTypes(replace...)
		}
	})
	sh.list()
	return nil
}

// reloadRoot rebuilds the root and re-enters the previous path as far as it
// still exists.
func (sh *shell) reloadRoot(changed []string) {
	if sh.reload == nil {
		return
	}
	v, err := sh.reload()
	if err != nil {
		sh.logger.Warn("reload failed; keeping previous root", "error", err)
		fmt.Fprintln(sh.out, "\nreload failed:", err)
		return
	}

	crumbs := sh.explorer.Breadcrumbs()
	sh.explorer.Root(v)
	for _, c := range crumbs[1:] {
		if _, err := sh.explorer.EnterName(c.Name); err != nil {
			break
		}
	}

	sh.logger.Info("root reloaded", "changed", len(changed))
	fmt.Fprintf(sh.out, "\nreloaded (%d changed)\n", len(changed))
	sh.list()
}
