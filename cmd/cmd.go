// Package cmd provides the CLI commands for objex-go.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/Benny93/objex-go/internal/config"
	"github.com/Benny93/objex-go/internal/filter"
	"github.com/Benny93/objex-go/internal/graph"
	"github.com/Benny93/objex-go/internal/inspect"
	"github.com/Benny93/objex-go/internal/loader"
	"github.com/Benny93/objex-go/internal/logging"
	"github.com/Benny93/objex-go/internal/navigation"
	"github.com/Benny93/objex-go/internal/render"
	"github.com/Benny93/objex-go/internal/storage"
	"github.com/Benny93/objex-go/mcp"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Version kong.VersionFlag `help:"Show version information"`
	Verbose int              `short:"v" type:"counter" help:"Increase log verbosity (-v info, -vv debug)"`
	Quiet   bool             `short:"q" help:"Disable logging"`
	Config  string           `short:"c" type:"path" help:"Config file (default: $XDG_CONFIG_HOME/objex-go/config.yaml)"`
	Color   string           `enum:"auto,always,never" default:"auto" help:"Colorize output: auto, always or never"`
}

// Streams are the standard streams commands read and write.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func (g *Globals) printer() *render.Printer {
	switch g.Color {
	case "always":
		return render.New(true)
	case "never":
		return render.New(false)
	default:
		return render.Auto()
	}
}

// session is everything a command needs to explore one root.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	cache    storage.Backend
	explorer *navigation.Explorer
}

// openSession loads configuration and builds an explorer rooted at file; an
// empty file explores the curated standard library packages.
func openSession(g *Globals, streams *Streams, file string) (*session, error) {
	cfg, warnings, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}

	logger := logging.New(streams.Err, logging.Resolve(g.Verbose, g.Quiet, cfg.Log.Level))
	for _, w := range warnings {
		logger.Warn("invalid config value", "detail", w)
	}

	root, err := loader.Root(file)
	if err != nil {
		return nil, err
	}

	cache, err := storage.New(cfg.Source.Backend)
	if err != nil {
		return nil, fmt.Errorf("opening source cache: %w", err)
	}

	registry := inspect.NewRegistry()
	extractor := inspect.NewExtractor(inspect.ExtractorConfig{
		Registry: registry,
		Locator:  inspect.NewSourceLocator(cache),
		Preview:  cfg.PreviewOptions(),
		Logger:   logger,
	})
	builder := graph.NewBuilder(graph.Options{
		Registry:  registry,
		Extractor: extractor,
		Logger:    logger,
		Workers:   cfg.Explore.Workers,
	})

	logger.Debug("session opened", "root", rootName(file), "backend", cfg.Source.Backend, "workers", cfg.Explore.Workers)

	return &session{
		cfg:      cfg,
		logger:   logger,
		cache:    cache,
		explorer: navigation.New(builder, root, cfg.FilterConfig()),
	}, nil
}

func (s *session) Close() error {
	return s.cache.Close()
}

// walk enters each name of path in turn.
func (s *session) walk(path []string) error {
	for _, name := range path {
		if _, err := s.explorer.EnterName(name); err != nil {
			return err
		}
	}
	return nil
}

func rootName(file string) string {
	if file == "" {
		return loader.BuiltinName
	}
	return file
}

// ExploreCmd starts the interactive shell.
type ExploreCmd struct {
	File  string `arg:"" optional:"" type:"path" help:"JSON, YAML or TOML document, or a directory of them (default: Go standard library)"`
	Watch bool   `short:"w" help:"Reload the root when the file changes"`
}

// Run executes the explore command.
func (c *ExploreCmd) Run(g *Globals, streams *Streams) error {
	s, err := openSession(g, streams, c.File)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	go func() {
		select {
		case <-osSignalChannel():
			cancel()
		case <-ctx.Done():
		}
	}()

	sh := newShell(s.explorer, g.printer(), streams.Out, s.logger)

	var changes chan []string
	if c.Watch && c.File != "" {
		changes = make(chan []string)
		sh.reload = func() (any, error) { return loader.Root(c.File) }
		go func() {
			err := loader.Watch(ctx, c.File, changes, loader.WatchOptions{Logger: s.logger})
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("watch stopped", "path", c.File, "error", err)
			}
		}()
		color.New(color.FgGreen).Fprintf(streams.Out, "Watching %s for changes\n", c.File)
	}

	return sh.Run(ctx, streams.In, changes)
}

// FilterFlags override the configured filter state for one listing.
type FilterFlags struct {
	Query      string   `short:"s" help:"Search text"`
	Types      []string `short:"t" help:"Active type filters (flag tokens or type names)"`
	Private    bool     `help:"Show _private names"`
	Dunder     bool     `help:"Show __dunder names"`
	Sort       string   `help:"Sort by name or type"`
	NoFuzzy    bool     `help:"Disable fuzzy matching"`
	SearchHelp bool     `help:"Also search help text"`
}

func (f *FilterFlags) apply(cfg *filter.Config, sort filter.SortKey) {
	cfg.Query = f.Query
	if len(f.Types) > 0 {
		cfg.SetTypes(f.Types...)
	}
	cfg.Private = cfg.Private || f.Private
	cfg.Dunder = cfg.Dunder || f.Dunder
	if sort != "" {
		cfg.Sort = sort
	}
	if f.NoFuzzy {
		cfg.Fuzzy = false
	}
	cfg.SearchHelp = cfg.SearchHelp || f.SearchHelp
}

// LsCmd lists the visible children of a node.
type LsCmd struct {
	Path []string `arg:"" optional:"" help:"Child names to descend through"`
	File string   `short:"f" type:"path" help:"Document or directory to explore (default: Go standard library)"`

	FilterFlags `embed:""`
}

// Run executes the ls command.
func (c *LsCmd) Run(g *Globals, streams *Streams) error {
	s, err := openSession(g, streams, c.File)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	var sort filter.SortKey
	if c.Sort != "" {
		if sort, err = filter.ParseSortKey(c.Sort); err != nil {
			return err
		}
	}

	if err := s.walk(c.Path); err != nil {
		return err
	}
	s.explorer.UpdateFilter(func(cfg *filter.Config) { c.apply(cfg, sort) })

	p := g.printer()
	fmt.Fprintln(streams.Out, p.Breadcrumbs(s.explorer.Breadcrumbs()))
	p.List(streams.Out, s.explorer.VisibleChildren())
	return nil
}

// ShowCmd prints the metadata panel of a node.
type ShowCmd struct {
	Path    []string `arg:"" optional:"" help:"Child names to descend through"`
	File    string   `short:"f" type:"path" help:"Document or directory to explore (default: Go standard library)"`
	Section string   `enum:"all,doc,help,source" default:"all" help:"Panel section: all, doc, help or source"`
}

// Run executes the show command.
func (c *ShowCmd) Run(g *Globals, streams *Streams) error {
	s, err := openSession(g, streams, c.File)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.walk(c.Path); err != nil {
		return err
	}

	p := g.printer()
	n := s.explorer.Current()
	switch c.Section {
	case "doc":
		p.Doc(streams.Out, n)
	case "help":
		p.Help(streams.Out, n)
	case "source":
		p.Source(streams.Out, n)
	default:
		p.Inspect(streams.Out, n)
	}
	return nil
}

// PackagesCmd lists the standard library packages of the default root.
type PackagesCmd struct{}

// Run executes the packages command.
func (c *PackagesCmd) Run(streams *Streams) error {
	fmt.Fprintln(streams.Out, strings.Join(loader.Packages(), "\n"))
	return nil
}

// MCPCmd serves an explorer session over MCP.
type MCPCmd struct {
	File string `arg:"" optional:"" type:"path" help:"Document or directory to explore (default: Go standard library)"`
}

// Run executes the mcp command.
func (c *MCPCmd) Run(g *Globals, streams *Streams) error {
	s, err := openSession(g, streams, c.File)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-osSignalChannel():
			cancel()
		case <-ctx.Done():
		}
	}()

	server := mcp.NewServer(s.explorer, Version)

	// Note: stdout carries JSON-RPC only; logs go to stderr.
	err = server.Run(ctx, streams.In, streams.Out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

// CLI is the root Kong command structure.
type CLI struct {
	Globals

	Explore  ExploreCmd  `cmd:"" default:"withargs" help:"Explore a document, directory or the Go standard library interactively"`
	Ls       LsCmd       `cmd:"" help:"List the children of a node"`
	Show     ShowCmd     `cmd:"" help:"Show type, value, signature, docs and source of a node"`
	Packages PackagesCmd `cmd:"" help:"List the standard library packages of the default root"`
	MCP      MCPCmd      `cmd:"" help:"Start MCP server (stdio transport)"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command
// on the process's standard streams.
func (c *CLI) Execute(args []string) error {
	return c.run(args, &Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}, kong.UsageOnError())
}

func (c *CLI) run(args []string, streams *Streams, opts ...kong.Option) error {
	opts = append([]kong.Option{
		kong.Name("objex-go"),
		kong.Description("Interactive explorer for Go values, packages and structured documents"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
		kong.Writers(streams.Out, streams.Err),
		kong.Bind(streams),
	}, opts...)

	parser, err := kong.New(c, opts...)
	if err != nil {
		return err
	}
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kongCtx.Run(&c.Globals)
}
