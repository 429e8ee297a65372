// Package config loads objex-go settings from an optional config file and
// OBJEX_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Benny93/objex-go/internal/filter"
	"github.com/Benny93/objex-go/internal/inspect"
	"github.com/Benny93/objex-go/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. OBJEX_FILTER_FUZZY.
const EnvPrefix = "OBJEX"

// Config holds all application configuration.
type Config struct {
	Filter  FilterConfig  `mapstructure:"filter"`
	Preview PreviewConfig `mapstructure:"preview"`
	Source  SourceConfig  `mapstructure:"source"`
	Explore ExploreConfig `mapstructure:"explore"`
	Log     LogConfig     `mapstructure:"log"`
}

// FilterConfig is the initial filter state of a session.
type FilterConfig struct {
	Fuzzy      bool `mapstructure:"fuzzy"`
	SearchHelp bool `mapstructure:"search_help"`
	Private    bool `mapstructure:"private"`
	Dunder     bool `mapstructure:"dunder"`

	// Types lists active type filters; empty activates every flag token.
	Types []string `mapstructure:"types"`

	Sort string `mapstructure:"sort"`
}

type PreviewConfig struct {
	MaxElements int `mapstructure:"max_elements"`
	MaxString   int `mapstructure:"max_string"`
	MaxDepth    int `mapstructure:"max_depth"`
	MaxWidth    int `mapstructure:"max_width"`
}

type SourceConfig struct {
	// Backend caches source files: "memory" or "badger".
	Backend string `mapstructure:"backend"`
}

type ExploreConfig struct {
	// Workers builds child nodes in parallel when greater than one.
	Workers int `mapstructure:"workers"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := inspect.DefaultPreviewOptions()
	return &Config{
		Filter: FilterConfig{
			Fuzzy: true,
			Types: inspect.Tokens(),
			Sort:  string(filter.SortByName),
		},
		Preview: PreviewConfig{
			MaxElements: p.MaxElements,
			MaxString:   p.MaxString,
			MaxDepth:    p.MaxDepth,
			MaxWidth:    p.MaxWidth,
		},
		Source:  SourceConfig{Backend: "memory"},
		Explore: ExploreConfig{Workers: 0},
		Log:     LogConfig{Level: "warn"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("filter.fuzzy", d.Filter.Fuzzy)
	v.SetDefault("filter.search_help", d.Filter.SearchHelp)
	v.SetDefault("filter.private", d.Filter.Private)
	v.SetDefault("filter.dunder", d.Filter.Dunder)
	v.SetDefault("filter.types", d.Filter.Types)
	v.SetDefault("filter.sort", d.Filter.Sort)
	v.SetDefault("preview.max_elements", d.Preview.MaxElements)
	v.SetDefault("preview.max_string", d.Preview.MaxString)
	v.SetDefault("preview.max_depth", d.Preview.MaxDepth)
	v.SetDefault("preview.max_width", d.Preview.MaxWidth)
	v.SetDefault("source.backend", d.Source.Backend)
	v.SetDefault("explore.workers", d.Explore.Workers)
	v.SetDefault("log.level", d.Log.Level)
}

// DefaultPath returns $XDG_CONFIG_HOME/objex-go/config.yaml, or "" when the
// user config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "objex-go", "config.yaml")
}

// Load reads configuration from path and the environment. An empty path
// reads DefaultPath if that file exists; a missing explicit path is an
// error. Invalid values are reset to their defaults and reported as
// warnings.
func Load(path string) (*Config, []string, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if def := DefaultPath(); def != "" {
			if _, err := os.Stat(def); err == nil {
				path = def
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, cfg.Validate(), nil
}

// Validate checks configuration for issues, resets invalid values to their
// defaults and returns a warning for each.
func (c *Config) Validate() []string {
	var warnings []string
	d := Default()

	if _, err := filter.ParseSortKey(c.Filter.Sort); err != nil {
		warnings = append(warnings, fmt.Sprintf("filter.sort: %v; using %q", err, d.Filter.Sort))
		c.Filter.Sort = d.Filter.Sort
	}

	bounds := []struct {
		key string
		val *int
		def int
	}{
		{"preview.max_elements", &c.Preview.MaxElements, d.Preview.MaxElements},
		{"preview.max_string", &c.Preview.MaxString, d.Preview.MaxString},
		{"preview.max_depth", &c.Preview.MaxDepth, d.Preview.MaxDepth},
		{"preview.max_width", &c.Preview.MaxWidth, d.Preview.MaxWidth},
	}
	for _, b := range bounds {
		if *b.val <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s %d must be positive; using %d", b.key, *b.val, b.def))
			*b.val = b.def
		}
	}

	switch c.Source.Backend {
	case "memory", "badger":
	default:
		warnings = append(warnings, fmt.Sprintf("source.backend %q is not memory or badger; using %q", c.Source.Backend, d.Source.Backend))
		c.Source.Backend = d.Source.Backend
	}

	if c.Explore.Workers < 0 {
		warnings = append(warnings, fmt.Sprintf("explore.workers %d is negative; using %d", c.Explore.Workers, d.Explore.Workers))
		c.Explore.Workers = d.Explore.Workers
	}

	if _, ok := logging.LevelFromString(c.Log.Level); !ok {
		warnings = append(warnings, fmt.Sprintf("log.level %q is not debug, info, warn or error; using %q", c.Log.Level, d.Log.Level))
		c.Log.Level = d.Log.Level
	}

	return warnings
}

// FilterConfig returns the initial filter configuration.
func (c *Config) FilterConfig() filter.Config {
	fc := filter.DefaultConfig()
	fc.Fuzzy = c.Filter.Fuzzy
	fc.SearchHelp = c.Filter.SearchHelp
	fc.Private = c.Filter.Private
	fc.Dunder = c.Filter.Dunder
	if sort, err := filter.ParseSortKey(c.Filter.Sort); err == nil {
		fc.Sort = sort
	}
	if len(c.Filter.Types) > 0 {
		fc.SetTypes(c.Filter.Types...)
	}
	return fc
}

// PreviewOptions returns the preview bounds.
func (c *Config) PreviewOptions() inspect.PreviewOptions {
	return inspect.PreviewOptions{
		MaxElements: c.Preview.MaxElements,
		MaxString:   c.Preview.MaxString,
		MaxDepth:    c.Preview.MaxDepth,
		MaxWidth:    c.Preview.MaxWidth,
	}
}
