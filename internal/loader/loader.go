// Package loader builds exploration roots: data documents, directories of
// documents and the builtin standard-library table.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Supported file extensions and their formats.
var supportedExtensions = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := supportedExtensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Root returns the exploration root for path. An empty path yields the
// builtin module table, a directory yields a lazily loaded Dir and anything
// else is decoded as a document.
func Root(path string) (any, error) {
	if path == "" {
		return Builtin(), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening root: %w", err)
	}
	if info.IsDir() {
		return OpenDir(path)
	}
	return Load(path)
}

// Load reads and decodes a single document.
func Load(path string) (any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	v, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return v, nil
}

// Decode decodes data in the given format. Mappings become *inspect.Object
// values that keep the document's key order; sequences become []any.
func Decode(format Format, data []byte) (any, error) {
	switch format {
	case FormatJSON, FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		return decodeTOML(data)
	}
	return nil, fmt.Errorf("format %q: %w", format, ErrUnsupportedFormat)
}
