package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/Benny93/objex-go/internal/inspect"
)

// Default patterns to ignore (in addition to .gitignore).
var defaultIgnorePatterns = []string{
	".git/",
	"node_modules/",
	"vendor/",
	".venv/",
	"__pycache__/",
	".DS_Store",
}

// Dir is a directory explored as a namespace: subdirectories and supported
// documents are its attributes, loaded only when resolved. Paths matched by
// the root's .gitignore are left out.
type Dir struct {
	path    string
	root    string
	matcher gitignore.Matcher
}

// OpenDir opens path as a directory root.
func OpenDir(path string) (*Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	patterns, err := loadGitignore(abs)
	if err != nil {
		return nil, fmt.Errorf("loading .gitignore: %w", err)
	}
	return &Dir{path: abs, root: abs, matcher: newMatcher(patterns)}, nil
}

// Path returns the absolute directory path.
func (d *Dir) Path() string { return d.path }

// Doc implements inspect.Documented.
func (d *Dir) Doc() string {
	rel, err := filepath.Rel(d.root, d.path)
	if err != nil || rel == "." {
		return "Directory " + d.path
	}
	return "Directory " + rel + " under " + d.root
}

func (d *Dir) String() string {
	return fmt.Sprintf("<dir %q>", d.path)
}

// Attributes implements inspect.Inspectable. Unreadable directories have no
// attributes.
func (d *Dir) Attributes() []inspect.Attribute {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil
	}

	var attrs []inspect.Attribute
	for _, e := range entries {
		path := filepath.Join(d.path, e.Name())
		if d.Ignored(path, e.IsDir()) {
			continue
		}

		switch {
		case e.IsDir():
			sub := &Dir{path: path, root: d.root, matcher: d.matcher}
			attrs = append(attrs, inspect.Value(e.Name(), sub))
		case isSupportedFile(e.Name()):
			attrs = append(attrs, inspect.Attribute{
				Name:    e.Name(),
				Resolve: func() (any, error) { return Load(path) },
			})
		}
	}
	return attrs
}

// Ignored reports whether path, inside the root, is excluded.
func (d *Dir) Ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(d.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return d.matcher.Match(splitPath(rel), isDir)
}

// loadGitignore loads .gitignore patterns from the directory root.
func loadGitignore(root string) ([]gitignore.Pattern, error) {
	content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns, nil
}

func newMatcher(patterns []gitignore.Pattern) gitignore.Matcher {
	all := make([]gitignore.Pattern, 0, len(defaultIgnorePatterns)+len(patterns))
	for _, p := range defaultIgnorePatterns {
		all = append(all, gitignore.ParsePattern(p, nil))
	}
	return gitignore.NewMatcher(append(all, patterns...))
}

// isSupportedFile checks if a file has a supported extension.
func isSupportedFile(name string) bool {
	_, err := FormatOf(name)
	return err == nil
}

func splitPath(rel string) []string {
	return strings.Split(filepath.ToSlash(rel), "/")
}
