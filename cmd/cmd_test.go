package cmd

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benny93/objex-go/internal/graph"
	"github.com/Benny93/objex-go/internal/logging"
)

const testDoc = `{"b": 1, "a": {"x": true, "name": "demo"}, "_p": 2}`

// runCLI executes args against a temp config and returns stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: error\n"), 0o644))

	var out, errOut bytes.Buffer
	streams := &Streams{In: strings.NewReader(stdin), Out: &out, Err: &errOut}
	args = append([]string{"--config", cfg, "--color", "never"}, args...)
	err := NewCLI().run(args, streams)
	return out.String(), err
}

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(testDoc), 0o644))
	return path
}

func TestLsCmd(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t)

	t.Run("Root", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "", "ls", "--file", doc)
		require.NoError(t, err)
		assert.Equal(t, "0:root\n{**a}\nb\n", out)
	})

	t.Run("Path", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "", "ls", "--file", doc, "a")
		require.NoError(t, err)
		assert.Equal(t, "0:root > 1:a\nname = 'demo'\nx = true\n", out)
	})

	t.Run("PrivateAndQuery", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "", "ls", "--file", doc, "--private", "--query", "p")
		require.NoError(t, err)
		assert.Equal(t, "0:root\n_p\n", out)
	})

	t.Run("Types", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "", "ls", "--file", doc, "--types", "map")
		require.NoError(t, err)
		assert.Equal(t, "0:root\n{**a}\n", out)
	})

	t.Run("InvalidSort", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, "", "ls", "--file", doc, "--sort", "size")
		assert.Error(t, err)
	})

	t.Run("MissingChild", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, "", "ls", "--file", doc, "nope")
		assert.ErrorIs(t, err, graph.ErrNoSuchChild)
	})

	t.Run("MissingFile", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, "", "ls", "--file", filepath.Join(t.TempDir(), "absent.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestShowCmd(t *testing.T) {
	t.Parallel()

	t.Run("Document", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "", "show", "--file", writeDoc(t), "a", "name")
		require.NoError(t, err)
		assert.Contains(t, out, "Name\n  root.a.name\n")
		assert.Contains(t, out, "Value\n  \"demo\"\n")
	})

	t.Run("StandardLibraryDoc", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "", "show", "strings", "--section", "doc")
		require.NoError(t, err)
		assert.Contains(t, out, "Package strings")
	})

	t.Run("Source", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, "", "show", "strings", "ToUpper", "--section", "source")
		require.NoError(t, err)
		assert.Contains(t, out, "func ToUpper(s string) string {")
	})
}

func TestPackagesCmd(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, "", "packages")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines, "strings")
	assert.Contains(t, lines, "path/filepath")
}

func TestExploreCmd(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, "cd a\npwd\nquit\n", "explore", writeDoc(t))
	require.NoError(t, err)
	assert.Contains(t, out, "0:root > 1:a\n")
	assert.Contains(t, out, "x = true")
}

func TestMCPCmd(t *testing.T) {
	t.Parallel()

	in := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"objex_list","arguments":{}}}` + "\n"
	out, err := runCLI(t, in, "mcp", writeDoc(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"jsonrpc":"2.0"`)
	assert.Contains(t, out, `{**a}`)
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, "", "frobnicate", "--bogus")
	assert.Error(t, err)
}

func TestQuietFlag(t *testing.T) {
	t.Parallel()

	parser, err := kong.New(NewCLI())
	require.NoError(t, err)

	var help string
	for _, f := range parser.Model.Flags {
		if f.Name == "quiet" {
			help = f.Help
		}
	}
	assert.Equal(t, "Disable logging", help)
	assert.Greater(t, logging.Resolve(0, true, "debug"), slog.LevelError)
}
