package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benny93/objex-go/internal/filter"
	"github.com/Benny93/objex-go/internal/graph"
	"github.com/Benny93/objex-go/internal/inspect"
	"github.com/Benny93/objex-go/internal/navigation"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := inspect.NewObject()
	cfg.Set("host", "localhost")
	cfg.Set("port", 8080)

	mod := inspect.NewModule("demo", "Demo module.").
		Add("config", cfg).
		Add("greet", strings.ToUpper).
		Add("count", 3).
		Add("_secret", 1)

	return NewServer(navigation.New(nil, mod, filter.DefaultConfig()), "test")
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	require.NotNil(t, s)
	assert.Equal(t, "objex-go", s.info.Name)
	assert.Equal(t, "test", s.info.Version)
}

func TestServer_Tools(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	t.Run("ListTools", func(t *testing.T) {
		t.Parallel()
		var names []string
		for _, tool := range s.ListTools() {
			names = append(names, tool.Name)
			assert.NotEmpty(t, tool.Description)
			require.NotNil(t, tool.InputSchema)
			assert.Equal(t, "object", tool.InputSchema.Type)
		}
		assert.Equal(t, []string{
			"objex_list", "objex_enter", "objex_back",
			"objex_breadcrumbs", "objex_inspect", "objex_filter",
		}, names)
	})

	t.Run("UnknownTool", func(t *testing.T) {
		t.Parallel()
		_, err := s.CallTool(context.Background(), "objex_nope", nil)
		assert.Error(t, err)
	})
}

func TestServer_ListAndNavigate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestServer(t)

	out, err := s.CallTool(ctx, "objex_list", nil)
	require.NoError(t, err)
	assert.Equal(t, "0:root\n\n{**config}\ncount\ngreet()\n\n1 more hidden by filters.\n", out)

	out, err = s.CallTool(ctx, "objex_enter", map[string]any{"name": "config"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "0:root > 1:config\n"))
	assert.Contains(t, out, "host = 'localhost'")
	assert.Contains(t, out, "port")

	_, err = s.CallTool(ctx, "objex_enter", map[string]any{"name": "missing"})
	assert.ErrorIs(t, err, graph.ErrNoSuchChild)

	_, err = s.CallTool(ctx, "objex_enter", map[string]any{})
	assert.Error(t, err)

	_, err = s.CallTool(ctx, "objex_back", map[string]any{"index": float64(5)})
	assert.Error(t, err)

	out, err = s.CallTool(ctx, "objex_back", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "0:root\n"))

	out, err = s.CallTool(ctx, "objex_back", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Already at the root."))

	// Hidden children are still reachable by name.
	_, err = s.CallTool(ctx, "objex_enter", map[string]any{"name": "_secret"})
	require.NoError(t, err)
	out, err = s.CallTool(ctx, "objex_back", map[string]any{"index": float64(0)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "0:root\n"))

	crumbs, err := s.CallTool(ctx, "objex_breadcrumbs", nil)
	require.NoError(t, err)
	assert.Equal(t, "0:root", crumbs)
}

func TestServer_Inspect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestServer(t)

	out, err := s.CallTool(ctx, "objex_inspect", map[string]any{"name": "greet"})
	require.NoError(t, err)
	assert.Contains(t, out, "Name\n  root.greet\n")
	assert.Contains(t, out, "Signature\n")

	out, err = s.CallTool(ctx, "objex_inspect", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Name\n  root\n")
	assert.Contains(t, out, "Docstring\n  Demo module.")

	_, err = s.CallTool(ctx, "objex_inspect", map[string]any{"name": "nope"})
	assert.ErrorIs(t, err, graph.ErrNoSuchChild)
}

func TestServer_Filter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("Query", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t)
		out, err := s.CallTool(ctx, "objex_filter", map[string]any{"query": "cou"})
		require.NoError(t, err)
		assert.Contains(t, out, "query:      cou")
		assert.Equal(t, []string{"count"}, visibleNames(s))
	})

	t.Run("PrivateAndTypes", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t)
		_, err := s.CallTool(ctx, "objex_filter", map[string]any{
			"private": true,
			"types":   []any{"int"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"_secret", "count"}, visibleNames(s))

		_, err = s.CallTool(ctx, "objex_filter", map[string]any{"clear": true})
		require.NoError(t, err)
		assert.Equal(t, []string{"config", "count", "greet"}, visibleNames(s))
	})

	t.Run("InvalidSort", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t)
		_, err := s.CallTool(ctx, "objex_filter", map[string]any{"sort": "size", "query": "x"})
		assert.Error(t, err)
		assert.Empty(t, s.explorer.FilterConfig().Query, "a rejected update changes nothing")
	})
}

func visibleNames(s *Server) []string {
	var names []string
	for _, n := range s.explorer.VisibleChildren() {
		names = append(names, n.Name())
	}
	return names
}

func TestServer_Resources(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestServer(t)

	uris := make([]string, 0, 3)
	for _, r := range s.ListResources() {
		uris = append(uris, r.URI)
		assert.Equal(t, "text/plain", r.MimeType)
	}
	assert.Equal(t, []string{"objex://breadcrumbs", "objex://current", "objex://filters"}, uris)

	crumbs, err := s.ReadResource(ctx, "objex://breadcrumbs")
	require.NoError(t, err)
	assert.Equal(t, "0:root", crumbs)

	current, err := s.ReadResource(ctx, "objex://current")
	require.NoError(t, err)
	assert.Contains(t, current, "Name\n  root\n")

	filters, err := s.ReadResource(ctx, "objex://filters")
	require.NoError(t, err)
	assert.Contains(t, filters, "fuzzy:      on")
	assert.Contains(t, filters, "types:      all")

	_, err = s.ReadResource(ctx, "objex://nope")
	assert.Error(t, err)
}

func TestServer_Run(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"objex_enter","arguments":{"name":"config"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"objex_enter","arguments":{"name":"nope"}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"resources/read","params":{"uri":"objex://breadcrumbs"}}`,
		`{"jsonrpc":"2.0","id":5,"method":"bogus"}`,
	}, "\n")

	var out strings.Builder
	require.NoError(t, s.Run(context.Background(), strings.NewReader(input), &out))

	var resps []map[string]any
	sc := bufio.NewScanner(strings.NewReader(out.String()))
	for sc.Scan() {
		var resp map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &resp))
		resps = append(resps, resp)
	}
	require.Len(t, resps, 5)

	initRes := resps[0]["result"].(map[string]any)
	assert.Equal(t, ProtocolVersion, initRes["protocolVersion"])
	assert.Equal(t, "objex-go", initRes["serverInfo"].(map[string]any)["name"])

	call := resps[1]["result"].(map[string]any)
	text := call["content"].([]any)[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "0:root > 1:config")

	failed := resps[2]["result"].(map[string]any)
	assert.Equal(t, true, failed["isError"])

	read := resps[3]["result"].(map[string]any)
	contents := read["contents"].([]any)[0].(map[string]any)
	assert.Equal(t, "0:root > 1:config", contents["text"])

	assert.Equal(t, float64(-32601), resps[4]["error"].(map[string]any)["code"])
}

func TestServer_RunNilIO(t *testing.T) {
	t.Parallel()
	assert.Error(t, newTestServer(t).Run(context.Background(), nil, nil))
}
