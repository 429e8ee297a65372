// Package mcp exposes an explorer session over the Model Context Protocol so
// that agents can browse the same object graph as the interactive shell.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Benny93/objex-go/internal/filter"
	"github.com/Benny93/objex-go/internal/graph"
	"github.com/Benny93/objex-go/internal/navigation"
	"github.com/Benny93/objex-go/internal/render"
)

// ProtocolVersion is the MCP revision this server speaks.
const ProtocolVersion = "2024-11-05"

// Server represents the MCP server.
type Server struct {
	explorer *navigation.Explorer
	printer  *render.Printer
	info     *mcp.Implementation
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// NewServer creates a server that drives explorer. Output is always plain
// text.
func NewServer(explorer *navigation.Explorer, version string) *Server {
	return &Server{
		explorer: explorer,
		printer:  render.New(false),
		info: &mcp.Implementation{
			Name:    "objex-go",
			Version: version,
		},
	}
}

var emptySchema = &jsonschema.Schema{
	Type:       "object",
	Properties: map[string]*jsonschema.Schema{},
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "objex_list",
			Description: "List the visible children of the current node with the active filters applied.",
			InputSchema: emptySchema,
		},
		{
			Name:        "objex_enter",
			Description: "Enter a child of the current node by name. Hidden children can be entered too.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"name": {Type: "string", Description: "Child name as shown by objex_list"},
				},
				Required: []string{"name"},
			},
		},
		{
			Name:        "objex_back",
			Description: "Go back one level, or to a breadcrumb index when given.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"index": {Type: "integer", Description: "Breadcrumb index to return to (0 is the root)"},
				},
			},
		},
		{
			Name:        "objex_breadcrumbs",
			Description: "Show the navigation trail from the root to the current node.",
			InputSchema: emptySchema,
		},
		{
			Name:        "objex_inspect",
			Description: "Show type, value preview, signature, docstring, help and source of the current node or one of its children.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"name": {Type: "string", Description: "Child to inspect; omit for the current node"},
				},
			},
		},
		{
			Name:        "objex_filter",
			Description: "Update the search and filter settings. Omitted fields keep their value.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"query":       {Type: "string", Description: "Search text; empty matches everything"},
					"fuzzy":       {Type: "boolean", Description: "Enable fuzzy matching for queries of 4 or more characters"},
					"search_help": {Type: "boolean", Description: "Also match the query against help text"},
					"private":     {Type: "boolean", Description: "Show names with a leading underscore"},
					"dunder":      {Type: "boolean", Description: "Show names with two leading underscores"},
					"types": {
						Type:        "array",
						Items:       &jsonschema.Schema{Type: "string"},
						Description: "Active type filters: flag tokens or exact type names",
					},
					"sort":  {Type: "string", Enum: []any{"name", "type"}, Description: "Sort order"},
					"clear": {Type: "boolean", Description: "Reset type, private and dunder filters first"},
				},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "objex://breadcrumbs",
			Name:        "Breadcrumbs",
			Description: "Navigation trail of the session",
			MimeType:    "text/plain",
		},
		{
			URI:         "objex://current",
			Name:        "Current Node",
			Description: "Inspection panel of the current node",
			MimeType:    "text/plain",
		},
		{
			URI:         "objex://filters",
			Name:        "Filters",
			Description: "Active search and filter settings",
			MimeType:    "text/plain",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "objex_list":
		return s.handleList(), nil
	case "objex_enter":
		childName, _ := args["name"].(string)
		return s.handleEnter(childName)
	case "objex_back":
		index, ok := args["index"].(float64)
		return s.handleBack(int(index), ok)
	case "objex_breadcrumbs":
		return s.breadcrumbs(), nil
	case "objex_inspect":
		childName, _ := args["name"].(string)
		return s.handleInspect(childName)
	case "objex_filter":
		return s.handleFilter(args)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "objex://breadcrumbs":
		return s.breadcrumbs(), nil
	case "objex://current":
		return s.inspect(s.explorer.Current()), nil
	case "objex://filters":
		return s.printer.Filters(s.explorer.FilterConfig()), nil
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// MCP over stdio requires compact JSON, one message per line.

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) && len(bytes.TrimSpace(line)) == 0 {
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		var req map[string]any
		if jsonErr := json.Unmarshal(line, &req); jsonErr != nil {
			if err != nil {
				return nil
			}
			continue
		}

		// Notifications carry no id and get no response.
		if _, hasID := req["id"]; hasID {
			if encErr := encoder.Encode(s.handleRequest(ctx, req)); encErr != nil {
				return encErr
			}
		}
		if err != nil {
			return nil
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "ping":
		return result(id, map[string]any{})
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return result(id, map[string]any{
		"protocolVersion": ProtocolVersion,
		"serverInfo": map[string]any{
			"name":    s.info.Name,
			"version": s.info.Version,
		},
		"capabilities": map[string]any{
			"tools": map[string]any{
				"listChanged": false,
			},
			"resources": map[string]any{
				"listChanged": false,
			},
		},
	})
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": tool.InputSchema,
		}
	}
	return result(id, map[string]any{"tools": toolList})
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	text, err := s.CallTool(ctx, name, args)
	if err != nil {
		// Tool failures are reported in-band so the model can react to them.
		return result(id, map[string]any{
			"content": []map[string]any{{"type": "text", "text": err.Error()}},
			"isError": true,
		})
	}

	return result(id, map[string]any{
		"content": []map[string]any{{"type": "text", "text": text}},
	})
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}
	return result(id, map[string]any{"resources": resourceList})
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32002, err.Error())
	}

	return result(id, map[string]any{
		"contents": []map[string]any{
			{
				"uri":      uri,
				"mimeType": "text/plain",
				"text":     content,
			},
		},
	})
}

// Tool handlers

func (s *Server) handleList() string {
	var sb strings.Builder
	sb.WriteString(s.breadcrumbs())
	sb.WriteString("\n\n")

	visible := s.explorer.VisibleChildren()
	total := s.explorer.Current().Len()
	if len(visible) == 0 {
		fmt.Fprintf(&sb, "No visible children (%d hidden by filters).\n", total)
		return sb.String()
	}
	s.printer.List(&sb, visible)
	if hidden := total - len(visible); hidden > 0 {
		fmt.Fprintf(&sb, "\n%d more hidden by filters.\n", hidden)
	}
	return sb.String()
}

func (s *Server) handleEnter(name string) (string, error) {
	if name == "" {
		return "", errors.New("name is required")
	}
	if _, err := s.explorer.EnterName(name); err != nil {
		return "", err
	}
	return s.handleList(), nil
}

func (s *Server) handleBack(index int, hasIndex bool) (string, error) {
	if hasIndex {
		if !s.explorer.BackTo(index) {
			return "", fmt.Errorf("breadcrumb index %d out of range [0, %d]", index, s.explorer.Depth()-1)
		}
		return s.handleList(), nil
	}
	if !s.explorer.Back() {
		return "Already at the root.\n\n" + s.handleList(), nil
	}
	return s.handleList(), nil
}

func (s *Server) handleInspect(name string) (string, error) {
	n := s.explorer.Current()
	if name != "" {
		child, ok := n.Child(name)
		if !ok {
			return "", &graph.ChildError{Parent: n, Name: name}
		}
		n = child
	}
	return s.inspect(n), nil
}

func (s *Server) handleFilter(args map[string]any) (string, error) {
	var sortKey filter.SortKey
	if raw, ok := args["sort"].(string); ok {
		key, err := filter.ParseSortKey(raw)
		if err != nil {
			return "", err
		}
		sortKey = key
	}

	cfg := s.explorer.UpdateFilter(func(c *filter.Config) {
		if clear, _ := args["clear"].(bool); clear {
			c.Clear()
		}
		if q, ok := args["query"].(string); ok {
			c.Query = q
		}
		setBool(args, "fuzzy", &c.Fuzzy)
		setBool(args, "search_help", &c.SearchHelp)
		setBool(args, "private", &c.Private)
		setBool(args, "dunder", &c.Dunder)
		if raw, ok := args["types"].([]any); ok {
			types := make([]string, 0, len(raw))
			for _, t := range raw {
				if tok, ok := t.(string); ok {
					types = append(types, tok)
				}
			}
			c.SetTypes(types...)
		}
		if sortKey != "" {
			c.Sort = sortKey
		}
	})

	return s.printer.Filters(cfg) + "\n\n" + s.handleList(), nil
}

func (s *Server) breadcrumbs() string {
	return s.printer.Breadcrumbs(s.explorer.Breadcrumbs())
}

func (s *Server) inspect(n *graph.Node) string {
	var sb strings.Builder
	s.printer.Inspect(&sb, n)
	return sb.String()
}

// Helper functions

func setBool(args map[string]any, key string, dst *bool) {
	if v, ok := args[key].(bool); ok {
		*dst = v
	}
}

func result(id any, res map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  res,
	}
}

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}
