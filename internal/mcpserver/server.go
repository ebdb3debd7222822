// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the journal store to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/chroniclelens/internal/apperr"
	"github.com/starford/chroniclelens/internal/journal"
)

const draftRulesURI = "chroniclelens://draft-rules"

// Server wraps the MCP server with journal tools.
type Server struct {
	mcp   *server.MCPServer
	store *journal.Store
}

// New creates a new MCP server with all journal tools registered.
func New(store *journal.Store, version string) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"ChronicleLens",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List journal entries, optionally filtered by a case-insensitive query over title, content and tags."),
		mcp.WithString("query", mcp.Description("Search text (empty for all)")),
		mcp.WithString("sort", mcp.Description("newest_first (default), oldest_first or alphabetical")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("get_entry",
		mcp.WithDescription("Read a single journal entry by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id (e.g. 001)")),
	), s.getEntry)

	s.mcp.AddTool(mcp.NewTool("add_entry",
		mcp.WithDescription("Add a placeholder journal entry after the simulated save delay and return it."),
	), s.addEntry)

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Create a journal entry from a draft. Read the draft rules first via "+
			"the get_draft_rules tool or the "+draftRulesURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Entry title, 3 to 100 characters")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Entry body, 10 to 5000 characters")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags, at most 5")),
	), s.createEntry)

	s.mcp.AddTool(mcp.NewTool("update_entry",
		mcp.WithDescription("Replace an existing journal entry with a draft. The entry keeps its id and "+
			"creation time; every other field is replaced. The draft follows the same rules as create_entry."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id (e.g. 002)")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Entry title, 3 to 100 characters")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Entry body, 10 to 5000 characters")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags, at most 5")),
	), s.updateEntry)

	s.mcp.AddTool(mcp.NewTool("delete_entries",
		mcp.WithDescription("Delete journal entries by id."),
		mcp.WithString("ids", mcp.Required(), mcp.Description("Comma-separated entry ids (e.g. 001,003)")),
	), s.deleteEntries)

	s.mcp.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the full store snapshot: entries, loading flag, last error, selection and view parameters."),
	), s.getState)

	s.mcp.AddTool(mcp.NewTool("get_draft_rules",
		mcp.WithDescription("Returns the validation rules a draft must satisfy."),
	), s.getDraftRules)

	s.mcp.AddResource(
		mcp.NewResource(draftRulesURI, "Draft Rules",
			mcp.WithResourceDescription("Validation rules for journal drafts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDraftRulesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// optionalString returns the named argument or "" when it is absent.
func optionalString(req mcp.CallToolRequest, name string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	order, err := journal.ParseSortOrder(optionalString(req, "sort"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries := s.store.Filter(optionalString(req, "query"), order)
	return jsonResult(map[string]any{
		"entries": entries,
		"total":   len(entries),
	}), nil
}

func (s *Server) getEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, ok := s.store.GetByID(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %s", apperr.ErrNotFound, id)), nil
	}
	return jsonResult(entry), nil
}

func (s *Server) addEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.store.StartAdd(ctx)
	return pendingResult(p, err), nil
}

func (s *Server) createEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft, res := draftFromRequest(req)
	if res != nil {
		return res, nil
	}
	p, err := s.store.StartCreate(ctx, draft)
	return pendingResult(p, err), nil
}

func (s *Server) updateEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	draft, res := draftFromRequest(req)
	if res != nil {
		return res, nil
	}
	p, err := s.store.StartReplace(ctx, id, draft)
	return pendingResult(p, err), nil
}

func draftFromRequest(req mcp.CallToolRequest) (journal.Draft, *mcp.CallToolResult) {
	title, err := req.RequireString("title")
	if err != nil {
		return journal.Draft{}, mcp.NewToolResultError(err.Error())
	}
	content, err := req.RequireString("content")
	if err != nil {
		return journal.Draft{}, mcp.NewToolResultError(err.Error())
	}
	return journal.Draft{
		Title:   title,
		Content: content,
		Tags:    splitList(optionalString(req, "tags")),
	}, nil
}

// pendingResult waits for an accepted write and reports the entry it
// committed, or why it was rejected or committed none.
func pendingResult(p *journal.Pending, err error) *mcp.CallToolResult {
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			res := jsonResult(map[string]any{
				"error":  "validation failed",
				"fields": journal.FieldErrors(err),
			})
			res.IsError = true
			return res
		}
		return mcp.NewToolResultError(err.Error())
	}
	entry, err := p.Result()
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return jsonResult(entry)
}

func (s *Server) deleteEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids := splitList(raw)
	if len(ids) == 0 {
		return mcp.NewToolResultError("ids are required"), nil
	}
	n := s.store.Delete(ids...)
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", n)), nil
}

func (s *Server) getState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.store.Snapshot()), nil
}

func (s *Server) getDraftRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DraftContract), nil
}

func (s *Server) readDraftRulesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      draftRulesURI,
			MIMEType: "text/markdown",
			Text:     DraftContract,
		},
	}, nil
}
