package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/chroniclelens/internal/journal"
	"github.com/starford/chroniclelens/internal/models"
	"github.com/starford/chroniclelens/internal/testutil"
)

func testServer(t *testing.T, opts ...journal.Option) (*Server, *journal.Store) {
	t.Helper()
	store := testutil.Store(t, opts...)
	return New(store, "test"), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_entries":
		result, err = srv.listEntries(ctx, req)
	case "get_entry":
		result, err = srv.getEntry(ctx, req)
	case "add_entry":
		result, err = srv.addEntry(ctx, req)
	case "create_entry":
		result, err = srv.createEntry(ctx, req)
	case "update_entry":
		result, err = srv.updateEntry(ctx, req)
	case "delete_entries":
		result, err = srv.deleteEntries(ctx, req)
	case "get_state":
		result, err = srv.getState(ctx, req)
	case "get_draft_rules":
		result, err = srv.getDraftRules(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListEntries(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_entries", map[string]interface{}{"query": "cook"})
	var out struct {
		Entries []models.JournalEntry `json:"entries"`
		Total   int                   `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 1 || out.Entries[0].Title != "Cooking Experiment" {
		t.Errorf("unexpected result %+v", out)
	}

	r = callTool(t, srv, "list_entries", map[string]interface{}{"sort": "upside_down"})
	if !r.IsError {
		t.Error("expected error for unknown sort")
	}
}

func TestGetEntry(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_entry", map[string]interface{}{"id": "002"})
	if !strings.Contains(resultText(r), "Weekend Adventure") {
		t.Errorf("get_entry = %q", resultText(r))
	}

	r = callTool(t, srv, "get_entry", map[string]interface{}{"id": "404"})
	if !r.IsError {
		t.Error("expected error for missing entry")
	}
}

func TestAddEntry(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "add_entry", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("add_entry failed: %s", resultText(r))
	}
	var e models.JournalEntry
	if err := json.Unmarshal([]byte(resultText(r)), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.ID != "004" || e.Title != "New journal 004" {
		t.Errorf("unexpected entry %+v", e)
	}
	if len(store.GetAll()) != 4 {
		t.Errorf("store has %d entries, want 4", len(store.GetAll()))
	}
}

func TestAddEntry_Failure(t *testing.T) {
	srv, _ := testServer(t, journal.WithFailure(func(context.Context) error {
		return errors.New("offline")
	}))

	r := callTool(t, srv, "add_entry", map[string]interface{}{})
	if !r.IsError || resultText(r) != "Failed to add journal: offline" {
		t.Errorf("expected failure result, got %q", resultText(r))
	}
}

func TestCreateEntry(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "create_entry", map[string]interface{}{
		"title":   "Morning run",
		"content": "Five kilometres before breakfast.",
		"tags":    "sport, morning",
	})
	if r.IsError {
		t.Fatalf("create_entry failed: %s", resultText(r))
	}

	e, ok := store.GetByID("004")
	if !ok {
		t.Fatal("entry not created")
	}
	if len(e.Tags) != 2 || e.Tags[0] != "sport" || e.Tags[1] != "morning" {
		t.Errorf("unexpected tags %v", e.Tags)
	}
}

func TestCreateEntry_Invalid(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "create_entry", map[string]interface{}{
		"title":   "Hi",
		"content": "Five kilometres before breakfast.",
	})
	if !r.IsError {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(resultText(r), `"title"`) {
		t.Errorf("missing title field error: %s", resultText(r))
	}
	if len(store.GetAll()) != 3 {
		t.Error("invalid draft changed the store")
	}

	r = callTool(t, srv, "create_entry", map[string]interface{}{"title": "Missing content"})
	if !r.IsError {
		t.Error("expected error for missing content")
	}
}

func TestAddEntry_ReturnsOwnEntryWithPrepend(t *testing.T) {
	srv, _ := testServer(t, journal.WithPlacement(journal.Prepend))

	for _, want := range []string{"004", "005"} {
		r := callTool(t, srv, "add_entry", map[string]interface{}{})
		var e models.JournalEntry
		if err := json.Unmarshal([]byte(resultText(r)), &e); err != nil {
			t.Fatalf("decode %q: %v", resultText(r), err)
		}
		if e.ID != want {
			t.Errorf("add_entry returned %q, want %q", e.ID, want)
		}
	}
}

func TestUpdateEntry(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "update_entry", map[string]interface{}{
		"id":      "001",
		"title":   "My First Memory, revised",
		"content": "Rewrote the first entry with more detail.",
	})
	if r.IsError {
		t.Fatalf("update_entry failed: %s", resultText(r))
	}
	var e models.JournalEntry
	if err := json.Unmarshal([]byte(resultText(r)), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.ID != "001" || e.Title != "My First Memory, revised" {
		t.Errorf("unexpected entry %+v", e)
	}
	if got, _ := store.GetByID("001"); len(got.Tags) != 0 || got.HasPhoto {
		t.Errorf("entry not replaced whole: %+v", got)
	}
	if len(store.GetAll()) != 3 {
		t.Errorf("update changed the entry count: %d", len(store.GetAll()))
	}
}

func TestUpdateEntry_Errors(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "update_entry", map[string]interface{}{
		"id":      "404",
		"title":   "Valid title",
		"content": "Valid content body.",
	})
	if !r.IsError || !strings.Contains(resultText(r), "not found") {
		t.Errorf("expected not found, got %q", resultText(r))
	}

	r = callTool(t, srv, "update_entry", map[string]interface{}{
		"id":      "001",
		"title":   "Hi",
		"content": "Valid content body.",
	})
	if !r.IsError || !strings.Contains(resultText(r), `"title"`) {
		t.Errorf("expected title field error, got %q", resultText(r))
	}
}

func TestDeleteEntries(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "delete_entries", map[string]interface{}{"ids": "001, 003,999"})
	if text := resultText(r); text != "deleted: 2" {
		t.Errorf("delete result = %q", text)
	}
	if len(store.GetAll()) != 1 {
		t.Errorf("expected 1 entry left, got %d", len(store.GetAll()))
	}

	r = callTool(t, srv, "delete_entries", map[string]interface{}{"ids": " , "})
	if !r.IsError {
		t.Error("expected error for empty id list")
	}
}

func TestGetState(t *testing.T) {
	srv, store := testServer(t)
	store.ToggleSelection("002")

	r := callTool(t, srv, "get_state", map[string]interface{}{})
	var st journal.State
	if err := json.Unmarshal([]byte(resultText(r)), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(st.Entries) != 3 || !st.IsSelected("002") {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestGetDraftRules(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_draft_rules", map[string]interface{}{})
	if !strings.Contains(resultText(r), "at most 5") {
		t.Errorf("unexpected rules text %q", resultText(r))
	}
}
