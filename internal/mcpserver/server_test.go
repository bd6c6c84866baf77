package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/importer"
	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

func testServer(t *testing.T) (*Server, *store.DB, string) {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "mcp-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	lib, err := library.New(filepath.Join(t.TempDir(), "library"))
	if err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	imp := importer.New(db, lib, nil, importer.ModeStructural, logger)
	imp.SetExtractor(func(string) ([]string, error) {
		return []string{"1. Introduction\nBackground prose."}, nil
	})

	dataDir := t.TempDir()
	return New(db, imp), db, dataDir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "import_document":
		result, err = srv.importDocument(ctx, req)
	case "list_packets":
		result, err = srv.listPackets(ctx, req)
	case "get_packet":
		result, err = srv.getPacket(ctx, req)
	case "search_packets":
		result, err = srv.searchPackets(ctx, req)
	case "set_item_status":
		result, err = srv.setItemStatus(ctx, req)
	case "add_capture":
		result, err = srv.addCapture(ctx, req)
	default:
		t.Fatalf("unknown tool %q", name)
	}
	if err != nil {
		t.Fatalf("tool %s returned transport error: %v", name, err)
	}
	return result
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("content = %T, want text", res.Content[0])
	}
	return text.Text
}

func importFixture(t *testing.T, srv *Server, dataDir, name string) *models.Packet {
	t.Helper()
	path := filepath.Join(dataDir, name)
	if err := os.WriteFile(path, []byte("fake pdf "+name), 0o644); err != nil {
		t.Fatal(err)
	}
	res := callTool(t, srv, "import_document", map[string]interface{}{"path": path})
	if res.IsError {
		t.Fatalf("import failed: %s", resultText(t, res))
	}
	var p models.Packet
	if err := json.Unmarshal([]byte(resultText(t, res)), &p); err != nil {
		t.Fatal(err)
	}
	return &p
}

func TestImportDocumentTool(t *testing.T) {
	srv, _, dataDir := testServer(t)

	p := importFixture(t, srv, dataDir, "lecture.pdf")
	if p.Title != "lecture" || len(p.ChecklistItems) == 0 {
		t.Errorf("packet = %+v", p)
	}

	// Non-PDF path is a tool error, not a transport error.
	res := callTool(t, srv, "import_document", map[string]interface{}{"path": "/tmp/notes.txt"})
	if !res.IsError {
		t.Error("expected error result for non-pdf path")
	}
}

func TestListAndGetPacketTools(t *testing.T) {
	srv, _, dataDir := testServer(t)
	p := importFixture(t, srv, dataDir, "doc.pdf")

	res := callTool(t, srv, "list_packets", map[string]interface{}{})
	var summaries []store.PacketSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].ID != p.ID {
		t.Errorf("summaries = %+v", summaries)
	}

	res = callTool(t, srv, "get_packet", map[string]interface{}{"id": p.ID.String()})
	if res.IsError {
		t.Fatalf("get_packet: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), p.Title) {
		t.Error("packet JSON missing title")
	}

	res = callTool(t, srv, "get_packet", map[string]interface{}{"id": "not-a-uuid"})
	if !res.IsError {
		t.Error("expected error for invalid id")
	}
}

func TestSearchPacketsTool(t *testing.T) {
	srv, _, dataDir := testServer(t)
	importFixture(t, srv, dataDir, "doc.pdf")

	res := callTool(t, srv, "search_packets", map[string]interface{}{"query": "Background"})
	if res.IsError {
		t.Fatalf("search: %s", resultText(t, res))
	}
	var hits []store.SearchResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &hits); err != nil {
		t.Fatal(err)
	}
	if len(hits) == 0 {
		t.Error("no search hits")
	}

	res = callTool(t, srv, "search_packets", map[string]interface{}{})
	if !res.IsError {
		t.Error("expected error for missing query")
	}
}

func TestSetItemStatusTool(t *testing.T) {
	srv, _, dataDir := testServer(t)
	p := importFixture(t, srv, dataDir, "doc.pdf")
	itemID := p.ChecklistItems[0].ID

	res := callTool(t, srv, "set_item_status", map[string]interface{}{
		"item_id": itemID.String(),
		"status":  "completed",
	})
	if res.IsError {
		t.Fatalf("set_item_status: %s", resultText(t, res))
	}
	var item models.ChecklistItem
	if err := json.Unmarshal([]byte(resultText(t, res)), &item); err != nil {
		t.Fatal(err)
	}
	if item.Status != models.StatusCompleted || item.CompletedAt == nil {
		t.Errorf("item = %+v", item)
	}

	res = callTool(t, srv, "set_item_status", map[string]interface{}{
		"item_id": itemID.String(),
		"status":  "bogus",
	})
	if !res.IsError {
		t.Error("expected error for invalid status")
	}
}

func TestAddCaptureTool(t *testing.T) {
	srv, db, dataDir := testServer(t)
	p := importFixture(t, srv, dataDir, "doc.pdf")

	res := callTool(t, srv, "add_capture", map[string]interface{}{
		"packet_id": p.ID.String(),
		"type":      "brainstorm",
		"content":   "compare with the Maya calendar",
	})
	if res.IsError {
		t.Fatalf("add_capture: %s", resultText(t, res))
	}
	var capture models.Capture
	if err := json.Unmarshal([]byte(resultText(t, res)), &capture); err != nil {
		t.Fatal(err)
	}
	if capture.Title != "Brainstorm Session" {
		t.Errorf("default title = %q", capture.Title)
	}

	got, err := db.GetPacket(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Captures) != 1 {
		t.Errorf("captures = %+v", got.Captures)
	}

	res = callTool(t, srv, "add_capture", map[string]interface{}{
		"packet_id": p.ID.String(),
		"type":      "hologram",
	})
	if !res.IsError {
		t.Error("expected error for unknown capture type")
	}
}
