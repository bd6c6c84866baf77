// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz study-packet tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/importer"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp      *server.MCPServer
	store    store.PacketStore
	importer *importer.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(st store.PacketStore, imp *importer.Service) *Server {
	s := &Server{store: st, importer: imp}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("import_document",
		mcp.WithDescription("Import a PDF from disk and build its study packet "+
			"(sections, checklist, page references)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the PDF file")),
	), s.importDocument)

	s.mcp.AddTool(mcp.NewTool("list_packets",
		mcp.WithDescription("List study packets with checklist progress."),
		mcp.WithBoolean("archived", mcp.Description("Include archived packets (default false)")),
	), s.listPackets)

	s.mcp.AddTool(mcp.NewTool("get_packet",
		mcp.WithDescription("Read a full study packet: sections, checklist items, and captures."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Packet UUID")),
	), s.getPacket)

	s.mcp.AddTool(mcp.NewTool("search_packets",
		mcp.WithDescription("Full-text search through packet sections and captures."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPackets)

	s.mcp.AddTool(mcp.NewTool("set_item_status",
		mcp.WithDescription("Change a checklist item's status. Valid statuses: "+
			"pending, in_progress, completed, blocked, skipped."),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Checklist item UUID")),
		mcp.WithString("status", mcp.Required(), mcp.Description("New status")),
	), s.setItemStatus)

	s.mcp.AddTool(mcp.NewTool("add_capture",
		mcp.WithDescription("Record a study capture (text note, brainstorm, voice transcript) "+
			"under a packet."),
		mcp.WithString("packet_id", mcp.Required(), mcp.Description("Packet UUID")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Capture type: voice, screen_clip, brainstorm, text, image")),
		mcp.WithString("title", mcp.Description("Optional title (defaults per type)")),
		mcp.WithString("content", mcp.Description("Capture content")),
	), s.addCapture)

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
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) importDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	packet, err := s.importer.Import(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(packet), nil
}

func (s *Server) listPackets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	archived := req.GetBool("archived", false)
	packets, err := s.store.ListPackets(archived)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(packets), nil
}

func (s *Server) getPacket(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid packet id: %s", raw)), nil
	}
	packet, err := s.store.GetPacket(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", raw)), nil
	}
	return jsonResult(packet), nil
}

func (s *Server) searchPackets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.store.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) setItemStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid item id: %s", raw)), nil
	}
	item, _, err := s.store.UpdateItemStatus(id, models.ItemStatus(status), time.Now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(item), nil
}

func (s *Server) addCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("packet_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	packetID, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid packet id: %s", raw)), nil
	}
	if !models.ValidCaptureType(models.CaptureType(typ)) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown capture type: %s", typ)), nil
	}

	capture := models.NewCapture(models.CaptureType(typ),
		req.GetString("title", ""), req.GetString("content", ""))
	if err := s.store.AddCapture(packetID, &capture); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(capture), nil
}
