// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes nibi tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/nibi/internal/apperr"
	"github.com/starford/nibi/internal/index"
	"github.com/starford/nibi/internal/ingot"
	"github.com/starford/nibi/internal/ingotservice"
)

// Server wraps the MCP server with nibi tools.
type Server struct {
	mcp *server.MCPServer
	svc *ingotservice.Service
}

// New creates a new MCP server with all nibi tools registered.
func New(svc *ingotservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"nibi",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("parse_ingot",
		mcp.WithDescription("Parse an ingot document without storing it and return the record, "+
			"rendered HTML and any dropped fields. Read the format first via get_ingot_format."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Ingot document text")),
		mcp.WithBoolean("strict", mcp.Description("Fail when any field cannot be read")),
	), s.parseIngot)

	s.mcp.AddTool(mcp.NewTool("read_ingot",
		mcp.WithDescription("Read one ingot: raw text, parsed record and checksum."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the ingot (e.g. posts/hello.ingot)")),
	), s.readIngot)

	s.mcp.AddTool(mcp.NewTool("list_ingots",
		mcp.WithDescription("List indexed ingots, newest first."),
		mcp.WithString("status", mcp.Description("Filter by status: draft, publish or private")),
		mcp.WithNumber("tag", mcp.Description("Filter by tag id")),
		mcp.WithNumber("category", mcp.Description("Filter by category id")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
	), s.listIngots)

	s.mcp.AddTool(mcp.NewTool("search_ingots",
		mcp.WithDescription("Full-text search through ingot titles, bodies and term names."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchIngots)

	s.mcp.AddTool(mcp.NewTool("create_ingot",
		mcp.WithDescription("Create a new ingot. Content MUST follow the ingot format "+
			"(get_ingot_format or the "+FormatURI+" resource). With only a title a draft is scaffolded."),
		mcp.WithString("path", mcp.Description("Relative path ending in .ingot; derived from title when empty")),
		mcp.WithString("content", mcp.Description("Ingot document text")),
		mcp.WithString("title", mcp.Description("Title used to scaffold a draft when content is empty")),
	), s.createIngot)

	s.mcp.AddTool(mcp.NewTool("get_ingot_format",
		mcp.WithDescription("Returns the ingot document format. "+
			"Call this before writing ingots to ensure correct structure."),
	), s.getIngotFormat)

	s.mcp.AddResource(
		mcp.NewResource(FormatURI, "Ingot Format",
			mcp.WithResourceDescription("The ingot document format: matter blocks, keys and title rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(path string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	case errors.Is(err, apperr.ErrAlreadyExists):
		return mcp.NewToolResultError(fmt.Sprintf("ingot already exists: %s", path))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) parseIngot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var opts []ingot.Option
	if req.GetBool("strict", false) {
		opts = append(opts, ingot.WithStrict(true))
	}
	d, err := s.svc.Parse(ctx, []byte(content), opts...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

func (s *Server) readIngot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Get(ctx, path)
	if err != nil {
		return toolError(path, err), nil
	}
	return jsonResult(d)
}

func (s *Server) listIngots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.List(ctx, index.ListFilter{
		Status:   req.GetString("status", ""),
		Tag:      uint64(max(req.GetInt("tag", 0), 0)),
		Category: uint64(max(req.GetInt("category", 0), 0)),
		Limit:    req.GetInt("limit", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"ingots": items, "total": total})
}

func (s *Server) searchIngots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) createIngot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := ingotservice.CreateInput{
		Path:    req.GetString("path", ""),
		Content: req.GetString("content", ""),
		Title:   req.GetString("title", ""),
	}
	d, err := s.svc.Create(ctx, in)
	if err != nil {
		return toolError(in.Path, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", d.Path)), nil
}

func (s *Server) getIngotFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(IngotFormat), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatURI,
			MIMEType: "text/markdown",
			Text:     IngotFormat,
		},
	}, nil
}
