// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes notelink tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/followsvc"
	"github.com/starford/notelink/internal/storage"
)

const syntaxURI = "notelink://reference-syntax"

// Server wraps the MCP server with notelink tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *followsvc.Service
	store storage.Provider
}

// New creates a new MCP server with all notelink tools registered.
func New(svc *followsvc.Service, store storage.Provider, version string) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"notelink",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("follow_link",
		mcp.WithDescription("Follow a reference: open a note, a file, a URL, a heading or a citation. "+
			"Read the reference syntax first via get_reference_syntax or the "+syntaxURI+" resource."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Reference text, e.g. projects/todo, file:~/a.pdf, @smith2020, #goals")),
		mcp.WithString("from", mcp.Description("Optional path of the document the reference appears in")),
	), s.followLink)

	s.mcp.AddTool(mcp.NewTool("classify_link",
		mcp.WithDescription("Return the kind of a reference (file, url, citation, anchor, filename) without following it."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Reference text")),
	), s.classifyLink)

	s.mcp.AddTool(mcp.NewTool("list_links",
		mcp.WithDescription("List every link of a note with its kind and resolved target. Nothing is opened or created."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path relative to the notebook root (e.g. folder/note.md)")),
	), s.listLinks)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes or notes in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("go_back",
		mcp.WithDescription("Return to the previously active document."),
	), s.goBack)

	s.mcp.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("List the navigation history, most recent first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 50)")),
	), s.getHistory)

	s.mcp.AddTool(mcp.NewTool("get_reference_syntax",
		mcp.WithDescription("Returns how references are classified and resolved."),
	), s.getReferenceSyntax)

	s.mcp.AddResource(
		mcp.NewResource(syntaxURI, "Reference Syntax",
			mcp.WithResourceDescription("How notelink classifies and resolves link references."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSyntaxResource,
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

func (s *Server) followLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Follow(ctx, ref, req.GetString("from", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) classifyLink(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(s.svc.Classify(ref))), nil
}

func (s *Server) listLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reports, err := s.svc.Links(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(reports), nil
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.store.List(req.GetString("folder", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) goBack(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.svc.Back(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(path), nil
}

func (s *Server) getHistory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.svc.History(req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("history is empty"), nil
	}
	return jsonResult(entries), nil
}

func (s *Server) getReferenceSyntax(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ReferenceSyntax), nil
}

func (s *Server) readSyntaxResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      syntaxURI,
			MIMEType: "text/markdown",
			Text:     ReferenceSyntax,
		},
	}, nil
}
