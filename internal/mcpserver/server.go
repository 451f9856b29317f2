// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes notehub tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notehub/internal/apperr"
	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/noteservice"
)

const formatURI = "notehub://note-format"

// Notes is the note service the tools operate on.
type Notes interface {
	List(ctx context.Context, q noteservice.ListQuery) (*models.PageResult, error)
	Get(ctx context.Context, id string) (*models.Note, error)
	Create(ctx context.Context, d models.NoteDraft) (*models.Note, error)
	Delete(ctx context.Context, id string) (*models.Note, error)
}

// Server wraps the MCP server with notehub tools.
type Server struct {
	mcp   *server.MCPServer
	notes Notes
}

// New creates a new MCP server with all notehub tools registered.
func New(notes Notes, version string) *Server {
	s := &Server{notes: notes}

	s.mcp = server.NewMCPServer(
		"notehub",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes by a substring of their title or content. Returns one page of notes, newest first, and the total page count."),
		mcp.WithString("query", mcp.Description("Search text; empty lists every note")),
		mcp.WithNumber("page", mcp.Description("Page number starting at 1 (default 1)")),
		mcp.WithNumber("per_page", mcp.Description("Notes per page, 1 to 100 (default 12)")),
		mcp.WithString("tag", mcp.Description("Optional tag filter"), mcp.Enum(tagNames()...)),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a single note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id as returned by search_notes")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. Title, content and tag MUST follow the note "+
			"format contract; read it first via the get_note_contract tool or the "+
			formatURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title, 3 to 50 characters")),
		mcp.WithString("content", mcp.Description("Body text, at most 500 characters")),
		mcp.WithString("tag", mcp.Required(), mcp.Description("One of the known tags"), mcp.Enum(tagNames()...)),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note by id and return it as it was."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the notehub note format contract. "+
			"Call this before creating notes to ensure correct structure."),
	), s.getNoteContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Note Format Contract",
			mcp.WithResourceDescription("Fields and limits every note must respect."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// Serve speaks MCP over in and out until ctx is cancelled or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer, logger *slog.Logger) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func tagNames() []string {
	out := make([]string, len(models.Tags))
	for i, t := range models.Tags {
		out[i] = string(t)
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error, id string) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.notes.List(ctx, noteservice.ListQuery{
		Page:    req.GetInt("page", 1),
		PerPage: req.GetInt("per_page", noteservice.DefaultPerPage),
		Search:  req.GetString("query", ""),
		Tag:     models.Tag(req.GetString("tag", "")),
	})
	if err != nil {
		return errorResult(err, ""), nil
	}
	return jsonResult(page)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.notes.Get(ctx, id)
	if err != nil {
		return errorResult(err, id), nil
	}
	return jsonResult(n)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.notes.Create(ctx, models.NoteDraft{
		Title:   title,
		Content: req.GetString("content", ""),
		Tag:     models.Tag(tag),
	})
	if err != nil {
		return errorResult(err, ""), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", n.ID)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.notes.Delete(ctx, id)
	if err != nil {
		return errorResult(err, id), nil
	}
	return jsonResult(n)
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
