// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes MindMate journaling tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bytebender77/MindMate/internal/emotion"
	"github.com/bytebender77/MindMate/internal/journal"
	"github.com/bytebender77/MindMate/internal/remote"
	"github.com/bytebender77/MindMate/internal/settings"
)

// Server wraps the MCP server with MindMate tools.
type Server struct {
	mcp      *server.MCPServer
	journal  *journal.Service
	settings *settings.Service
	remote   *remote.Client
}

// New creates a new MCP server with all MindMate tools registered.
func New(jsvc *journal.Service, ssvc *settings.Service, client *remote.Client) *Server {
	s := &Server{journal: jsvc, settings: ssvc, remote: client}

	s.mcp = server.NewMCPServer(
		"MindMate",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_entry",
		mcp.WithDescription("Write a journal entry on the user's behalf. The entry is "+
			"classified for emotion and answered with a reflection. Read the "+
			"mindmate://journaling-guide resource for how entries should be phrased."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Journal entry text, first person")),
	), s.addEntry)

	s.mcp.AddTool(mcp.NewTool("journal_history",
		mcp.WithDescription("List recent journal entries with their emotion classification, newest first."),
		mcp.WithNumber("limit", mcp.Description("Max entries to return (default 20)")),
	), s.journalHistory)

	s.mcp.AddTool(mcp.NewTool("mood_stats",
		mcp.WithDescription("Mood statistics for the recent window: emotion distribution, "+
			"most common emotion, positive ratio and the daily journaling streak."),
		mcp.WithNumber("days", mcp.Description("Window size in days (default 7)")),
	), s.moodStats)

	s.mcp.AddTool(mcp.NewTool("classify_text",
		mcp.WithDescription("Classify a piece of text for emotion without creating a journal entry."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to classify")),
	), s.classifyText)

	s.mcp.AddTool(mcp.NewTool("switch_provider",
		mcp.WithDescription("Switch the emotion classification backend (gemini or openai)."),
		mcp.WithString("provider", mcp.Required(), mcp.Description("Provider name")),
	), s.switchProvider)

	// Resource: journaling guide.
	s.mcp.AddResource(
		mcp.NewResource("mindmate://journaling-guide", "Journaling Guide",
			mcp.WithResourceDescription("How journal entries are classified and what the emotion fields mean."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readJournalingGuide,
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

// entryView is the tool-facing shape of one entry: the canonical fields plus
// the render-ready classification.
type entryView struct {
	ID         string                `json:"id"`
	Content    string                `json:"content"`
	Emotion    string                `json:"emotion"`
	Metadata   *emotion.Metadata     `json:"emotion_metadata,omitempty"`
	Reflection string                `json:"reflection,omitempty"`
	CreatedAt  string                `json:"created_at,omitempty"`
	Display    *emotion.Presentation `json:"display,omitempty"`
}

func toEntryView(e journal.Entry) entryView {
	display := emotion.Present(e.Emotion, e.Metadata)
	v := entryView{
		ID:         e.ID,
		Content:    e.Content,
		Emotion:    e.Emotion,
		Metadata:   e.Metadata,
		Reflection: e.Reflection,
		Display:    &display,
	}
	if !e.CreatedAt.IsZero() {
		v.CreatedAt = e.CreatedAt.Format("2006-01-02 15:04")
	}
	return v
}

func (s *Server) addEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.journal.Create(ctx, content, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(toEntryView(entry), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) journalHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	entries, err := s.journal.List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toEntryView(e))
	}
	out, _ := json.MarshalIndent(views, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) moodStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 7)
	res, err := s.journal.MoodStats(ctx, days)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) classifyText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cls, err := s.remote.Classify(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta := emotion.Normalize(cls.Raw, nil)
	display := emotion.Present(cls.Emotion, meta)
	out, _ := json.MarshalIndent(map[string]any{
		"emotion":          cls.Emotion,
		"emotion_metadata": meta,
		"display":          display,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) switchProvider(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	provider, err := req.RequireString("provider")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := s.settings.Switch(ctx, provider)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("provider: %s", status.Current)), nil
}

func (s *Server) readJournalingGuide(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mindmate://journaling-guide",
			MIMEType: "text/markdown",
			Text:     JournalingGuide,
		},
	}, nil
}
