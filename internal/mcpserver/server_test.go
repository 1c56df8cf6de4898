package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bytebender77/MindMate/internal/journal"
	"github.com/bytebender77/MindMate/internal/remote"
	"github.com/bytebender77/MindMate/internal/settings"
	"github.com/bytebender77/MindMate/internal/testutil"
)

func testServer(t *testing.T) (*Server, *testutil.AnalysisStub) {
	t.Helper()

	stub, srv := testutil.StartAnalysisServer(t)
	client := remote.New(srv.URL, srv.Client())
	jsvc := journal.NewService(client, nil, "mcp-tester", time.UTC)
	ssvc := settings.NewService(client)

	return New(jsvc, ssvc, client), stub
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
	case "add_entry":
		result, err = srv.addEntry(ctx, req)
	case "journal_history":
		result, err = srv.journalHistory(ctx, req)
	case "mood_stats":
		result, err = srv.moodStats(ctx, req)
	case "classify_text":
		result, err = srv.classifyText(ctx, req)
	case "switch_provider":
		result, err = srv.switchProvider(ctx, req)
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

func TestAddEntryAndHistory(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "add_entry", map[string]interface{}{
		"content": "I felt happy after the morning run",
	})
	if r.IsError {
		t.Fatalf("add_entry failed: %s", resultText(r))
	}
	var created entryView
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Emotion != "joy" || created.Reflection == "" {
		t.Errorf("unexpected entry %+v", created)
	}

	r = callTool(t, srv, "journal_history", map[string]interface{}{})
	var history []entryView
	if err := json.Unmarshal([]byte(resultText(r)), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].ID != created.ID {
		t.Errorf("unexpected history %+v", history)
	}
}

func TestAddEntry_EmptyContentRejected(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "add_entry", map[string]interface{}{"content": "  "})
	if !r.IsError {
		t.Fatal("expected error for empty content")
	}
}

func TestMoodStats(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "add_entry", map[string]interface{}{"content": "happy days"})
	callTool(t, srv, "add_entry", map[string]interface{}{"content": "sad about the news"})

	r := callTool(t, srv, "mood_stats", map[string]interface{}{"days": 7})
	text := resultText(r)
	if !strings.Contains(text, `"total_entries": 2`) {
		t.Errorf("stats = %s", text)
	}
}

func TestClassifyText(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "classify_text", map[string]interface{}{
		"text": "so confused about what to do next",
	})
	text := resultText(r)
	if !strings.Contains(text, `"emotion": "confusion"`) {
		t.Errorf("classification = %s", text)
	}
	if !strings.Contains(text, `"state": "confused"`) {
		t.Errorf("display state missing in %s", text)
	}
}

func TestSwitchProvider(t *testing.T) {
	srv, stub := testServer(t)

	r := callTool(t, srv, "switch_provider", map[string]interface{}{"provider": "openai"})
	if r.IsError {
		t.Fatalf("switch failed: %s", resultText(r))
	}
	if stub.Provider() != "openai" {
		t.Errorf("stub provider = %q", stub.Provider())
	}

	r = callTool(t, srv, "switch_provider", map[string]interface{}{"provider": "claude"})
	if !r.IsError {
		t.Fatal("expected error for unknown provider")
	}
}
