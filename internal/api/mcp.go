package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mavecode/portfolio/internal/storage"
)

// NewMCPServer exposes the portfolio store over MCP (stdio transport) so
// local assistants can read the portfolio and manage tasks and memory.
func NewMCPServer(store storage.Store, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"portfolio",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("Portfolio backend: read the owner's portfolio, manage their tasks, and store conversation memory."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("add_task",
			mcp.WithDescription("Create a to-do task for the portfolio owner."),
			mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
			mcp.WithString("priority", mcp.Description("low, medium or high (default medium)")),
			mcp.WithString("deadline", mcp.Description("Optional deadline, e.g. 2026-09-01")),
		),
		mcpAddTask(store),
	)

	s.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List the owner's tasks, newest first."),
			mcp.WithBoolean("incomplete_only", mcp.Description("Only return unfinished tasks")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
		),
		mcpListTasks(store),
	)

	s.AddTool(
		mcp.NewTool("complete_task",
			mcp.WithDescription("Mark a task as completed."),
			mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		),
		mcpCompleteTask(store),
	)

	s.AddTool(
		mcp.NewTool("add_memory",
			mcp.WithDescription("Store a note in the agent's conversation memory."),
			mcp.WithString("content", mcp.Description("The text to remember"), mcp.Required()),
			mcp.WithString("type", mcp.Description("conversation, preference or note (default note)")),
		),
		mcpAddMemory(store),
	)

	s.AddResource(
		mcp.NewResource(
			"portfolio://default",
			"Portfolio",
			mcp.WithResourceDescription("The default portfolio document as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourcePortfolio(store),
	)

	s.AddResource(
		mcp.NewResource(
			"memory://recent",
			"Recent Memory",
			mcp.WithResourceDescription("Last 10 agent memory entries (summaries only)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceMemory(store),
	)

	return s
}

func mcpAddTask(store storage.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcpError("title is required"), nil
		}
		priority := req.GetString("priority", "medium")
		deadline := req.GetString("deadline", "")

		now := time.Now()
		t := storage.Task{
			ID:        uuid.New().String(),
			Title:     title,
			Priority:  priority,
			Deadline:  deadline,
			CreatedAt: storage.Timestamp(now),
			UpdatedAt: storage.Timestamp(now),
		}
		if err := store.SaveTask(t); err != nil {
			return mcpError(fmt.Sprintf("failed to save task: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Created task %s", t.ID)), nil
	}
}

func mcpListTasks(store storage.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		tasks, err := store.ListTasks(storage.TaskFilter{
			OnlyIncomplete: req.GetBool("incomplete_only", false),
			Limit:          limit,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list tasks: %v", err)), nil
		}

		b, err := json.Marshal(tasks)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal tasks: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpCompleteTask(store storage.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		t, err := store.GetTask(id)
		if err != nil {
			return mcpError(fmt.Sprintf("task %s: %v", id, err)), nil
		}
		t.Completed = true
		t.UpdatedAt = storage.Timestamp(time.Now())
		if err := store.UpdateTask(t); err != nil {
			return mcpError(fmt.Sprintf("failed to update task: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Completed task %s", id)), nil
	}
}

func mcpAddMemory(store storage.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}

		m := storage.MemoryEntry{
			ID:        uuid.New().String(),
			Type:      req.GetString("type", "note"),
			Content:   content,
			CreatedAt: storage.Timestamp(time.Now()),
		}
		if err := store.SaveMemory(m); err != nil {
			return mcpError(fmt.Sprintf("failed to save memory: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Stored memory %s", m.ID)), nil
	}
}

func mcpResourcePortfolio(store storage.Store) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		pf, err := store.FirstPortfolio()
		if err != nil {
			return nil, fmt.Errorf("failed to load portfolio: %w", err)
		}
		pf.CVData = ""

		b, err := json.Marshal(pf)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal portfolio: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceMemory(store storage.Store) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		memories, err := store.ListMemories(10)
		if err != nil {
			return nil, fmt.Errorf("failed to list memories: %w", err)
		}

		type memorySummary struct {
			ID        string `json:"id"`
			Type      string `json:"type"`
			CreatedAt string `json:"created_at"`
			Content   string `json:"content"`
		}

		summaries := make([]memorySummary, len(memories))
		for i, m := range memories {
			content := m.Content
			if utf8.RuneCountInString(content) > 200 {
				runes := []rune(content)
				content = string(runes[:200]) + "..."
			}
			summaries[i] = memorySummary{
				ID:        m.ID,
				Type:      m.Type,
				CreatedAt: m.CreatedAt,
				Content:   content,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal memories: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
