package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "rin-assistant"
	serverVersion = "1.0.0"
)

// Server is the MCP server exposing the reminder engine as tools.
type Server struct {
	mcpServer *server.MCPServer
	svc       *Service
}

// NewServer creates the assistant MCP server backed by the given service.
func NewServer(svc *Service) *Server {
	s := &Server{
		svc: svc,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server so callers can register
// further tools (lists) and serve it.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("create_timer",
			mcp.WithDescription("Set a timer that notifies the user after a number of seconds"),
			mcp.WithNumber("duration_seconds", mcp.Required(), mcp.Description("Seconds until the timer fires; must be positive")),
			mcp.WithString("description", mcp.Description("What the timer is for")),
		),
		s.handleCreateTimer,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("create_reminder",
			mcp.WithDescription("Set a reminder that notifies the user at an absolute time"),
			mcp.WithString("due_at", mcp.Required(), mcp.Description("When to fire, RFC3339 format (e.g. 2025-01-15T09:00:00Z); must be in the future")),
			mcp.WithString("description", mcp.Required(), mcp.Description("What to remind the user about")),
		),
		s.handleCreateReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List all pending reminders and timers, soonest first"),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("cancel_reminder",
			mcp.WithDescription("Cancel a pending reminder or timer by id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder id, e.g. reminder_1736931600")),
		),
		s.handleCancelReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_reminder",
			mcp.WithDescription("Get a single reminder by id, including terminal ones"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder id")),
		),
		s.handleGetReminder,
	)
}

func (s *Server) handleCreateTimer(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	duration := req.GetInt("duration_seconds", 0)
	description := req.GetString("description", "")

	rec, err := s.svc.CreateTimer(duration, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create timer: %v", err)), nil
	}

	output, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleCreateReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dueAtStr := req.GetString("due_at", "")
	description := req.GetString("description", "")

	if dueAtStr == "" {
		return mcp.NewToolResultError("due_at is required"), nil
	}
	if description == "" {
		return mcp.NewToolResultError("description is required"), nil
	}

	dueAt, err := time.Parse(time.RFC3339, dueAtStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid due_at format: %v (use RFC3339, e.g. 2025-01-15T09:00:00Z)", err)), nil
	}

	rec, err := s.svc.CreateReminder(dueAt, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create reminder: %v", err)), nil
	}

	output, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleListReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.svc.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if len(records) == 0 {
		return mcp.NewToolResultText("No pending reminders."), nil
	}

	output, _ := json.MarshalIndent(records, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleCancelReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	cancelled, err := s.svc.Cancel(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to cancel reminder: %v", err)), nil
	}
	if !cancelled {
		return mcp.NewToolResultText(fmt.Sprintf("No pending reminder with id %s.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Cancelled %s.", id)), nil
}

func (s *Server) handleGetReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	rec, err := s.svc.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get reminder: %v", err)), nil
	}

	output, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}
