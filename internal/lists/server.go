package lists

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools exposes the list store as MCP tools on an existing server.
func RegisterTools(mcpServer *server.MCPServer, store *Store) {
	mcpServer.AddTool(
		mcp.NewTool("list_add",
			mcp.WithDescription("Add an item to a named list, creating the list if needed"),
			mcp.WithString("list", mcp.Required(), mcp.Description("List name, e.g. shopping")),
			mcp.WithString("item", mcp.Required(), mcp.Description("Item to add")),
		),
		handleAdd(store),
	)

	mcpServer.AddTool(
		mcp.NewTool("list_remove",
			mcp.WithDescription("Remove an item from a named list (first case-insensitive match)"),
			mcp.WithString("list", mcp.Required(), mcp.Description("List name")),
			mcp.WithString("item", mcp.Required(), mcp.Description("Item to remove")),
		),
		handleRemove(store),
	)

	mcpServer.AddTool(
		mcp.NewTool("list_show",
			mcp.WithDescription("Show the items on a named list"),
			mcp.WithString("list", mcp.Required(), mcp.Description("List name")),
		),
		handleShow(store),
	)

	mcpServer.AddTool(
		mcp.NewTool("lists_all",
			mcp.WithDescription("Show every list with its items"),
		),
		handleAll(store),
	)
}

func handleAdd(store *Store) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("list", "")
		item := req.GetString("item", "")

		if err := store.AddItem(name, item); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to add item: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Added %q to %s.", item, strings.ToLower(name))), nil
	}
}

func handleRemove(store *Store) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("list", "")
		item := req.GetString("item", "")

		err := store.RemoveItem(name, item)
		if errors.Is(err, ErrListNotFound) || errors.Is(err, ErrItemNotFound) {
			return mcp.NewToolResultText(err.Error()), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to remove item: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Removed %q from %s.", item, strings.ToLower(name))), nil
	}
}

func handleShow(store *Store) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("list", "")

		items, err := store.Items(name)
		if errors.Is(err, ErrListNotFound) {
			return mcp.NewToolResultText(fmt.Sprintf("No list named %q.", name)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to show list: %v", err)), nil
		}

		output, _ := json.MarshalIndent(items, "", "  ")
		return mcp.NewToolResultText(string(output)), nil
	}
}

func handleAll(store *Store) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lists, err := store.All()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list lists: %v", err)), nil
		}
		if len(lists) == 0 {
			return mcp.NewToolResultText("No lists yet."), nil
		}

		output, _ := json.MarshalIndent(lists, "", "  ")
		return mcp.NewToolResultText(string(output)), nil
	}
}
