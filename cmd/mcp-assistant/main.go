// Command mcp-assistant exposes the reminder engine and named lists as an
// MCP server over stdio, so any MCP client (the rin shell included) can
// set timers, manage reminders and edit lists.
//
// Usage:
//
//	./mcp-assistant          # Start MCP server (stdio)
//	./mcp-assistant --help   # Show help
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/rin/internal/config"
	"github.com/notexe/rin/internal/lists"
	"github.com/notexe/rin/internal/logging"
	"github.com/notexe/rin/internal/notify"
	"github.com/notexe/rin/internal/reminder"
	"github.com/notexe/rin/internal/storage"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(config.GetDefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// stdio carries the protocol; diagnostics must stay off stdout.
	cfg.Log.Console = false
	log, logCloser, err := logging.Open(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logCloser()

	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	remStore, err := reminder.NewStore(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open reminder store: %v\n", err)
		os.Exit(1)
	}
	listStore, err := lists.NewStore(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open list store: %v\n", err)
		os.Exit(1)
	}

	notifier := notify.NewDesktop(nil, cfg.Notify.Alerts, log)
	sched := reminder.NewScheduler(remStore, notifier, reminder.SchedulerConfig{
		Title:   cfg.Assistant.Name,
		Overdue: reminder.OverduePolicy(cfg.Reminders.Overdue),
	}, log)
	svc := reminder.NewService(remStore, sched)
	defer svc.Close()

	if err := svc.Recover(); err != nil {
		log.Error().Err(err).Msg("failed to recover pending reminders")
	}

	s := reminder.NewServer(svc)
	lists.RegisterTools(s.MCPServer(), listStore)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Assistant Server - reminders, timers and lists via MCP

USAGE:
    mcp-assistant          Start MCP server (communicates via stdio)
    mcp-assistant --help   Show this help

TOOLS:
    create_timer     Set a timer that fires after N seconds
    create_reminder  Set a reminder at an absolute time (RFC3339)
    list_reminders   List pending reminders, soonest first
    cancel_reminder  Cancel a pending reminder by id
    get_reminder     Get a single reminder by id
    list_add         Add an item to a named list
    list_remove      Remove an item from a named list
    list_show        Show a named list
    lists_all        Show every list

CONFIGURATION:
    Reads ~/.rin/config.yaml for storage and notification settings.
    Add to ~/.rin/mcp.json:
    {
      "mcpServers": {
        "assistant": {
          "command": "/path/to/mcp-assistant",
          "args": []
        }
      }
    }`)
}
