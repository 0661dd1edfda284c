// Package repl is the interactive shell: slash commands for the
// assistant's features, everything else forwarded to the chat provider
// with the connected MCP tools available for function calling.
package repl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/go-deepseek/deepseek/request"

	"github.com/notexe/rin/internal/api"
	"github.com/notexe/rin/internal/assistant"
	"github.com/notexe/rin/internal/audio"
	"github.com/notexe/rin/internal/chat"
	"github.com/notexe/rin/internal/config"
	"github.com/notexe/rin/internal/drafts"
	"github.com/notexe/rin/internal/history"
	"github.com/notexe/rin/internal/lists"
	"github.com/notexe/rin/internal/mcp"
	"github.com/notexe/rin/internal/notify"
	"github.com/notexe/rin/internal/reminder"
	"github.com/notexe/rin/internal/stt"
	"github.com/notexe/rin/internal/ui"
)

// maxToolIterations bounds the tool-call loop for a single user message.
const maxToolIterations = 5

// Deps carries everything the REPL can reach. Optional collaborators may
// be nil; their commands then report that the feature is not configured.
type Deps struct {
	Session   *chat.Session
	Provider  api.Provider
	Config    *config.Config
	Assistant *assistant.Assistant
	Reminders *reminder.Service
	Drafts    *drafts.Service
	Lists     *lists.Store
	History   *history.Store

	MCPManager  *mcp.Manager
	Speaker     notify.Speaker
	Recorder    *audio.Recorder
	Transcriber stt.Transcriber
}

type REPL struct {
	Deps

	rl        *readline.Instance
	formatter *ui.Formatter
	status    *ui.StatusDisplay
	spinner   *ui.Spinner
	markdown  *ui.MarkdownRenderer
}

func NewREPL(deps Deps) (*REPL, error) {
	formatter := ui.NewFormatter(deps.Config.UI.ColoredOutput, deps.Provider.Name())

	rl, err := setupReadline(formatter.FormatPrompt())
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	return &REPL{
		Deps:      deps,
		rl:        rl,
		formatter: formatter,
		status:    ui.NewStatusDisplay(formatter, true),
		spinner:   ui.NewSpinner(deps.Config.UI.ColoredOutput),
		markdown:  ui.NewMarkdownRenderer(deps.Config.UI.ColoredOutput),
	}, nil
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome()
	r.announceTools()

	for {
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := r.parseCommand(input)
		if isCommand {
			if err := r.handleCommand(ctx, command, args); err != nil {
				r.displayError(err)
			}

			if command == "/quit" || command == "/exit" || command == "/q" {
				return nil
			}

			continue
		}

		if err := r.handleMessage(ctx, input); err != nil {
			r.displayError(err)
		}
	}
}

func (r *REPL) Stop() {
	r.rl.Close()
}

// announceTools tells the model (and the user) what the connected MCP
// servers provide, so it reaches for them instead of apologizing.
func (r *REPL) announceTools() {
	if r.MCPManager == nil {
		return
	}

	tools := r.MCPManager.GetAllTools()
	if len(tools) == 0 {
		return
	}

	var hints []string
	if r.MCPManager.HasReminderTools() {
		hints = append(hints, "set timers and reminders (create_timer, create_reminder, list_reminders, cancel_reminder)")
	}
	if r.MCPManager.HasListTools() {
		hints = append(hints, "manage the user's named lists (list_add, list_remove, list_show, lists_all)")
	}
	if len(hints) > 0 {
		r.Session.SetToolsPrompt("You have tools to " + strings.Join(hints, " and ") + ". Use them whenever the user asks for these things instead of describing what you would do.")
	}

	r.displaySystem(fmt.Sprintf("%d tools connected from %d MCP server(s).", len(tools), len(r.MCPManager.ListServers())))
}

func (r *REPL) handleMessage(ctx context.Context, message string) error {
	r.Session.AddUserMessage(message)
	r.spinner.Start("Thinking...")

	tools := r.availableTools()
	start := time.Now()
	var usage api.Usage
	apiCalls := 0

	for iter := 0; iter < maxToolIterations; iter++ {
		req := r.Session.BuildAPIRequest()
		req.Tools = tools

		response, err := r.Provider.SendMessage(ctx, req)
		if err != nil {
			r.spinner.Stop()
			return fmt.Errorf("API request failed: %w", err)
		}

		apiCalls++
		usage.InputTokens += response.Usage.InputTokens
		usage.OutputTokens += response.Usage.OutputTokens

		if len(response.ToolCalls) == 0 {
			r.spinner.Stop()
			r.Session.AddAssistantMessage(response.Content)
			r.recordInteraction(message, response.Content)
			r.displayResponse(response, time.Since(start), usage, apiCalls)
			return nil
		}

		r.Session.AddAssistantMessageWithToolCalls(response.Content, response.ToolCalls)
		for _, tc := range response.ToolCalls {
			r.spinner.Update("Running " + tc.Name + "...")
			result, err := r.MCPManager.CallTool(ctx, tc.Name, tc.Arguments)
			if err != nil {
				result = fmt.Sprintf("tool error: %v", err)
			}
			r.Session.AddToolResult(tc.ID, result)
		}
		r.spinner.Update("Thinking...")
	}

	r.spinner.Stop()
	return fmt.Errorf("stopped after %d tool rounds without a final answer", maxToolIterations)
}

// availableTools returns the connected MCP tools in provider format, or
// nil when tool calling cannot be used.
func (r *REPL) availableTools() []request.Tool {
	if r.MCPManager == nil {
		return nil
	}
	if r.Provider.Name() == "ollama" {
		// The Ollama path sends plain messages only.
		return nil
	}
	tools := r.MCPManager.GetDeepSeekTools()
	if len(tools) == 0 {
		return nil
	}
	return tools
}

func (r *REPL) recordInteraction(query, response string) {
	if r.History == nil {
		return
	}
	if err := r.History.Save(query, response); err != nil {
		r.displaySystem(fmt.Sprintf("note: failed to record interaction: %v", err))
	}
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/clear", "/c":
		r.Session.Clear()
		r.displaySystem("Conversation history cleared.")
		return nil

	case "/quit", "/exit", "/q":
		fmt.Println("\nGoodbye!")
		return nil

	case "/timer":
		return r.cmdTimer(args)

	case "/remind":
		return r.cmdRemind(args)

	case "/reminders", "/list-reminders":
		return r.cmdReminders()

	case "/cancel", "/cancel-reminder":
		return r.cmdCancel(args)

	case "/search":
		return r.cmdSearch(ctx, args)

	case "/email":
		return r.cmdEmail(ctx, args)

	case "/list", "/l":
		return r.cmdList(args)

	case "/speak":
		return r.cmdSpeak(ctx, args)

	case "/listen":
		return r.cmdListen(ctx)

	case "/history":
		return r.cmdHistory(args)

	case "/temp":
		return r.cmdTemp(args)

	case "/mcp":
		return r.cmdMCP(args)

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func (r *REPL) cmdTemp(args string) error {
	if args == "" {
		r.displayInfo(fmt.Sprintf("Temperature: %.2f", r.Session.GetTemperature()))
		return nil
	}

	var temp float64
	if _, err := fmt.Sscanf(args, "%f", &temp); err != nil {
		return fmt.Errorf("usage: /temp <0-2>")
	}
	if err := r.Session.SetTemperature(temp); err != nil {
		return err
	}
	r.displaySystem(fmt.Sprintf("Temperature set to %.2f.", temp))
	return nil
}

func (r *REPL) cmdMCP(args string) error {
	if r.MCPManager == nil {
		r.displayInfo("No MCP servers connected.")
		return nil
	}

	switch args {
	case "", "tools":
		tools := r.MCPManager.GetAllTools()
		if len(tools) == 0 {
			r.displayInfo("No tools available.")
			return nil
		}
		var sb strings.Builder
		for _, t := range tools {
			fmt.Fprintf(&sb, "  %s - %s\n", r.formatter.FormatToolLabel(t.Name), t.Description)
		}
		r.displayInfo("Available tools:\n" + strings.TrimRight(sb.String(), "\n"))
		return nil

	case "servers":
		counts := r.MCPManager.ServerToolCount()
		var sb strings.Builder
		for name, n := range counts {
			fmt.Fprintf(&sb, "  %s (%d tools)\n", name, n)
		}
		r.displayInfo("Connected servers:\n" + strings.TrimRight(sb.String(), "\n"))
		return nil

	default:
		return fmt.Errorf("usage: /mcp [tools|servers]")
	}
}
