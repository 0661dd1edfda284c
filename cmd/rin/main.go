// Command rin is the personal assistant shell. Run without arguments for
// the interactive REPL, or use a one-shot subcommand:
//
//	rin                     interactive shell
//	rin ask <question>      one question, answer on stdout
//	rin speak <text>        speak text aloud
//	rin listen              record a voice query and answer it
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/notexe/rin/internal/api"
	"github.com/notexe/rin/internal/assistant"
	"github.com/notexe/rin/internal/audio"
	"github.com/notexe/rin/internal/chat"
	"github.com/notexe/rin/internal/config"
	"github.com/notexe/rin/internal/drafts"
	"github.com/notexe/rin/internal/history"
	"github.com/notexe/rin/internal/lists"
	"github.com/notexe/rin/internal/logging"
	"github.com/notexe/rin/internal/mcp"
	"github.com/notexe/rin/internal/notify"
	"github.com/notexe/rin/internal/reminder"
	"github.com/notexe/rin/internal/repl"
	"github.com/notexe/rin/internal/search"
	"github.com/notexe/rin/internal/storage"
	"github.com/notexe/rin/internal/stt"
	"github.com/notexe/rin/internal/tts"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	providerName := flag.String("provider", "", "Provider to use (deepseek, openai, ollama)")
	modelName := flag.String("model", "", "Model name (overrides config)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if *providerName != "" {
		cfg.Provider = *providerName
	}
	if *modelName != "" {
		cfg.Model.Name = *modelName
	}
	if *noColor {
		cfg.UI.ColoredOutput = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		if cfg.Provider == config.ProviderDeepSeek {
			fmt.Fprintf(os.Stderr, "Tip: Set DEEPSEEK_API_KEY environment variable or add it to config file\n")
		}
		os.Exit(1)
	}
	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, logCloser, err := logging.Open(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logCloser()

	app, err := buildApp(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	args := flag.Args()
	if len(args) > 0 {
		if err := runSubcommand(ctx, app, cfg, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			app.Close()
			os.Exit(1)
		}
		return
	}

	if err := runREPL(ctx, app, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		app.Close()
		os.Exit(1)
	}
}

// app holds the wired collaborators shared by the REPL and the one-shot
// subcommands.
type app struct {
	db        *sql.DB
	provider  api.Provider
	reminders *reminder.Service
	asst      *assistant.Assistant
	drafts    *drafts.Service
	lists     *lists.Store
	history   *history.Store
	mcpMgr    *mcp.Manager

	speaker     notify.Speaker
	recorder    *audio.Recorder
	transcriber stt.Transcriber

	log zerolog.Logger
}

func buildApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	remStore, err := reminder.NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	histStore, err := history.NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	listStore, err := lists.NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	provider, err := api.NewProvider(cfg.GetProviderConfig())
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		db:       db,
		provider: provider,
		lists:    listStore,
		history:  histStore,
		log:      log,
	}

	a.buildSpeech(cfg)

	notifier := notify.NewDesktop(a.speaker, cfg.Notify.Alerts, log)
	sched := reminder.NewScheduler(remStore, notifier, reminder.SchedulerConfig{
		Title:   cfg.Assistant.Name,
		Overdue: reminder.OverduePolicy(cfg.Reminders.Overdue),
	}, log)
	a.reminders = reminder.NewService(remStore, sched)
	if err := a.reminders.Recover(); err != nil {
		log.Error().Err(err).Msg("failed to recover pending reminders")
	}

	var searcher assistant.Searcher
	if cfg.Search.SerpAPIKey != "" {
		searcher = search.NewClient(cfg.Search.SerpAPIKey, cfg.Search.Results, log)
	}
	a.asst = assistant.New(provider, searcher, histStore, cfg.Model.Name, cfg.Session.ContextTurns, log)

	a.drafts, err = drafts.NewService(db, provider, cfg.Model.Name, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	transcriber, err := stt.New(cfg.STT, log)
	if err != nil {
		log.Warn().Err(err).Msg("voice input disabled")
	} else {
		a.transcriber = transcriber
	}
	if a.transcriber != nil {
		recorder, err := audio.NewRecorder(cfg.Audio.Recorder, cfg.Audio.Dir, log)
		if err != nil {
			log.Warn().Err(err).Msg("no audio recorder, voice input disabled")
		} else {
			a.recorder = recorder
		}
	}

	if cfg.MCP.Enabled && len(cfg.MCP.Servers) > 0 {
		a.mcpMgr = mcp.NewManager()
		ctx := context.Background()
		for _, srv := range cfg.MCP.Servers {
			err := a.mcpMgr.AddServer(ctx, mcp.ServerConfig{
				Name:    srv.Name,
				Command: srv.Command,
				Args:    srv.Args,
				Env:     srv.Env,
			})
			if err != nil {
				log.Warn().Err(err).Str("server", srv.Name).Msg("failed to connect MCP server")
			}
		}
	}

	return a, nil
}

// buildSpeech wires the spoken channel. Failures downgrade to silence
// instead of refusing to start.
func (a *app) buildSpeech(cfg *config.Config) {
	if !cfg.Notify.Speech {
		return
	}

	engine, err := tts.New(cfg.TTS, cfg.Audio.Dir, a.log)
	if err != nil {
		a.log.Warn().Err(err).Msg("speech disabled")
		return
	}
	if engine == nil {
		return
	}

	var player *audio.Player
	if engine.Name() == "openai" {
		player, err = audio.NewPlayer(cfg.Audio.Player, a.log)
		if err != nil {
			a.log.Warn().Err(err).Msg("no audio player, speech disabled")
			return
		}
	}

	a.speaker = notify.NewSpeech(engine, player)
}

func (a *app) Close() {
	if a.mcpMgr != nil {
		a.mcpMgr.Close()
	}
	if a.reminders != nil {
		a.reminders.Close()
	}
	if a.provider != nil {
		a.provider.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func runREPL(ctx context.Context, a *app, cfg *config.Config) error {
	session := chat.NewSession(&cfg.Model, cfg.Session.MaxHistory)

	r, err := repl.NewREPL(repl.Deps{
		Session:     session,
		Provider:    a.provider,
		Config:      cfg,
		Assistant:   a.asst,
		Reminders:   a.reminders,
		Drafts:      a.drafts,
		Lists:       a.lists,
		History:     a.history,
		MCPManager:  a.mcpMgr,
		Speaker:     a.speaker,
		Recorder:    a.recorder,
		Transcriber: a.transcriber,
	})
	if err != nil {
		return err
	}

	return r.Start(ctx)
}

func runSubcommand(ctx context.Context, a *app, cfg *config.Config, args []string) error {
	switch args[0] {
	case "ask":
		query := strings.Join(args[1:], " ")
		if query == "" {
			return fmt.Errorf("usage: rin ask <question>")
		}
		answer, err := a.asst.Ask(ctx, query)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil

	case "speak":
		text := strings.Join(args[1:], " ")
		if text == "" {
			return fmt.Errorf("usage: rin speak <text>")
		}
		if a.speaker == nil {
			return fmt.Errorf("speech is not configured (set tts.engine and notify.speech)")
		}
		return a.speaker.Say(ctx, text)

	case "listen":
		if a.recorder == nil || a.transcriber == nil {
			return fmt.Errorf("voice input is not configured (set stt.engine and install a recorder)")
		}
		fmt.Fprintf(os.Stderr, "Listening for %d seconds...\n", cfg.Audio.RecordSeconds)
		path, err := a.recorder.Record(ctx, cfg.Audio.RecordSeconds)
		if err != nil {
			return err
		}
		query, err := a.transcriber.Transcribe(ctx, path)
		if err != nil {
			return err
		}
		query = strings.TrimSpace(query)
		if query == "" {
			return fmt.Errorf("heard nothing")
		}
		fmt.Fprintf(os.Stderr, "> %s\n", query)
		answer, err := a.asst.Ask(ctx, query)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		if a.speaker != nil {
			if err := a.speaker.Say(ctx, answer); err != nil {
				a.log.Warn().Err(err).Msg("failed to speak answer")
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown subcommand %q (available: ask, speak, listen)", args[0])
	}
}
