// Command rin-telegram runs the assistant as a Telegram bot. Reminders
// set through the bot are delivered on the host running it (desktop alert
// and speech, per config).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/notexe/rin/internal/api"
	"github.com/notexe/rin/internal/assistant"
	"github.com/notexe/rin/internal/config"
	"github.com/notexe/rin/internal/history"
	"github.com/notexe/rin/internal/logging"
	"github.com/notexe/rin/internal/notify"
	"github.com/notexe/rin/internal/reminder"
	"github.com/notexe/rin/internal/search"
	"github.com/notexe/rin/internal/storage"
	"github.com/notexe/rin/internal/telegram"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.Telegram.Token == "" {
		fmt.Fprintln(os.Stderr, "Telegram bot token is required (set TELEGRAM_BOT_TOKEN or telegram.token)")
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
	histStore, err := history.NewStore(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open history store: %v\n", err)
		os.Exit(1)
	}

	provider, err := api.NewProvider(cfg.GetProviderConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating provider: %v\n", err)
		os.Exit(1)
	}
	defer provider.Close()

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

	var searcher assistant.Searcher
	if cfg.Search.SerpAPIKey != "" {
		searcher = search.NewClient(cfg.Search.SerpAPIKey, cfg.Search.Results, log)
	}
	asst := assistant.New(provider, searcher, histStore, cfg.Model.Name, cfg.Session.ContextTurns, log)

	bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, asst, svc, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Bot error: %v\n", err)
		os.Exit(1)
	}
}
