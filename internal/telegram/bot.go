// Package telegram runs the assistant as a long-polling Telegram bot.
// Commands mirror the REPL's reminder and assistant surface; any
// non-command text goes straight to the assistant.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/notexe/rin/internal/assistant"
	"github.com/notexe/rin/internal/reminder"
	"github.com/notexe/rin/internal/when"
)

const helpText = `I'm Rin. Commands:
/ask <question> - ask me anything (or just type without a command)
/timer <seconds> [description] - set a countdown timer
/remind <when> | <description> - set a reminder, e.g. /remind tomorrow 9am | take out bins
/reminders - list pending reminders
/cancel <id> - cancel a reminder
/help - this message`

// Bot wraps the Telegram API around the assistant and reminder engine.
type Bot struct {
	api       *tgbotapi.BotAPI
	asst      *assistant.Assistant
	reminders *reminder.Service
	chatID    int64 // 0 answers any chat
	log       zerolog.Logger
}

// NewBot authenticates against the Bot API. chatID restricts the bot to a
// single chat; pass 0 to answer everyone.
func NewBot(token string, chatID int64, asst *assistant.Assistant, reminders *reminder.Service, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}

	return &Bot{
		api:       api,
		asst:      asst,
		reminders: reminders,
		chatID:    chatID,
		log:       log.With().Str("component", "telegram").Logger(),
	}, nil
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Str("username", b.api.Self.UserName).Msg("bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if b.chatID != 0 && msg.Chat.ID != b.chatID {
		b.log.Warn().Int64("chatID", msg.Chat.ID).Msg("message from unauthorized chat ignored")
		return
	}

	var reply string
	if msg.IsCommand() {
		reply = b.handleCommand(ctx, msg.Command(), strings.TrimSpace(msg.CommandArguments()))
	} else {
		reply = b.ask(ctx, msg.Text)
	}

	if reply == "" {
		return
	}
	b.send(msg.Chat.ID, reply)
}

func (b *Bot) handleCommand(ctx context.Context, command, args string) string {
	switch command {
	case "start", "help":
		return helpText

	case "ask":
		if args == "" {
			return "Usage: /ask <question>"
		}
		return b.ask(ctx, args)

	case "timer":
		return b.timer(args)

	case "remind":
		return b.remind(args)

	case "reminders":
		return b.listReminders()

	case "cancel":
		return b.cancel(args)

	default:
		return "Unknown command. " + helpText
	}
}

func (b *Bot) ask(ctx context.Context, query string) string {
	answer, err := b.asst.Ask(ctx, query)
	if err != nil {
		b.log.Error().Err(err).Msg("ask failed")
		return "Sorry, that didn't work: " + err.Error()
	}
	return answer
}

func (b *Bot) timer(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "Usage: /timer <seconds> [description]"
	}

	seconds, err := strconv.Atoi(fields[0])
	if err != nil {
		return "Usage: /timer <seconds> [description]"
	}

	rec, err := b.reminders.CreateTimer(seconds, strings.Join(fields[1:], " "))
	if err != nil {
		return "Could not set the timer: " + err.Error()
	}
	return fmt.Sprintf("Timer %s set, fires at %s.", rec.ID, rec.DueAt.Local().Format("15:04:05"))
}

func (b *Bot) remind(args string) string {
	expr, description, found := strings.Cut(args, "|")
	if !found || strings.TrimSpace(description) == "" {
		return "Usage: /remind <when> | <description>\nExample: /remind tomorrow 9am | take out bins"
	}

	dueAt, err := when.Parse(strings.TrimSpace(expr), time.Now())
	if err != nil {
		return "I can't read that time: " + err.Error()
	}

	rec, err := b.reminders.CreateReminder(dueAt, strings.TrimSpace(description))
	if err != nil {
		return "Could not set the reminder: " + err.Error()
	}
	return fmt.Sprintf("Reminder %s set for %s.", rec.ID, rec.DueAt.Local().Format("Mon Jan 2 15:04"))
}

func (b *Bot) listReminders() string {
	records, err := b.reminders.List()
	if err != nil {
		return "Could not list reminders: " + err.Error()
	}
	if len(records) == 0 {
		return "No pending reminders."
	}

	var sb strings.Builder
	sb.WriteString("Pending reminders:\n")
	for _, rec := range records {
		desc := rec.Description
		if desc == "" {
			desc = "(no description)"
		}
		fmt.Fprintf(&sb, "%s\n  %s - %s\n", rec.ID, rec.DueAt.Local().Format("Mon Jan 2 15:04"), desc)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) cancel(args string) string {
	if args == "" {
		return "Usage: /cancel <reminder-id>"
	}

	cancelled, err := b.reminders.Cancel(args)
	if err != nil {
		return "Could not cancel: " + err.Error()
	}
	if !cancelled {
		return "No pending reminder with id " + args + "."
	}
	return "Cancelled " + args + "."
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chatID", chatID).Msg("failed to send message")
	}
}
