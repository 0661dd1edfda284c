package repl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/notexe/rin/internal/lists"
	"github.com/notexe/rin/internal/when"
)

func (r *REPL) cmdTimer(args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return fmt.Errorf("usage: /timer <seconds> [description]")
	}

	seconds, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("usage: /timer <seconds> [description]")
	}
	description := strings.Join(fields[1:], " ")

	rec, err := r.Reminders.CreateTimer(seconds, description)
	if err != nil {
		return err
	}

	r.displaySystem(fmt.Sprintf("Timer %s set, fires at %s.", rec.ID, rec.DueAt.Local().Format("15:04:05")))
	return nil
}

func (r *REPL) cmdRemind(args string) error {
	// /remind --time tomorrow 9am take out bins is accepted too.
	args = strings.TrimSpace(strings.TrimPrefix(args, "--time "))
	if args == "" {
		return fmt.Errorf("usage: /remind <when> | <description>  (e.g. /remind tomorrow 9am | take out bins)")
	}

	dueAt, description, err := splitWhen(args, time.Now())
	if err != nil {
		return err
	}
	if description == "" {
		return fmt.Errorf("reminder needs a description: /remind <when> | <description>")
	}

	rec, err := r.Reminders.CreateReminder(dueAt, description)
	if err != nil {
		return err
	}

	r.displaySystem(fmt.Sprintf("Reminder %s set for %s.", rec.ID, rec.DueAt.Local().Format("Mon Jan 2 15:04")))
	return nil
}

// splitWhen separates the time expression from the description. An
// explicit "|" wins; without one, the longest leading prefix that parses
// as a time expression is taken.
func splitWhen(args string, now time.Time) (time.Time, string, error) {
	if expr, desc, found := strings.Cut(args, "|"); found {
		dueAt, err := when.Parse(strings.TrimSpace(expr), now)
		if err != nil {
			return time.Time{}, "", err
		}
		return dueAt, strings.TrimSpace(desc), nil
	}

	fields := strings.Fields(args)
	limit := min(4, len(fields))
	for n := limit; n >= 1; n-- {
		expr := strings.Join(fields[:n], " ")
		if dueAt, err := when.Parse(expr, now); err == nil {
			return dueAt, strings.Join(fields[n:], " "), nil
		}
	}
	return time.Time{}, "", fmt.Errorf("cannot find a time in %q (try \"/remind tomorrow 9am | take out bins\")", args)
}

func (r *REPL) cmdReminders() error {
	records, err := r.Reminders.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		r.displayInfo("No pending reminders.")
		return nil
	}

	var sb strings.Builder
	for _, rec := range records {
		until := time.Until(rec.DueAt).Round(time.Second)
		desc := rec.Description
		if desc == "" {
			desc = "(no description)"
		}
		fmt.Fprintf(&sb, "  %-28s %s  in %s  %s\n",
			rec.ID, rec.DueAt.Local().Format("Mon Jan 2 15:04"), until, desc)
	}
	r.displayInfo("Pending reminders:\n" + strings.TrimRight(sb.String(), "\n"))
	return nil
}

func (r *REPL) cmdCancel(args string) error {
	if args == "" {
		return fmt.Errorf("usage: /cancel <reminder-id>")
	}

	cancelled, err := r.Reminders.Cancel(args)
	if err != nil {
		return err
	}
	if !cancelled {
		r.displayInfo(fmt.Sprintf("No pending reminder with id %s.", args))
		return nil
	}
	r.displaySystem(fmt.Sprintf("Cancelled %s.", args))
	return nil
}

func (r *REPL) cmdSearch(ctx context.Context, args string) error {
	if args == "" {
		return fmt.Errorf("usage: /search <query>")
	}

	r.status.Show("Searching...")
	answer, err := r.Assistant.Search(ctx, args)
	r.status.Hide()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(r.formatter.FormatAssistantMessage(r.markdown.Render(answer)))
	fmt.Println()
	return nil
}

func (r *REPL) cmdEmail(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return fmt.Errorf("usage: /email <recipient> [--tone <tone>] <prompt>")
	}

	recipient := fields[0]
	rest := fields[1:]

	tone := ""
	if len(rest) >= 2 && rest[0] == "--tone" {
		tone = rest[1]
		rest = rest[2:]
	}
	prompt := strings.Join(rest, " ")
	if prompt == "" {
		return fmt.Errorf("usage: /email <recipient> [--tone <tone>] <prompt>")
	}

	r.status.Show("Drafting...")
	draft, err := r.Drafts.Generate(ctx, recipient, prompt, tone)
	r.status.Hide()
	if err != nil {
		return err
	}

	body := fmt.Sprintf("To: %s\nSubject: %s\n\n%s", draft.Recipient, draft.Subject, draft.Content)
	fmt.Println()
	fmt.Println(r.formatter.FormatBox("Draft "+draft.ID, body))
	fmt.Println()
	return nil
}

func (r *REPL) cmdList(args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return fmt.Errorf("usage: /list add|remove|show|del|all ...")
	}

	switch fields[0] {
	case "add":
		if len(fields) < 3 {
			return fmt.Errorf("usage: /list add <name> <item>")
		}
		name, item := fields[1], strings.Join(fields[2:], " ")
		if err := r.Lists.AddItem(name, item); err != nil {
			return err
		}
		r.displaySystem(fmt.Sprintf("Added %q to %s.", item, strings.ToLower(name)))
		return nil

	case "remove", "rm":
		if len(fields) < 3 {
			return fmt.Errorf("usage: /list remove <name> <item>")
		}
		name, item := fields[1], strings.Join(fields[2:], " ")
		err := r.Lists.RemoveItem(name, item)
		if errors.Is(err, lists.ErrListNotFound) || errors.Is(err, lists.ErrItemNotFound) {
			r.displayInfo(err.Error())
			return nil
		}
		if err != nil {
			return err
		}
		r.displaySystem(fmt.Sprintf("Removed %q from %s.", item, strings.ToLower(name)))
		return nil

	case "show":
		if len(fields) != 2 {
			return fmt.Errorf("usage: /list show <name>")
		}
		items, err := r.Lists.Items(fields[1])
		if errors.Is(err, lists.ErrListNotFound) {
			r.displayInfo(fmt.Sprintf("No list named %q.", fields[1]))
			return nil
		}
		if err != nil {
			return err
		}
		r.displayInfo(formatList(strings.ToLower(fields[1]), items))
		return nil

	case "del", "delete":
		if len(fields) != 2 {
			return fmt.Errorf("usage: /list del <name>")
		}
		err := r.Lists.Delete(fields[1])
		if errors.Is(err, lists.ErrListNotFound) {
			r.displayInfo(fmt.Sprintf("No list named %q.", fields[1]))
			return nil
		}
		if err != nil {
			return err
		}
		r.displaySystem(fmt.Sprintf("Deleted list %s.", strings.ToLower(fields[1])))
		return nil

	case "all":
		all, err := r.Lists.All()
		if err != nil {
			return err
		}
		if len(all) == 0 {
			r.displayInfo("No lists yet.")
			return nil
		}
		var parts []string
		for _, l := range all {
			parts = append(parts, formatList(l.Name, l.Items))
		}
		r.displayInfo(strings.Join(parts, "\n\n"))
		return nil

	default:
		return fmt.Errorf("unknown list action: %s (available: add, remove, show, del, all)", fields[0])
	}
}

func formatList(name string, items []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d):", name, len(items))
	for _, item := range items {
		fmt.Fprintf(&sb, "\n  - %s", item)
	}
	return sb.String()
}

func (r *REPL) cmdSpeak(ctx context.Context, args string) error {
	if r.Speaker == nil {
		r.displayInfo("Speech is not configured (set tts.engine).")
		return nil
	}
	if args == "" {
		return fmt.Errorf("usage: /speak <text>")
	}

	r.status.Show("Speaking...")
	err := r.Speaker.Say(ctx, args)
	r.status.Hide()
	return err
}

func (r *REPL) cmdListen(ctx context.Context) error {
	if r.Recorder == nil || r.Transcriber == nil {
		r.displayInfo("Voice input is not configured (set stt.engine and install a recorder).")
		return nil
	}

	seconds := r.Config.Audio.RecordSeconds
	r.status.ShowWithNewline(fmt.Sprintf("Listening for %d seconds...", seconds))

	path, err := r.Recorder.Record(ctx, seconds)
	if err != nil {
		return err
	}

	r.status.Show("Transcribing...")
	text, err := r.Transcriber.Transcribe(ctx, path)
	r.status.Hide()
	if err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		r.displayInfo("Heard nothing.")
		return nil
	}

	fmt.Println(r.formatter.FormatUserMessage(text))
	return r.handleMessage(ctx, text)
}

func (r *REPL) cmdHistory(args string) error {
	if r.History == nil {
		r.displayInfo("Interaction history is not available.")
		return nil
	}

	n := 10
	if args != "" {
		parsed, err := strconv.Atoi(args)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("usage: /history [count]")
		}
		n = parsed
	}

	recent, err := r.History.Recent(n)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		r.displayInfo("No recorded interactions yet.")
		return nil
	}

	var sb strings.Builder
	for i := len(recent) - 1; i >= 0; i-- {
		it := recent[i]
		fmt.Fprintf(&sb, "[%s] %s\n  %s\n", it.Timestamp.Local().Format("Jan 2 15:04"), it.Query, firstLine(it.Response))
	}
	r.displayInfo(strings.TrimRight(sb.String(), "\n"))
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len(line) > 120 {
		line = line[:117] + "..."
	}
	return line
}
