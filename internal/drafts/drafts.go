// Package drafts generates and stores email drafts. Drafting goes through
// the configured chat provider; nothing is ever sent, drafts only
// accumulate for the user to copy out.
package drafts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/notexe/rin/internal/api"
)

// ErrNotFound is returned when no draft exists for an id.
var ErrNotFound = errors.New("draft not found")

// Draft is one generated email, never sent.
type Draft struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Tone      string    `json:"tone"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service generates drafts through a chat provider and persists them.
type Service struct {
	db       *sql.DB
	provider api.Provider
	model    string
	now      func() time.Time
	log      zerolog.Logger
}

// NewService ensures the email_drafts table exists.
func NewService(db *sql.DB, provider api.Provider, model string, log zerolog.Logger) (*Service, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS email_drafts (
			id         TEXT PRIMARY KEY,
			recipient  TEXT NOT NULL,
			subject    TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL,
			tone       TEXT NOT NULL DEFAULT 'professional',
			prompt     TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create email_drafts table: %w", err)
	}

	return &Service{
		db:       db,
		provider: provider,
		model:    model,
		now:      time.Now,
		log:      log.With().Str("component", "drafts").Logger(),
	}, nil
}

// Generate asks the provider for a draft and stores the result. The model
// is told to lead with a "Subject:" line; if it does, that line becomes
// the subject and the rest the body.
func (s *Service) Generate(ctx context.Context, recipient, prompt, tone string) (*Draft, error) {
	recipient = strings.TrimSpace(recipient)
	prompt = strings.TrimSpace(prompt)
	if recipient == "" {
		return nil, fmt.Errorf("recipient must not be empty")
	}
	if prompt == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}
	if tone == "" {
		tone = "professional"
	}

	instruction := fmt.Sprintf(
		"Write a %s email to %s. %s\n\nStart your reply with a line \"Subject: ...\" followed by a blank line and the email body. Output only the email, no commentary.",
		tone, recipient, prompt,
	)

	resp, err := s.provider.SendMessage(ctx, api.MessageRequest{
		Messages: []api.Message{{Role: "user", Content: instruction}},
		Model:    s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft: %w", err)
	}

	subject, content := splitSubject(resp.Content)
	now := s.now()
	draft := &Draft{
		ID:        fmt.Sprintf("email_%d_%s", now.Unix(), uuid.NewString()[:8]),
		Recipient: recipient,
		Subject:   subject,
		Content:   content,
		Tone:      tone,
		Prompt:    prompt,
		CreatedAt: now,
	}

	_, err = s.db.Exec(`
		INSERT INTO email_drafts (id, recipient, subject, content, tone, prompt, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, draft.ID, draft.Recipient, draft.Subject, draft.Content, draft.Tone, draft.Prompt,
		draft.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	s.log.Info().Str("id", draft.ID).Str("recipient", recipient).Msg("draft generated")
	return draft, nil
}

// Get returns the draft for id or ErrNotFound.
func (s *Service) Get(id string) (*Draft, error) {
	row := s.db.QueryRow(`
		SELECT id, recipient, subject, content, tone, prompt, created_at
		FROM email_drafts WHERE id = ?
	`, id)

	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return d, nil
}

// Recent returns the latest n drafts, newest first.
func (s *Service) Recent(n int) ([]*Draft, error) {
	rows, err := s.db.Query(`
		SELECT id, recipient, subject, content, tone, prompt, created_at
		FROM email_drafts ORDER BY created_at DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch drafts: %w", err)
	}
	defer rows.Close()

	var ds []*Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		ds = append(ds, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drafts: %w", err)
	}
	return ds, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDraft(row rowScanner) (*Draft, error) {
	var d Draft
	var createdAt string
	if err := row.Scan(&d.ID, &d.Recipient, &d.Subject, &d.Content, &d.Tone, &d.Prompt, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if d.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &d, nil
}

// splitSubject peels a leading "Subject: ..." line off the model output.
func splitSubject(text string) (subject, content string) {
	text = strings.TrimSpace(text)
	first, rest, found := strings.Cut(text, "\n")
	if found && strings.HasPrefix(strings.ToLower(first), "subject:") {
		subject = strings.TrimSpace(first[len("subject:"):])
		return subject, strings.TrimSpace(rest)
	}
	return "", text
}
