package drafts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/rin/internal/api"
	"github.com/notexe/rin/internal/storage"
)

type fakeProvider struct {
	reply   string
	lastReq api.MessageRequest
}

func (f *fakeProvider) SendMessage(_ context.Context, req api.MessageRequest) (*api.MessageResponse, error) {
	f.lastReq = req
	return &api.MessageResponse{Content: f.reply}, nil
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Close() error { return nil }

func newTestService(t *testing.T, reply string) (*Service, *fakeProvider) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	provider := &fakeProvider{reply: reply}
	svc, err := NewService(db, provider, "test-model", zerolog.Nop())
	require.NoError(t, err)
	return svc, provider
}

func TestGenerateSplitsSubject(t *testing.T) {
	svc, provider := newTestService(t, "Subject: Quarterly sync\n\nHi Sam,\n\nCan we meet Thursday?\n")

	draft, err := svc.Generate(context.Background(), "sam@example.com", "ask about the quarterly sync", "friendly")
	require.NoError(t, err)

	assert.Equal(t, "Quarterly sync", draft.Subject)
	assert.Equal(t, "Hi Sam,\n\nCan we meet Thursday?", draft.Content)
	assert.Equal(t, "friendly", draft.Tone)
	assert.Regexp(t, `^email_\d+_[0-9a-f]{8}$`, draft.ID)

	// The instruction names the recipient and tone.
	require.Len(t, provider.lastReq.Messages, 1)
	assert.Contains(t, provider.lastReq.Messages[0].Content, "friendly email to sam@example.com")
}

func TestGenerateWithoutSubjectLine(t *testing.T) {
	svc, _ := newTestService(t, "Hello there, just the body.")

	draft, err := svc.Generate(context.Background(), "sam@example.com", "say hi", "")
	require.NoError(t, err)

	assert.Empty(t, draft.Subject)
	assert.Equal(t, "Hello there, just the body.", draft.Content)
	assert.Equal(t, "professional", draft.Tone)
}

func TestGetAndRecent(t *testing.T) {
	svc, _ := newTestService(t, "Subject: Hi\n\nbody")

	first, err := svc.Generate(context.Background(), "a@example.com", "one", "")
	require.NoError(t, err)

	got, err := svc.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "a@example.com", got.Recipient)

	_, err = svc.Get("email_0_deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)

	recent, err := svc.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, first.ID, recent[0].ID)
}

func TestGenerateValidates(t *testing.T) {
	svc, _ := newTestService(t, "x")

	_, err := svc.Generate(context.Background(), "", "prompt", "")
	assert.Error(t, err)

	_, err = svc.Generate(context.Background(), "a@example.com", "  ", "")
	assert.Error(t, err)
}
