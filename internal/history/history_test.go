package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/rin/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func TestSaveAndRecent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("what time is it", "half past three"))
	require.NoError(t, store.Save("remind me to stretch", "done, set for 5pm"))
	require.NoError(t, store.Save("weather tomorrow", "sunny, 24C"))

	recent, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	assert.Equal(t, "weather tomorrow", recent[0].Query)
	assert.Equal(t, "remind me to stretch", recent[1].Query)
	assert.Equal(t, "done, set for 5pm", recent[1].Response)
	assert.False(t, recent[0].Timestamp.IsZero())
}

func TestRecentEmpty(t *testing.T) {
	store := newTestStore(t)

	recent, err := store.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
