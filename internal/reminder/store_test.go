package reminder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/rin/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "rin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func testRecord(id string, dueAt time.Time) *Record {
	return &Record{
		ID:          id,
		Kind:        KindReminder,
		Description: "desc " + id,
		CreatedAt:   time.Now(),
		DueAt:       dueAt,
		Status:      StatusPending,
	}
}

func TestStoreInsertAndGet(t *testing.T) {
	store := newTestStore(t)

	rec := &Record{
		ID:              "timer_1700000000_90",
		Kind:            KindTimer,
		Description:     "tea",
		CreatedAt:       time.Now(),
		DueAt:           time.Now().Add(90 * time.Second),
		DurationSeconds: 90,
		Status:          StatusPending,
	}
	require.NoError(t, store.Insert(rec))

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, KindTimer, got.Kind)
	assert.Equal(t, "tea", got.Description)
	assert.Equal(t, 90, got.DurationSeconds)
	assert.Equal(t, StatusPending, got.Status)
	// timestamps are persisted at second precision
	assert.WithinDuration(t, rec.CreatedAt, got.CreatedAt, time.Second)
	assert.WithinDuration(t, rec.DueAt, got.DueAt, time.Second)
}

func TestStoreGetUnknown(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("reminder_0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreInsertDuplicateID(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord("reminder_1700000000", time.Now().Add(time.Hour))
	require.NoError(t, store.Insert(rec))

	err := store.Insert(testRecord("reminder_1700000000", time.Now().Add(2*time.Hour)))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestStoreFetchPendingOrdered(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	require.NoError(t, store.Insert(testRecord("c", now.Add(5*time.Hour))))
	require.NoError(t, store.Insert(testRecord("a", now.Add(1*time.Hour))))
	require.NoError(t, store.Insert(testRecord("b", now.Add(3*time.Hour))))

	// terminal records are excluded
	require.NoError(t, store.Insert(testRecord("done", now.Add(2*time.Hour))))
	done, err := store.MarkCompleted("done")
	require.NoError(t, err)
	require.True(t, done)

	pending, err := store.FetchPending()
	require.NoError(t, err)

	ids := make([]string, 0, len(pending))
	for _, r := range pending {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestStoreMarkCompletedIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(testRecord("r1", time.Now().Add(time.Hour))))

	done, err := store.MarkCompleted("r1")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = store.MarkCompleted("r1")
	require.NoError(t, err)
	assert.False(t, done, "second completion is a no-op")

	done, err = store.MarkCompleted("missing")
	require.NoError(t, err, "completing an absent id never errors")
	assert.False(t, done)
}

func TestStoreMarkCancelled(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(testRecord("r1", time.Now().Add(time.Hour))))

	cancelled, err := store.MarkCancelled("r1")
	require.NoError(t, err)
	assert.True(t, cancelled)

	got, err := store.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	cancelled, err = store.MarkCancelled("r1")
	require.NoError(t, err)
	assert.False(t, cancelled, "second cancellation is a no-op")

	_, err = store.MarkCancelled("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreTerminalStatesStayTerminal(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Insert(testRecord("r1", time.Now().Add(time.Hour))))

	done, err := store.MarkCompleted("r1")
	require.NoError(t, err)
	require.True(t, done)

	cancelled, err := store.MarkCancelled("r1")
	require.NoError(t, err)
	assert.False(t, cancelled, "a completed record cannot be cancelled")

	got, err := store.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}
