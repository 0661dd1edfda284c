package reminder

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *fakeNotifier) {
	t.Helper()
	store := newTestStore(t)
	n := &fakeNotifier{}
	sched := newTestScheduler(t, store, n, OverdueNotify)
	return NewService(store, sched), n
}

// tickingNow returns a clock that advances one second per reading, keeping
// generated ids distinct without sleeping.
func tickingNow(start time.Time) func() time.Time {
	var mu sync.Mutex
	calls := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return start.Add(time.Duration(calls-1) * time.Second)
	}
}

func TestCreateTimerValidation(t *testing.T) {
	svc, _ := newTestService(t)

	for _, seconds := range []int{0, -5} {
		_, err := svc.CreateTimer(seconds, "tea")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "duration", verr.Field)
	}

	pending, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, pending, "rejected calls schedule nothing")
}

func TestCreateTimerRecord(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	rec, err := svc.CreateTimer(90, "tea")
	require.NoError(t, err)

	assert.Equal(t, KindTimer, rec.Kind)
	assert.Equal(t, StatusPending, rec.Status)
	assert.Equal(t, 90, rec.DurationSeconds)
	assert.True(t, rec.DueAt.Equal(start.Add(90*time.Second)), "dueAt = createdAt + duration")
	assert.True(t, strings.HasPrefix(rec.ID, "timer_"), "id pattern: %s", rec.ID)
}

func TestCreateTimerDefaultDescription(t *testing.T) {
	svc, _ := newTestService(t)

	rec, err := svc.CreateTimer(3600, "")
	require.NoError(t, err)
	assert.Equal(t, "Timer", rec.Description)
}

func TestCreateReminderRejectsPast(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateReminder(time.Now().Add(-time.Minute), "too late")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "time", verr.Field)
}

func TestCreateReminderDuplicateID(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	_, err := svc.CreateReminder(start.Add(time.Hour), "first")
	require.NoError(t, err)

	// same epoch second produces the same id; the caller retries
	_, err = svc.CreateReminder(start.Add(2*time.Hour), "second")
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestListSortedByDueTime(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Now().Truncate(time.Second)
	svc.now = tickingNow(start)

	_, err := svc.CreateReminder(start.Add(5*time.Hour), "latest")
	require.NoError(t, err)
	_, err = svc.CreateReminder(start.Add(1*time.Hour), "soonest")
	require.NoError(t, err)
	_, err = svc.CreateReminder(start.Add(3*time.Hour), "middle")
	require.NoError(t, err)

	pending, err := svc.List()
	require.NoError(t, err)
	require.Len(t, pending, 3)

	descriptions := []string{pending[0].Description, pending[1].Description, pending[2].Description}
	assert.Equal(t, []string{"soonest", "middle", "latest"}, descriptions)
}

func TestCancelSemantics(t *testing.T) {
	svc, _ := newTestService(t)

	rec, err := svc.CreateReminder(time.Now().Add(time.Hour), "call mom")
	require.NoError(t, err)

	cancelled, err := svc.Cancel(rec.ID)
	require.NoError(t, err)
	assert.True(t, cancelled)

	got, err := svc.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	// second cancel is idempotent
	cancelled, err = svc.Cancel(rec.ID)
	require.NoError(t, err)
	assert.False(t, cancelled)

	got, err = svc.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status, "status unchanged after the first cancel")

	// unknown ids report false rather than erroring
	cancelled, err = svc.Cancel("reminder_0")
	require.NoError(t, err)
	assert.False(t, cancelled)
}

func TestTimerDeliveryScenario(t *testing.T) {
	svc, n := newTestService(t)

	rec, err := svc.CreateTimer(1, "tea")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		msgs := n.messages()
		return len(msgs) == 1 && strings.Contains(msgs[0], "tea")
	}, 3*time.Second, 25*time.Millisecond)

	require.Eventually(t, func() bool {
		got, err := svc.Get(rec.ID)
		return err == nil && got.Status == StatusCompleted
	}, 2*time.Second, 25*time.Millisecond)
}

func TestReminderCancelledBeforeDue(t *testing.T) {
	svc, n := newTestService(t)

	rec, err := svc.CreateReminder(time.Now().Add(400*time.Millisecond), "call mom")
	require.NoError(t, err)

	cancelled, err := svc.Cancel(rec.ID)
	require.NoError(t, err)
	require.True(t, cancelled)

	time.Sleep(700 * time.Millisecond)
	assert.Empty(t, n.messages(), "cancelled reminders never notify")

	got, err := svc.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}
