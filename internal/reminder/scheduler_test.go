package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/rin/internal/notify"
)

type fakeNotifier struct {
	mu     sync.Mutex
	report notify.DeliveryReport
	calls  []string
}

func (f *fakeNotifier) Deliver(_, message string) notify.DeliveryReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, message)
	return f.report
}

func (f *fakeNotifier) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func newTestScheduler(t *testing.T, store Storage, n Notifier, policy OverduePolicy) *Scheduler {
	t.Helper()
	s := NewScheduler(store, n, SchedulerConfig{
		Overdue:   policy,
		RetryBase: 10 * time.Millisecond,
	}, zerolog.Nop())
	t.Cleanup(s.Close)
	return s
}

func (s *Scheduler) taskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func TestSchedulerFiresOnce(t *testing.T) {
	store := newTestStore(t)
	n := &fakeNotifier{}
	sched := newTestScheduler(t, store, n, OverdueNotify)

	rec := testRecord("r1", time.Now().Add(50*time.Millisecond))
	require.NoError(t, store.Insert(rec))
	sched.Arm(rec)

	require.Eventually(t, func() bool {
		return len(n.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		got, err := store.Get("r1")
		return err == nil && got.Status == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	assert.Contains(t, n.messages()[0], rec.Description)

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, n.messages(), 1, "the task must fire exactly once")
}

func TestSchedulerCancelBeforeFire(t *testing.T) {
	store := newTestStore(t)
	n := &fakeNotifier{}
	sched := newTestScheduler(t, store, n, OverdueNotify)

	rec := testRecord("r1", time.Now().Add(250*time.Millisecond))
	require.NoError(t, store.Insert(rec))
	sched.Arm(rec)

	cancelled, err := sched.Cancel("r1")
	require.NoError(t, err)
	assert.True(t, cancelled)

	time.Sleep(500 * time.Millisecond)
	assert.Empty(t, n.messages(), "a cancelled task must not deliver")

	got, err := store.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestSchedulerCancelUnknown(t *testing.T) {
	store := newTestStore(t)
	sched := newTestScheduler(t, store, &fakeNotifier{}, OverdueNotify)

	_, err := sched.Cancel("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSchedulerArmIdempotent(t *testing.T) {
	store := newTestStore(t)
	n := &fakeNotifier{}
	sched := newTestScheduler(t, store, n, OverdueNotify)

	rec := testRecord("r1", time.Now().Add(100*time.Millisecond))
	require.NoError(t, store.Insert(rec))

	sched.Arm(rec)
	sched.Arm(rec)
	assert.Equal(t, 1, sched.taskCount(), "double arm must not spawn a second task")

	require.Eventually(t, func() bool {
		return len(n.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, n.messages(), 1)
}

func TestSchedulerFireTwiceDeliversOnce(t *testing.T) {
	store := newTestStore(t)
	n := &fakeNotifier{}
	sched := newTestScheduler(t, store, n, OverdueNotify)

	rec := testRecord("r1", time.Now().Add(-time.Second))
	require.NoError(t, store.Insert(rec))

	// simulate the wait-elapse path racing itself
	sched.fire(context.Background(), "r1")
	sched.fire(context.Background(), "r1")

	assert.Len(t, n.messages(), 1, "re-validation must collapse duplicate fires")

	got, err := store.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestSchedulerRecoverOverdueNotify(t *testing.T) {
	store := newTestStore(t)
	n := &fakeNotifier{}
	require.NoError(t, store.Insert(testRecord("late", time.Now().Add(-time.Hour))))

	sched := newTestScheduler(t, store, n, OverdueNotify)
	require.NoError(t, sched.Recover())

	require.Eventually(t, func() bool {
		return len(n.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		got, err := store.Get("late")
		return err == nil && got.Status == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRecoverOverdueComplete(t *testing.T) {
	store := newTestStore(t)
	n := &fakeNotifier{}
	require.NoError(t, store.Insert(testRecord("late", time.Now().Add(-time.Hour))))

	sched := newTestScheduler(t, store, n, OverdueComplete)
	require.NoError(t, sched.Recover())

	require.Eventually(t, func() bool {
		got, err := store.Get("late")
		return err == nil && got.Status == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, n.messages(), "complete policy delivers nothing")
}

func TestSchedulerRecoverArmsFuture(t *testing.T) {
	store := newTestStore(t)
	n := &fakeNotifier{}
	require.NoError(t, store.Insert(testRecord("soon", time.Now().Add(time.Minute))))

	sched := newTestScheduler(t, store, n, OverdueNotify)
	require.NoError(t, sched.Recover())

	assert.True(t, sched.armed("soon"))
	assert.Empty(t, n.messages())
}

func TestSchedulerInterleavedDeliveries(t *testing.T) {
	store := newTestStore(t)
	n := &fakeNotifier{}
	sched := newTestScheduler(t, store, n, OverdueNotify)

	now := time.Now()
	records := []*Record{
		testRecord("alpha", now.Add(150*time.Millisecond)),
		testRecord("beta", now.Add(50*time.Millisecond)),
		testRecord("gamma", now.Add(100*time.Millisecond)),
	}
	for _, rec := range records {
		require.NoError(t, store.Insert(rec))
		sched.Arm(rec)
	}

	require.Eventually(t, func() bool {
		return len(n.messages()) == 3
	}, 3*time.Second, 10*time.Millisecond)

	assert.ElementsMatch(t, []string{
		"Reminder: desc alpha",
		"Reminder: desc beta",
		"Reminder: desc gamma",
	}, n.messages(), "each delivery carries its own description")

	for _, rec := range records {
		require.Eventually(t, func() bool {
			got, err := store.Get(rec.ID)
			return err == nil && got.Status == StatusCompleted
		}, 2*time.Second, 10*time.Millisecond)
	}
}

type flakyStore struct {
	Storage
	mu       sync.Mutex
	getFails int
}

func (f *flakyStore) Get(id string) (*Record, error) {
	f.mu.Lock()
	if f.getFails > 0 {
		f.getFails--
		f.mu.Unlock()
		return nil, errors.New("database is locked")
	}
	f.mu.Unlock()
	return f.Storage.Get(id)
}

func TestSchedulerRevalidationRetries(t *testing.T) {
	store := newTestStore(t)
	flaky := &flakyStore{Storage: store, getFails: 2}
	n := &fakeNotifier{}
	sched := newTestScheduler(t, flaky, n, OverdueNotify)

	rec := testRecord("r1", time.Now().Add(-time.Second))
	require.NoError(t, store.Insert(rec))
	sched.Arm(rec)

	require.Eventually(t, func() bool {
		return len(n.messages()) == 1
	}, 3*time.Second, 10*time.Millisecond, "delivery must survive transient store errors")

	require.Eventually(t, func() bool {
		got, err := store.Get("r1")
		return err == nil && got.Status == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

type blockingNotifier struct {
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
	count   int
}

func (b *blockingNotifier) Deliver(_, _ string) notify.DeliveryReport {
	b.mu.Lock()
	b.count++
	b.mu.Unlock()
	b.started <- struct{}{}
	<-b.release
	return notify.DeliveryReport{}
}

func (b *blockingNotifier) deliveries() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func TestSchedulerCancelMidDelivery(t *testing.T) {
	store := newTestStore(t)
	n := &blockingNotifier{started: make(chan struct{}, 1), release: make(chan struct{})}
	sched := newTestScheduler(t, store, n, OverdueNotify)

	rec := testRecord("r1", time.Now().Add(-time.Second))
	require.NoError(t, store.Insert(rec))
	sched.Arm(rec)

	select {
	case <-n.started:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery never started")
	}

	// cancellation past re-validation lets the delivery finish
	cancelled, err := sched.Cancel("r1")
	require.NoError(t, err)
	assert.True(t, cancelled, "record was still pending in the store")

	close(n.release)

	require.Eventually(t, func() bool {
		return !sched.armed("r1")
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, n.deliveries(), "an in-flight delivery completes but never repeats")

	got, err := store.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status, "the cancellation won the status race")
}

func TestSchedulerCloseStopsTasks(t *testing.T) {
	store := newTestStore(t)
	n := &fakeNotifier{}
	sched := NewScheduler(store, n, SchedulerConfig{RetryBase: 10 * time.Millisecond}, zerolog.Nop())

	rec := testRecord("r1", time.Now().Add(time.Minute))
	require.NoError(t, store.Insert(rec))
	sched.Arm(rec)

	sched.Close()

	assert.Empty(t, n.messages())
	got, err := store.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status, "shutdown leaves the record recoverable")
}
