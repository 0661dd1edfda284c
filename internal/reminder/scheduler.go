package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/notexe/rin/internal/notify"
)

// Storage is the store contract the engine relies on.
type Storage interface {
	Insert(r *Record) error
	FetchPending() ([]*Record, error)
	Get(id string) (*Record, error)
	MarkCompleted(id string) (bool, error)
	MarkCancelled(id string) (bool, error)
}

// Notifier delivers a due reminder to the user. Delivery failure is
// reported, never raised.
type Notifier interface {
	Deliver(title, message string) notify.DeliveryReport
}

// OverduePolicy controls what recovery does with records already past due.
// They are never dropped either way.
type OverduePolicy string

const (
	// OverdueNotify delivers overdue records immediately.
	OverdueNotify OverduePolicy = "notify"
	// OverdueComplete marks overdue records completed without delivery.
	OverdueComplete OverduePolicy = "complete"
)

const revalidateBackoffMax = 30 * time.Second

// SchedulerConfig carries the tunables of the wait-task engine.
type SchedulerConfig struct {
	Title     string        // notification title
	Overdue   OverduePolicy // default OverdueNotify
	RetryBase time.Duration // first backoff step for store re-checks, default 1s
}

// Scheduler owns one wait-task per pending record and fires each at most
// once per process lifetime. The store stays authoritative throughout:
// every task re-validates against it before delivering, and cancellation
// hits the store before it hits the in-memory task.
type Scheduler struct {
	store    Storage
	notifier Notifier
	title    string
	policy   OverduePolicy
	retry    time.Duration
	log      zerolog.Logger

	mu    sync.Mutex
	tasks map[string]*task
	wg    sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

type task struct {
	cancel context.CancelFunc
}

func NewScheduler(store Storage, notifier Notifier, cfg SchedulerConfig, log zerolog.Logger) *Scheduler {
	if cfg.Title == "" {
		cfg.Title = "Rin Assistant"
	}
	if cfg.Overdue == "" {
		cfg.Overdue = OverdueNotify
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:    store,
		notifier: notifier,
		title:    cfg.Title,
		policy:   cfg.Overdue,
		retry:    cfg.RetryBase,
		log:      log.With().Str("component", "scheduler").Logger(),
		tasks:    make(map[string]*task),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Recover arms every pending record found in the store. Records already
// past due go through the configured overdue policy. Safe to call while
// creations are happening; Arm is idempotent per id.
func (s *Scheduler) Recover() error {
	pending, err := s.store.FetchPending()
	if err != nil {
		return fmt.Errorf("failed to fetch pending reminders: %w", err)
	}

	overdue := 0
	for _, rec := range pending {
		if !rec.DueAt.After(time.Now()) {
			overdue++
			if s.policy == OverdueComplete {
				if done, err := s.store.MarkCompleted(rec.ID); err != nil {
					s.log.Error().Err(err).Str("id", rec.ID).Msg("failed to complete overdue reminder")
				} else if done {
					s.log.Info().Str("id", rec.ID).Msg("overdue reminder completed without notification")
				}
				continue
			}
		}
		s.Arm(rec)
	}

	s.log.Info().Int("pending", len(pending)).Int("overdue", overdue).Msg("recovered reminders")
	return nil
}

// Arm starts the wait-task for a pending record. The delay is computed
// once, from the wall clock at call time; later clock adjustments are not
// compensated. Arming an id that already holds a task is a no-op, which
// lets creation and recovery race safely.
func (s *Scheduler) Arm(rec *Record) {
	s.mu.Lock()
	if _, ok := s.tasks[rec.ID]; ok {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.tasks[rec.ID] = &task{cancel: cancel}
	s.wg.Add(1)
	s.mu.Unlock()

	delay := time.Until(rec.DueAt)
	s.log.Debug().Str("id", rec.ID).Dur("delay", delay).Msg("armed")

	go func() {
		defer s.wg.Done()
		defer s.retire(rec.ID)
		s.wait(ctx, rec.ID, delay)
	}()
}

// Cancel marks the record cancelled in the store first, then stops any
// armed task, so the store wins even when no task exists (e.g. across a
// restart gap). A task that already re-validated finishes its delivery;
// it can never deliver twice because completion is a guarded transition.
func (s *Scheduler) Cancel(id string) (bool, error) {
	cancelled, err := s.store.MarkCancelled(id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if ok {
		t.cancel()
	}

	if cancelled {
		s.log.Info().Str("id", id).Msg("cancelled")
	}
	return cancelled, nil
}

// Close stops every armed task and waits for in-flight deliveries.
func (s *Scheduler) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) retire(id string) {
	s.mu.Lock()
	delete(s.tasks, id)
	s.mu.Unlock()
}

func (s *Scheduler) armed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	return ok
}

func (s *Scheduler) wait(ctx context.Context, id string, delay time.Duration) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
	}
	s.fire(ctx, id)
}

// fire runs the delivery path once the wait has elapsed: re-validate
// against the store, deliver, mark completed.
func (s *Scheduler) fire(ctx context.Context, id string) {
	rec, ok := s.revalidate(ctx, id)
	if !ok {
		return
	}

	report := s.notifier.Deliver(s.title, rec.Message())
	if report.Alert != nil {
		s.log.Warn().Err(report.Alert).Str("id", id).Msg("alert channel failed")
	}
	if report.Speech != nil {
		s.log.Warn().Err(report.Speech).Str("id", id).Msg("speech channel failed")
	}
	if !report.Delivered() {
		s.log.Error().Str("id", id).Msg("notification failed on every channel")
	} else {
		s.log.Info().Str("id", id).Msg("delivered")
	}

	s.complete(id)
}

// revalidate reads the record back until the store answers. A terminal or
// vanished record means another path won (cancellation, or an earlier
// fire); the task abandons silently. Store outages retry with backoff:
// delivering blind and dropping silently are both wrong, so the task
// holds on until the store says which it is, or the task is cancelled.
func (s *Scheduler) revalidate(ctx context.Context, id string) (*Record, bool) {
	backoff := s.retry
	for {
		rec, err := s.store.Get(id)
		switch {
		case errors.Is(err, ErrNotFound):
			s.log.Warn().Str("id", id).Msg("reminder vanished before delivery")
			return nil, false
		case err != nil:
			s.log.Error().Err(err).Str("id", id).Dur("retry_in", backoff).Msg("re-validation failed")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, false
			}
			if backoff < revalidateBackoffMax {
				backoff *= 2
			}
			continue
		case rec.Terminal():
			s.log.Debug().Str("id", id).Str("status", string(rec.Status)).Msg("abandoning delivery, record terminal")
			return nil, false
		}
		return rec, true
	}
}

// complete marks the record completed after delivery was attempted. The
// scheduler context, not the task context, bounds the retries: a user
// cancellation that lands mid-delivery must not abandon bookkeeping.
func (s *Scheduler) complete(id string) {
	backoff := s.retry
	for {
		done, err := s.store.MarkCompleted(id)
		if err == nil {
			if !done {
				s.log.Debug().Str("id", id).Msg("record already terminal at completion")
			}
			return
		}

		s.log.Error().Err(err).Str("id", id).Dur("retry_in", backoff).Msg("failed to mark reminder completed")
		select {
		case <-time.After(backoff):
		case <-s.ctx.Done():
			return
		}
		if backoff < revalidateBackoffMax {
			backoff *= 2
		}
	}
}
