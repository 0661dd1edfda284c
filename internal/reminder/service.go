package reminder

import (
	"errors"
	"fmt"
	"time"
)

// Service is the public surface of the reminder engine, the only one the
// shell, the bot relay and the MCP server consume. It owns id generation
// and holds the scheduler; construct one per store.
type Service struct {
	store Storage
	sched *Scheduler
	now   func() time.Time
}

func NewService(store Storage, sched *Scheduler) *Service {
	return &Service{
		store: store,
		sched: sched,
		now:   time.Now,
	}
}

// Recover re-arms everything the store still holds as pending. Call once
// at startup; process restarts are the normal path, not the exception.
func (s *Service) Recover() error {
	return s.sched.Recover()
}

// CreateTimer schedules a notification durationSeconds from now.
func (s *Service) CreateTimer(durationSeconds int, description string) (*Record, error) {
	if durationSeconds <= 0 {
		return nil, &ValidationError{Field: "duration", Reason: "must be a positive number of seconds"}
	}
	if description == "" {
		description = "Timer"
	}

	now := s.now()
	rec := &Record{
		ID:              fmt.Sprintf("timer_%d_%d", now.Unix(), durationSeconds),
		Kind:            KindTimer,
		Description:     description,
		CreatedAt:       now,
		DueAt:           now.Add(time.Duration(durationSeconds) * time.Second),
		DurationSeconds: durationSeconds,
		Status:          StatusPending,
	}

	if err := s.store.Insert(rec); err != nil {
		return nil, err
	}
	s.sched.Arm(rec)
	return rec, nil
}

// CreateReminder schedules a notification at an absolute instant.
func (s *Service) CreateReminder(dueAt time.Time, description string) (*Record, error) {
	now := s.now()
	if dueAt.Before(now) {
		return nil, &ValidationError{Field: "time", Reason: "must be in the future"}
	}

	rec := &Record{
		ID:          fmt.Sprintf("reminder_%d", now.Unix()),
		Kind:        KindReminder,
		Description: description,
		CreatedAt:   now,
		DueAt:       dueAt,
		Status:      StatusPending,
	}

	if err := s.store.Insert(rec); err != nil {
		return nil, err
	}
	s.sched.Arm(rec)
	return rec, nil
}

// List returns pending records ordered by due time.
func (s *Service) List() ([]*Record, error) {
	return s.store.FetchPending()
}

// Get returns a record by id, ErrNotFound when it never existed.
func (s *Service) Get(id string) (*Record, error) {
	return s.store.Get(id)
}

// Cancel stops a pending reminder. It reports true only when a pending
// record existed and was cancelled; unknown and already-terminal ids both
// report false.
func (s *Service) Cancel(id string) (bool, error) {
	cancelled, err := s.sched.Cancel(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return cancelled, nil
}

// Close tears down the scheduler, waiting for in-flight deliveries.
func (s *Service) Close() {
	s.sched.Close()
}
