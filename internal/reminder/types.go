package reminder

import "time"

// Kind distinguishes duration-based timers from absolute-time reminders.
type Kind string

const (
	KindTimer    Kind = "timer"
	KindReminder Kind = "reminder"
)

// Status values. Completed and cancelled are terminal; a record in a
// terminal state never returns to pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Record is one scheduled notification.
type Record struct {
	ID              string    `json:"id"`
	Kind            Kind      `json:"kind"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
	DueAt           time.Time `json:"due_at"`
	DurationSeconds int       `json:"duration_seconds,omitempty"` // timers only; due_at is authoritative
	Status          Status    `json:"status"`
}

// Terminal reports whether the record can no longer fire.
func (r *Record) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusCancelled
}

// Message returns the notification body shown to the user.
func (r *Record) Message() string {
	if r.Kind == KindTimer {
		return "Timer complete: " + r.Description
	}
	return "Reminder: " + r.Description
}
