// Package notify delivers due reminders to the user over two independent
// channels: a desktop alert and a spoken rendering of the message.
package notify

import (
	"context"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// DeliveryReport records the outcome of each channel independently.
// A nil error means the channel landed (or was intentionally disabled).
type DeliveryReport struct {
	Alert  error
	Speech error
}

// Delivered reports whether at least one channel reached the user.
func (r DeliveryReport) Delivered() bool {
	return r.Alert == nil || r.Speech == nil
}

// Speaker renders text as audible speech.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Desktop delivers through beeep system notifications and a Speaker.
// A failure on one channel never prevents the other from being attempted.
type Desktop struct {
	speaker Speaker // nil disables the spoken channel
	alerts  bool
	alertFn func(title, message string) error
	log     zerolog.Logger
}

// Option configures a Desktop.
type Option func(*Desktop)

// WithAlertFunc replaces the system-notification call.
func WithAlertFunc(fn func(title, message string) error) Option {
	return func(d *Desktop) {
		d.alertFn = fn
	}
}

// NewDesktop builds the notifier. Pass a nil speaker to disable speech,
// alerts=false to disable system notifications.
func NewDesktop(speaker Speaker, alerts bool, log zerolog.Logger, opts ...Option) *Desktop {
	d := &Desktop{
		speaker: speaker,
		alerts:  alerts,
		alertFn: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		log: log.With().Str("component", "notify").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver attempts both channels and reports per-channel outcomes. It never
// returns an error: the caller's bookkeeping proceeds regardless, and the
// collaborators own their own timeouts.
func (d *Desktop) Deliver(title, message string) DeliveryReport {
	var rep DeliveryReport

	if d.alerts {
		rep.Alert = d.alertFn(title, message)
		if rep.Alert != nil {
			d.log.Warn().Err(rep.Alert).Msg("system alert failed")
		}
	} else {
		d.log.Debug().Msg("alert channel disabled")
	}

	if d.speaker != nil {
		rep.Speech = d.speaker.Say(context.Background(), message)
		if rep.Speech != nil {
			d.log.Warn().Err(rep.Speech).Msg("spoken delivery failed")
		}
	} else {
		d.log.Debug().Msg("speech channel disabled")
	}

	return rep
}
