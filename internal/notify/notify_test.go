package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeSpeaker struct {
	err   error
	calls []string
}

func (f *fakeSpeaker) Say(_ context.Context, text string) error {
	f.calls = append(f.calls, text)
	return f.err
}

func TestDeliverBothChannels(t *testing.T) {
	speaker := &fakeSpeaker{}
	var alerted []string
	d := NewDesktop(speaker, true, zerolog.Nop(), WithAlertFunc(func(title, message string) error {
		alerted = append(alerted, title+": "+message)
		return nil
	}))

	rep := d.Deliver("Rin Assistant", "Timer complete: tea")

	assert.NoError(t, rep.Alert)
	assert.NoError(t, rep.Speech)
	assert.True(t, rep.Delivered())
	assert.Equal(t, []string{"Rin Assistant: Timer complete: tea"}, alerted)
	assert.Equal(t, []string{"Timer complete: tea"}, speaker.calls)
}

func TestDeliverPartialFailure(t *testing.T) {
	speaker := &fakeSpeaker{}
	alertErr := errors.New("no notification daemon")
	d := NewDesktop(speaker, true, zerolog.Nop(), WithAlertFunc(func(string, string) error {
		return alertErr
	}))

	rep := d.Deliver("Rin Assistant", "Reminder: call mom")

	assert.ErrorIs(t, rep.Alert, alertErr)
	assert.NoError(t, rep.Speech)
	assert.True(t, rep.Delivered(), "one live channel is still a delivery")
	assert.Len(t, speaker.calls, 1, "alert failure must not skip speech")
}

func TestDeliverTotalFailure(t *testing.T) {
	speaker := &fakeSpeaker{err: errors.New("no audio device")}
	d := NewDesktop(speaker, true, zerolog.Nop(), WithAlertFunc(func(string, string) error {
		return errors.New("no notification daemon")
	}))

	rep := d.Deliver("Rin Assistant", "Reminder: standup")

	assert.Error(t, rep.Alert)
	assert.Error(t, rep.Speech)
	assert.False(t, rep.Delivered())
}

func TestDeliverDisabledChannels(t *testing.T) {
	called := false
	d := NewDesktop(nil, false, zerolog.Nop(), WithAlertFunc(func(string, string) error {
		called = true
		return nil
	}))

	rep := d.Deliver("Rin Assistant", "Reminder: quiet")

	assert.False(t, called, "disabled alerts must not be attempted")
	assert.NoError(t, rep.Alert)
	assert.NoError(t, rep.Speech)
}
