// Package audio shells out to the platform's playback and capture
// commands. Binaries are discovered once at construction so a missing
// player surfaces immediately, not at notification time.
package audio

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

var playerCandidates = []string{"afplay", "mpv", "mpg123", "ffplay", "aplay", "paplay"}

var recorderCandidates = []string{"rec", "arecord"}

// Player plays an audio file on the default output device.
type Player struct {
	command string
	log     zerolog.Logger
}

// NewPlayer resolves the playback command. An explicit override wins;
// otherwise the first known player found on PATH is used.
func NewPlayer(override string, log zerolog.Logger) (*Player, error) {
	command, err := resolve(override, playerCandidates)
	if err != nil {
		return nil, fmt.Errorf("no audio player found: %w", err)
	}
	return &Player{
		command: command,
		log:     log.With().Str("component", "audio").Logger(),
	}, nil
}

// Play blocks until playback finishes or ctx is cancelled.
func (p *Player) Play(ctx context.Context, path string) error {
	args := []string{path}
	switch filepath.Base(p.command) {
	case "ffplay":
		args = []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}
	case "mpv":
		args = []string{"--no-video", "--really-quiet", path}
	case "mpg123":
		args = []string{"-q", path}
	}

	p.log.Debug().Str("player", p.command).Str("file", path).Msg("playing audio")
	cmd := exec.CommandContext(ctx, p.command, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("playback failed: %w: %s", err, output)
	}
	return nil
}

// Recorder captures microphone input to WAV files under dir.
type Recorder struct {
	command string
	dir     string
	log     zerolog.Logger
}

// NewRecorder resolves the capture command the same way NewPlayer does.
func NewRecorder(override, dir string, log zerolog.Logger) (*Recorder, error) {
	command, err := resolve(override, recorderCandidates)
	if err != nil {
		return nil, fmt.Errorf("no audio recorder found: %w", err)
	}
	return &Recorder{
		command: command,
		dir:     dir,
		log:     log.With().Str("component", "audio").Logger(),
	}, nil
}

// Record captures the given number of seconds and returns the file path.
func (r *Recorder) Record(ctx context.Context, seconds int) (string, error) {
	if seconds <= 0 {
		seconds = 5
	}

	path := filepath.Join(r.dir, fmt.Sprintf("rin_rec_%d.wav", time.Now().Unix()))

	var args []string
	switch filepath.Base(r.command) {
	case "rec":
		// sox frontend: 16 kHz mono, trim to the requested length
		args = []string{"-q", "-r", "16000", "-c", "1", path, "trim", "0", strconv.Itoa(seconds)}
	default: // arecord
		args = []string{"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-d", strconv.Itoa(seconds), path}
	}

	r.log.Info().Str("recorder", r.command).Int("seconds", seconds).Msg("recording")
	cmd := exec.CommandContext(ctx, r.command, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("recording failed: %w: %s", err, output)
	}
	return path, nil
}

func resolve(override string, candidates []string) (string, error) {
	if override != "" {
		return exec.LookPath(override)
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("none of %v on PATH (%s)", candidates, runtime.GOOS)
}
