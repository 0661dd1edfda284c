package tts

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
)

// Command speaks through the platform voice command: `say` on macOS,
// `espeak` elsewhere. Both speak directly on the output device, so
// Synthesize returns no file path.
type Command struct {
	command string
	voice   string
	log     zerolog.Logger
}

func NewCommand(voice string, log zerolog.Logger) (*Command, error) {
	name := "espeak"
	if runtime.GOOS == "darwin" {
		name = "say"
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("voice command %s not found: %w", name, err)
	}

	return &Command{
		command: path,
		voice:   voice,
		log:     log.With().Str("component", "tts").Str("engine", "command").Logger(),
	}, nil
}

func (c *Command) Name() string { return "command" }

func (c *Command) Synthesize(ctx context.Context, text string) (string, error) {
	var args []string
	if c.voice != "" {
		args = append(args, "-v", c.voice)
	}
	args = append(args, text)

	c.log.Debug().Str("command", c.command).Int("textLen", len(text)).Msg("speaking")
	cmd := exec.CommandContext(ctx, c.command, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("voice command failed: %w: %s", err, output)
	}
	return "", nil
}
