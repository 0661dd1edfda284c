// Package tts turns notification and reply text into audio. Two engines:
// the OpenAI speech API and the platform voice command (say/espeak).
package tts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/notexe/rin/internal/config"
)

// Engine synthesizes speech from text. Synthesize returns the path of
// the audio file it wrote, or "" when the engine spoke directly through
// the system voice and there is nothing to play.
type Engine interface {
	Synthesize(ctx context.Context, text string) (string, error)
	Name() string
}

// New builds the configured engine. Returns nil for engine "off";
// callers treat a nil engine as the spoken channel being disabled.
func New(cfg config.TTSConfig, audioDir string, log zerolog.Logger) (Engine, error) {
	switch cfg.Engine {
	case "openai":
		return NewOpenAI(cfg.OpenAI, audioDir, log), nil
	case "command":
		return NewCommand(cfg.Voice, log)
	case "off", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tts engine: %s", cfg.Engine)
	}
}
