package notify

import (
	"context"
	"fmt"

	"github.com/notexe/rin/internal/audio"
	"github.com/notexe/rin/internal/tts"
)

// Speech synthesizes notification text and plays it on the default output
// device. It implements Speaker.
type Speech struct {
	engine tts.Engine
	player *audio.Player
}

func NewSpeech(engine tts.Engine, player *audio.Player) *Speech {
	return &Speech{engine: engine, player: player}
}

func (s *Speech) Say(ctx context.Context, text string) error {
	path, err := s.engine.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if path == "" {
		// Engine spoke directly (platform voice command), nothing to play.
		return nil
	}
	if err := s.player.Play(ctx, path); err != nil {
		return fmt.Errorf("failed to play audio: %w", err)
	}
	return nil
}
