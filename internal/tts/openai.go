package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/notexe/rin/internal/config"
)

// OpenAI synthesizes speech through the /v1/audio/speech endpoint and
// writes the returned MP3 under the audio directory.
type OpenAI struct {
	apiKey   string
	baseURL  string
	model    string
	voice    string
	audioDir string
	client   *http.Client
	log      zerolog.Logger
}

func NewOpenAI(cfg config.OpenAITTSConfig, audioDir string, log zerolog.Logger) *OpenAI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "tts-1"
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "alloy"
	}

	return &OpenAI{
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		model:    model,
		voice:    voice,
		audioDir: audioDir,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log.With().Str("component", "tts").Str("engine", "openai").Logger(),
	}
}

func (o *OpenAI) Name() string { return "openai" }

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format,omitempty"`
}

func (o *OpenAI) Synthesize(ctx context.Context, text string) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key is required for speech synthesis")
	}

	body, err := json.Marshal(speechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create speech request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("speech API error (status %d): %s", resp.StatusCode, respBody)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}

	path := filepath.Join(o.audioDir, fmt.Sprintf("rin_tts_%d.mp3", time.Now().Unix()))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	o.log.Debug().Int("bytes", len(audio)).Dur("took", time.Since(start)).Str("file", path).Msg("synthesized")
	return path, nil
}
