package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Rin", cfg.Assistant.Name)
	assert.Equal(t, ProviderDeepSeek, cfg.Provider)
	assert.Equal(t, "deepseek-chat", cfg.Model.Name)
	assert.Equal(t, 500, cfg.Model.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Model.Temperature, 0.001)
	assert.Equal(t, OverdueNotify, cfg.Reminders.Overdue)
	assert.Equal(t, "whisper", cfg.STT.Engine)
	assert.True(t, cfg.Notify.Alerts)
	assert.True(t, cfg.Notify.Speech)
	assert.Equal(t, 5, cfg.Search.Results)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
provider: ollama
model:
  name: llama3
  max_tokens: 256
reminders:
  overdue: complete
tts:
  engine: "off"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "llama3", cfg.Model.Name)
	assert.Equal(t, 256, cfg.Model.MaxTokens)
	assert.Equal(t, OverdueComplete, cfg.Reminders.Overdue)
	assert.Equal(t, "off", cfg.TTS.Engine)
	// untouched keys keep their defaults
	assert.Equal(t, "Rin", cfg.Assistant.Name)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RIN_PROVIDER", "ollama")
	t.Setenv("RIN_MODEL__NAME", "mistral")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "mistral", cfg.Model.Name)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "sk-test", cfg.TTS.OpenAI.APIKey, "speech key falls back to OPENAI_API_KEY")
	assert.Equal(t, "sk-test", cfg.STT.Whisper.APIKey)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		cfg.DeepSeek.APIKey = "key"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing deepseek key",
			mutate:  func(c *Config) { c.DeepSeek.APIKey = "" },
			wantErr: "DeepSeek API key",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "gemini" },
			wantErr: "unknown provider",
		},
		{
			name:    "bad overdue policy",
			mutate:  func(c *Config) { c.Reminders.Overdue = "drop" },
			wantErr: "overdue",
		},
		{
			name:    "bad tts engine",
			mutate:  func(c *Config) { c.TTS.Engine = "festival" },
			wantErr: "tts.engine",
		},
		{
			name:    "openai tts without key",
			mutate:  func(c *Config) { c.TTS.Engine = "openai"; c.TTS.OpenAI.APIKey = "" },
			wantErr: "tts.engine=openai",
		},
		{
			name:    "zero max tokens",
			mutate:  func(c *Config) { c.Model.MaxTokens = 0 },
			wantErr: "max_tokens",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Model.Temperature = 3.0 },
			wantErr: "temperature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".rin/rin.db"), expandPath("~/.rin/rin.db"))
	assert.Equal(t, "/tmp/rin.db", expandPath("/tmp/rin.db"))
	assert.Equal(t, "", expandPath(""))
}

func TestLoadMCPServersFromJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	content := `{"mcpServers": {"assistant": {"command": "mcp-assistant", "args": ["-db", "/tmp/rin.db"], "env": {"DEBUG": "1"}}}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := &Config{MCP: MCPConfig{ConfigFile: path}}
	require.NoError(t, cfg.LoadMCPServers())

	require.Len(t, cfg.MCP.Servers, 1)
	srv := cfg.MCP.Servers[0]
	assert.Equal(t, "assistant", srv.Name)
	assert.Equal(t, "mcp-assistant", srv.Command)
	assert.Equal(t, []string{"-db", "/tmp/rin.db"}, srv.Args)
	assert.Contains(t, srv.Env, "DEBUG=1")
	assert.True(t, cfg.MCP.Enabled)
}
