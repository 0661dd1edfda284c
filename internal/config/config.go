package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Provider type constants (duplicated from api package to avoid import cycle)
const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
)

// Overdue policy for reminders discovered past due at startup.
const (
	OverdueNotify   = "notify"
	OverdueComplete = "complete"
)

type Config struct {
	Assistant AssistantConfig `koanf:"assistant"`
	Provider  string          `koanf:"provider"`
	DeepSeek  DeepSeekConfig  `koanf:"deepseek"`
	OpenAI    OpenAIConfig    `koanf:"openai"`
	Ollama    OllamaConfig    `koanf:"ollama"`
	Model     ModelConfig     `koanf:"model"`
	Session   SessionConfig   `koanf:"session"`
	Storage   StorageConfig   `koanf:"storage"`
	Reminders RemindersConfig `koanf:"reminders"`
	Notify    NotifyConfig    `koanf:"notify"`
	TTS       TTSConfig       `koanf:"tts"`
	STT       STTConfig       `koanf:"stt"`
	Audio     AudioConfig     `koanf:"audio"`
	Search    SearchConfig    `koanf:"search"`
	Telegram  TelegramConfig  `koanf:"telegram"`
	MCP       MCPConfig       `koanf:"mcp"`
	Log       LogConfig       `koanf:"log"`
	UI        UIConfig        `koanf:"ui"`
}

type AssistantConfig struct {
	Name    string `koanf:"name"`
	DataDir string `koanf:"data_dir"`
}

type DeepSeekConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type OllamaConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type ModelConfig struct {
	Name         string  `koanf:"name"`
	MaxTokens    int     `koanf:"max_tokens"`
	Temperature  float64 `koanf:"temperature"`
	SystemPrompt string  `koanf:"system_prompt"`
}

type SessionConfig struct {
	MaxHistory   int `koanf:"max_history"`
	ContextTurns int `koanf:"context_turns"` // persisted interactions prepended as chat context
}

type StorageConfig struct {
	Path string `koanf:"path"`
}

type RemindersConfig struct {
	Overdue string `koanf:"overdue"` // notify | complete
}

type NotifyConfig struct {
	Alerts bool `koanf:"alerts"`
	Speech bool `koanf:"speech"`
}

type TTSConfig struct {
	Engine string          `koanf:"engine"` // command | openai | off
	Voice  string          `koanf:"voice"`
	OpenAI OpenAITTSConfig `koanf:"openai"`
}

type OpenAITTSConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	Voice   string `koanf:"voice"`
}

type STTConfig struct {
	Engine  string        `koanf:"engine"` // whisper | off
	Whisper WhisperConfig `koanf:"whisper"`
}

type WhisperConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type AudioConfig struct {
	Dir           string `koanf:"dir"`
	Player        string `koanf:"player"`   // override playback command
	Recorder      string `koanf:"recorder"` // override capture command
	RecordSeconds int    `koanf:"record_seconds"`
}

type SearchConfig struct {
	SerpAPIKey string `koanf:"serpapi_key"`
	Results    int    `koanf:"results"`
}

type TelegramConfig struct {
	Token  string `koanf:"token"`
	ChatID int64  `koanf:"chat_id"` // 0 allows any chat
}

type LogConfig struct {
	Level   string `koanf:"level"`
	File    string `koanf:"file"`
	Console bool   `koanf:"console"`
}

type UIConfig struct {
	ColoredOutput  bool `koanf:"colored_output"`
	ShowTokenCount bool `koanf:"show_token_count"`
}

type MCPConfig struct {
	Enabled    bool              `koanf:"enabled"`
	ConfigFile string            `koanf:"config_file"` // Path to mcp.json (default: ~/.rin/mcp.json)
	Servers    []MCPServerConfig `koanf:"servers"`     // Inline servers (YAML format)
}

type MCPServerConfig struct {
	Name    string            `koanf:"name" json:"-"` // Name comes from JSON key
	Command string            `koanf:"command" json:"command"`
	Args    []string          `koanf:"args" json:"args"`
	Env     []string          `koanf:"env" json:"-"`           // YAML format: ["KEY=value"]
	EnvMap  map[string]string `koanf:"-" json:"env,omitempty"` // JSON format: {"KEY": "value"}
}

// MCPJSONConfig represents the Claude Desktop-style JSON config format.
// File: ~/.rin/mcp.json
//
// Example:
//
//	{
//	  "mcpServers": {
//	    "assistant": {
//	      "command": "mcp-assistant",
//	      "args": []
//	    }
//	  }
//	}
type MCPJSONConfig struct {
	MCPServers map[string]MCPServerConfig `json:"mcpServers"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// RIN_MODEL__NAME=... overrides model.name, and so on.
	if err := k.Load(env.Provider("RIN_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "RIN_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Well-known credential variables, same names the services themselves document.
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		k.Set("deepseek.api_key", key)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		k.Set("openai.api_key", key)
		if k.String("tts.openai.api_key") == "" {
			k.Set("tts.openai.api_key", key)
		}
		if k.String("stt.whisper.api_key") == "" {
			k.Set("stt.whisper.api_key", key)
		}
	}
	if key := os.Getenv("SERPAPI_KEY"); key != "" {
		k.Set("search.serpapi_key", key)
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		k.Set("telegram.token", token)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Assistant.DataDir = expandPath(cfg.Assistant.DataDir)
	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Audio.Dir = expandPath(cfg.Audio.Dir)
	cfg.Log.File = expandPath(cfg.Log.File)

	// Load MCP servers from JSON config file
	if err := cfg.LoadMCPServers(); err != nil {
		// Log warning but don't fail - MCP is optional
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderDeepSeek:
		if c.DeepSeek.APIKey == "" {
			return fmt.Errorf("DeepSeek API key is required (set DEEPSEEK_API_KEY or add to config file)")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or add to config file)")
		}
	case ProviderOllama:
		if c.Ollama.BaseURL == "" {
			c.Ollama.BaseURL = "http://localhost:11434"
		}
	default:
		return fmt.Errorf("unknown provider: %s (supported: %s, %s, %s)",
			c.Provider, ProviderDeepSeek, ProviderOpenAI, ProviderOllama)
	}

	if c.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}

	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	if c.Session.MaxHistory <= 0 {
		return fmt.Errorf("max_history must be positive")
	}

	switch c.Reminders.Overdue {
	case OverdueNotify, OverdueComplete:
	default:
		return fmt.Errorf("unknown reminders.overdue policy: %s (supported: %s, %s)",
			c.Reminders.Overdue, OverdueNotify, OverdueComplete)
	}

	switch c.TTS.Engine {
	case "command", "openai", "off":
	default:
		return fmt.Errorf("unknown tts.engine: %s (supported: command, openai, off)", c.TTS.Engine)
	}
	if c.TTS.Engine == "openai" && c.TTS.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required for tts.engine=openai")
	}

	switch c.STT.Engine {
	case "whisper", "off":
	default:
		return fmt.Errorf("unknown stt.engine: %s (supported: whisper, off)", c.STT.Engine)
	}

	return nil
}

// EnsureDirs creates the data, audio and log directories if missing.
func (c *Config) EnsureDirs() error {
	dirs := []string{c.Assistant.DataDir, c.Audio.Dir}
	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}
	if c.Storage.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Storage.Path))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ProviderConfig contains provider-specific configuration for the API package.
type ProviderConfig struct {
	Type     string
	DeepSeek DeepSeekConfig
	OpenAI   OpenAIConfig
	Ollama   OllamaConfig
	Model    ModelSettings
}

// ModelSettings contains model parameters used by all providers.
type ModelSettings struct {
	Name        string
	MaxTokens   int
	Temperature float64
}

// GetProviderConfig returns the provider configuration for the API package.
func (c *Config) GetProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		Type:     c.Provider,
		DeepSeek: c.DeepSeek,
		OpenAI:   c.OpenAI,
		Ollama:   c.Ollama,
		Model: ModelSettings{
			Name:        c.Model.Name,
			MaxTokens:   c.Model.MaxTokens,
			Temperature: c.Model.Temperature,
		},
	}
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}

// LoadMCPServers loads MCP server configuration from the JSON config file.
// It merges with any servers defined in the YAML config.
func (c *Config) LoadMCPServers() error {
	configFile := c.MCP.ConfigFile
	if configFile == "" {
		configFile = GetDefaultMCPConfigPath()
	}
	configFile = expandPath(configFile)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			// No JSON config file, just use YAML servers (if any)
			return nil
		}
		return fmt.Errorf("failed to read MCP config file: %w", err)
	}

	var jsonConfig MCPJSONConfig
	if err := json.Unmarshal(data, &jsonConfig); err != nil {
		return fmt.Errorf("failed to parse MCP config file %s: %w", configFile, err)
	}

	for name, server := range jsonConfig.MCPServers {
		server.Name = name

		if server.EnvMap != nil && len(server.Env) == 0 {
			server.Env = make([]string, 0, len(server.EnvMap))
			for k, v := range server.EnvMap {
				server.Env = append(server.Env, k+"="+v)
			}
		}

		c.MCP.Servers = append(c.MCP.Servers, server)
	}

	if len(c.MCP.Servers) > 0 {
		c.MCP.Enabled = true
	}

	return nil
}
