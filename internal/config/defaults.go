package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"assistant": map[string]interface{}{
			"name":     "Rin",
			"data_dir": "~/.rin",
		},
		"provider": "deepseek",
		"deepseek": map[string]interface{}{
			"api_key":  "",
			"base_url": "https://api.deepseek.com",
			"timeout":  120,
		},
		"openai": map[string]interface{}{
			"api_key":  "",
			"base_url": "https://api.openai.com/v1",
			"timeout":  120,
		},
		"ollama": map[string]interface{}{
			"base_url": "http://localhost:11434",
			"timeout":  120,
		},
		"model": map[string]interface{}{
			"name":          "deepseek-chat",
			"max_tokens":    500,
			"temperature":   0.7,
			"system_prompt": "You are Rin, a helpful personal assistant. Be concise but thorough.",
		},
		"session": map[string]interface{}{
			"max_history":   50,
			"context_turns": 5,
		},
		"storage": map[string]interface{}{
			"path": "~/.rin/rin.db",
		},
		"reminders": map[string]interface{}{
			"overdue": OverdueNotify,
		},
		"notify": map[string]interface{}{
			"alerts": true,
			"speech": true,
		},
		"tts": map[string]interface{}{
			"engine": "command",
			"voice":  "",
			"openai": map[string]interface{}{
				"api_key":  "",
				"base_url": "https://api.openai.com/v1",
				"model":    "tts-1",
				"voice":    "alloy",
			},
		},
		"stt": map[string]interface{}{
			"engine": "whisper",
			"whisper": map[string]interface{}{
				"api_key":  "",
				"base_url": "https://api.openai.com/v1",
				"model":    "whisper-1",
			},
		},
		"audio": map[string]interface{}{
			"dir":            "~/.rin/audio",
			"player":         "",
			"recorder":       "",
			"record_seconds": 5,
		},
		"search": map[string]interface{}{
			"serpapi_key": "",
			"results":     5,
		},
		"telegram": map[string]interface{}{
			"token":   "",
			"chat_id": 0,
		},
		"mcp": map[string]interface{}{
			"enabled":     false,
			"config_file": "~/.rin/mcp.json",
		},
		"log": map[string]interface{}{
			"level":   "info",
			"file":    "~/.rin/logs/rin.log",
			"console": false,
		},
		"ui": map[string]interface{}{
			"colored_output":   true,
			"show_token_count": false,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.rin/config.yaml"
}

func GetDefaultMCPConfigPath() string {
	return "~/.rin/mcp.json"
}
