package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultTimezone    = "UTC"
	DefaultSampleAlpha = 2.0
)

type Config struct {
	Timezone    string         `json:"timezone"`
	LexiconPath string         `json:"lexiconPath"`
	StatePath   string         `json:"statePath"`
	WeightsPath string         `json:"weightsPath,omitempty"`
	SampleAlpha float64        `json:"sampleAlpha"`
	Telegram    TelegramConfig `json:"telegram"`
}

type TelegramConfig struct {
	Token     string   `json:"token"`
	ChatID    int64    `json:"chatId"`
	AllowFrom []string `json:"allowFrom"`
	Proxy     string   `json:"proxy,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Timezone:    DefaultTimezone,
		LexiconPath: filepath.Join(ConfigDir(), "words.txt"),
		StatePath:   filepath.Join(ConfigDir(), "data", "state.json"),
		SampleAlpha: DefaultSampleAlpha,
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".starterbot")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if token := os.Getenv("STARTERBOT_TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if chat := os.Getenv("STARTERBOT_CHAT_ID"); chat != "" {
		if parsed, err := strconv.ParseInt(chat, 10, 64); err == nil {
			cfg.Telegram.ChatID = parsed
		}
	}
	if tz := os.Getenv("STARTERBOT_TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}
	if path := os.Getenv("STARTERBOT_LEXICON_PATH"); path != "" {
		cfg.LexiconPath = path
	}
	if path := os.Getenv("STARTERBOT_STATE_PATH"); path != "" {
		cfg.StatePath = path
	}

	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.LexiconPath == "" {
		cfg.LexiconPath = DefaultConfig().LexiconPath
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultConfig().StatePath
	}
	if cfg.SampleAlpha <= 0 {
		cfg.SampleAlpha = DefaultSampleAlpha
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
