package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_DefaultsWhenAbsent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Timezone != DefaultTimezone {
		t.Errorf("timezone = %q, want %q", cfg.Timezone, DefaultTimezone)
	}
	if cfg.SampleAlpha != DefaultSampleAlpha {
		t.Errorf("alpha = %v, want %v", cfg.SampleAlpha, DefaultSampleAlpha)
	}
	if cfg.StatePath == "" || cfg.LexiconPath == "" {
		t.Errorf("paths not defaulted: %+v", cfg)
	}
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".starterbot")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := `{"timezone":"Europe/London","telegram":{"token":"tok","chatId":123}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Timezone != "Europe/London" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.Telegram.Token != "tok" || cfg.Telegram.ChatID != 123 {
		t.Errorf("telegram = %+v", cfg.Telegram)
	}
}

func TestLoadConfig_MalformedFileFails(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".starterbot")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{oops"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STARTERBOT_TELEGRAM_TOKEN", "env-token")
	t.Setenv("STARTERBOT_CHAT_ID", "456")
	t.Setenv("STARTERBOT_TIMEZONE", "Asia/Tokyo")
	t.Setenv("STARTERBOT_LEXICON_PATH", "/tmp/words.txt")
	t.Setenv("STARTERBOT_STATE_PATH", "/tmp/state.json")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.ChatID != 456 {
		t.Errorf("chat id = %d", cfg.Telegram.ChatID)
	}
	if cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.LexiconPath != "/tmp/words.txt" || cfg.StatePath != "/tmp/state.json" {
		t.Errorf("paths = %q, %q", cfg.LexiconPath, cfg.StatePath)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Telegram.Token = "saved"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if loaded.Telegram.Token != "saved" {
		t.Errorf("token = %q, want saved", loaded.Telegram.Token)
	}
}
