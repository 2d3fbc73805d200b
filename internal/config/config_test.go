package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"BOT_TOKEN", "TELEGRAM_BOT_TOKEN", "CHANNEL_ID", "TELEGRAM_CHAT_ID",
		"HTTPS_PROXY", "TEAMS_FILE", "FONT_PATH", "SQLITE_PATH", "TIMEZONE"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Window.OpenAt != "10:00" || cfg.Window.CloseAt != "20:00" {
		t.Errorf("unexpected window defaults: %s-%s", cfg.Window.OpenAt, cfg.Window.CloseAt)
	}
	if cfg.Window.OpenJitter != time.Hour || cfg.Window.CloseJitter != 2*time.Minute {
		t.Errorf("unexpected jitter defaults: %v %v", cfg.Window.OpenJitter, cfg.Window.CloseJitter)
	}
	if cfg.Window.MinDelay != time.Minute || cfg.Window.MaxDelay != 78*time.Minute {
		t.Errorf("unexpected delay defaults: %v %v", cfg.Window.MinDelay, cfg.Window.MaxDelay)
	}
	if cfg.Ledger.MinAmount != 200 || cfg.Ledger.MaxAmount != 1500 {
		t.Errorf("unexpected amount defaults: %d %d", cfg.Ledger.MinAmount, cfg.Ledger.MaxAmount)
	}
	if cfg.Database.SQLitePath != "" {
		t.Errorf("sqlite should be opt-in, got %q", cfg.Database.SQLitePath)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
telegram:
  bot_token: file-token
  chat_id: "@file"
window:
  open_at: "09:30"
  open_jitter: 30m
ledger:
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHANNEL_ID", "@env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.BotToken != "file-token" {
		t.Errorf("expected file token, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.ChatID != "@env" {
		t.Errorf("expected env chat id, got %q", cfg.Telegram.ChatID)
	}
	if cfg.Window.OpenAt != "09:30" || cfg.Window.OpenJitter != 30*time.Minute {
		t.Errorf("window not read from file: %s %v", cfg.Window.OpenAt, cfg.Window.OpenJitter)
	}
	if cfg.Ledger.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Ledger.Timeout)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		cfg.Telegram.BotToken = "token"
		cfg.Telegram.ChatID = "@chan"
		cfg.Window.Timezone = "UTC"
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Telegram.BotToken = "" }},
		{"missing chat", func(c *Config) { c.Telegram.ChatID = "" }},
		{"bad timezone", func(c *Config) { c.Window.Timezone = "Mars/Olympus" }},
		{"bad open_at", func(c *Config) { c.Window.OpenAt = "25:99" }},
		{"inverted delays", func(c *Config) { c.Window.MaxDelay = 30 * time.Second }},
		{"inverted amounts", func(c *Config) { c.Ledger.MaxAmount = 100 }},
		{"bad cron", func(c *Config) { c.Schedule.ResumeCron = "every monday" }},
		{"bad share", func(c *Config) { c.Post.ShareRate = 2 }},
	}
	for _, tt := range tests {
		cfg := base()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestParseCron_NextMonday(t *testing.T) {
	sched, err := ParseCron("0 0 10 * * 1")
	if err != nil {
		t.Fatal(err)
	}
	sat := time.Date(2026, 10, 17, 14, 0, 0, 0, time.UTC)
	want := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	if got := sched.Next(sat); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
