package config

import (
	"fmt"
	"os"
	"time"

	"TransferCast/internal/model"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Ledger struct {
		Endpoint        string        `yaml:"endpoint"`
		ContractAddress string        `yaml:"contract_address"`
		Limit           int           `yaml:"limit"`
		Timeout         time.Duration `yaml:"timeout"`
		MinAmount       int64         `yaml:"min_amount"`
		MaxAmount       int64         `yaml:"max_amount"`
	} `yaml:"ledger"`
	Window struct {
		Timezone    string        `yaml:"timezone"`
		OpenAt      string        `yaml:"open_at"`
		OpenJitter  time.Duration `yaml:"open_jitter"`
		CloseAt     string        `yaml:"close_at"`
		CloseJitter time.Duration `yaml:"close_jitter"`
		MinDelay    time.Duration `yaml:"min_delay"`
		MaxDelay    time.Duration `yaml:"max_delay"`
	} `yaml:"window"`
	Schedule struct {
		ResumeCron   string `yaml:"resume_cron"`
		RolloverCron string `yaml:"rollover_cron"`
	} `yaml:"schedule"`
	Post struct {
		ExplorerURL string  `yaml:"explorer_url"`
		ShareRate   float64 `yaml:"share_rate"`
		TeamsFile   string  `yaml:"teams_file"`
	} `yaml:"post"`
	Render struct {
		FontPath string `yaml:"font_path"`
		Width    int    `yaml:"width"`
		Height   int    `yaml:"height"`
	} `yaml:"render"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	for _, key := range []string{"BOT_TOKEN", "TELEGRAM_BOT_TOKEN"} {
		if v := os.Getenv(key); v != "" {
			cfg.Telegram.BotToken = v
		}
	}
	for _, key := range []string{"CHANNEL_ID", "TELEGRAM_CHAT_ID"} {
		if v := os.Getenv(key); v != "" {
			cfg.Telegram.ChatID = v
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TEAMS_FILE"); v != "" {
		cfg.Post.TeamsFile = v
	}
	if v := os.Getenv("FONT_PATH"); v != "" {
		cfg.Render.FontPath = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Window.Timezone = v
	}

	// Defaults
	if cfg.Ledger.Endpoint == "" {
		cfg.Ledger.Endpoint = "https://apilist.tronscan.org/api/token_trc20/transfers"
	}
	if cfg.Ledger.ContractAddress == "" {
		cfg.Ledger.ContractAddress = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	}
	if cfg.Ledger.Limit == 0 {
		cfg.Ledger.Limit = 100
	}
	if cfg.Ledger.Timeout == 0 {
		cfg.Ledger.Timeout = 10 * time.Second
	}
	if cfg.Ledger.MinAmount == 0 {
		cfg.Ledger.MinAmount = 200
	}
	if cfg.Ledger.MaxAmount == 0 {
		cfg.Ledger.MaxAmount = 1500
	}
	if cfg.Window.Timezone == "" {
		cfg.Window.Timezone = "Europe/Kyiv"
	}
	if cfg.Window.OpenAt == "" {
		cfg.Window.OpenAt = "10:00"
	}
	if cfg.Window.OpenJitter == 0 {
		cfg.Window.OpenJitter = 60 * time.Minute
	}
	if cfg.Window.CloseAt == "" {
		cfg.Window.CloseAt = "20:00"
	}
	if cfg.Window.CloseJitter == 0 {
		cfg.Window.CloseJitter = 2 * time.Minute
	}
	if cfg.Window.MinDelay == 0 {
		cfg.Window.MinDelay = 1 * time.Minute
	}
	if cfg.Window.MaxDelay == 0 {
		cfg.Window.MaxDelay = 78 * time.Minute
	}
	if cfg.Schedule.ResumeCron == "" {
		cfg.Schedule.ResumeCron = "0 0 10 * * 1"
	}
	if cfg.Schedule.RolloverCron == "" {
		cfg.Schedule.RolloverCron = "0 0 10 * * *"
	}
	if cfg.Post.ExplorerURL == "" {
		cfg.Post.ExplorerURL = "https://tronscan.org/#/transaction/"
	}
	if cfg.Post.ShareRate == 0 {
		cfg.Post.ShareRate = 0.45
	}
	if cfg.Post.TeamsFile == "" {
		cfg.Post.TeamsFile = "teams.txt"
	}
	if cfg.Render.Width == 0 {
		cfg.Render.Width = 1024
	}
	if cfg.Render.Height == 0 {
		cfg.Render.Height = 512
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := model.ParseTimeOfDay(c.Window.OpenAt); err != nil {
		return fmt.Errorf("window.open_at: %w", err)
	}
	if _, err := model.ParseTimeOfDay(c.Window.CloseAt); err != nil {
		return fmt.Errorf("window.close_at: %w", err)
	}
	if c.Window.OpenJitter < 0 || c.Window.CloseJitter < 0 {
		return fmt.Errorf("window jitter must not be negative")
	}
	if c.Window.MinDelay < time.Minute || c.Window.MaxDelay < c.Window.MinDelay {
		return fmt.Errorf("window delays must satisfy 1m <= min_delay <= max_delay")
	}
	if c.Ledger.MinAmount <= 0 || c.Ledger.MaxAmount < c.Ledger.MinAmount {
		return fmt.Errorf("ledger amounts must satisfy 0 < min_amount <= max_amount")
	}
	if _, err := ParseCron(c.Schedule.ResumeCron); err != nil {
		return fmt.Errorf("schedule.resume_cron: %w", err)
	}
	if _, err := ParseCron(c.Schedule.RolloverCron); err != nil {
		return fmt.Errorf("schedule.rollover_cron: %w", err)
	}
	if c.Post.ShareRate <= 0 || c.Post.ShareRate > 1 {
		return fmt.Errorf("post.share_rate must be in (0, 1]")
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive")
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Window.Timezone)
	if err != nil {
		return nil, fmt.Errorf("window.timezone: %w", err)
	}
	return loc, nil
}

// ParseCron parses a six-field (seconds first) cron expression.
func ParseCron(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser.Parse(spec)
}
