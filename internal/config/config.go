package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"IndexSentinel/internal/saver"
)

// Config holds all application configuration.
type Config struct {
	Index struct {
		Name         string `yaml:"name"`
		QuoteURL     string `yaml:"quote_url"`
		PrimeURL     string `yaml:"prime_url"`
		SymbolSuffix string `yaml:"symbol_suffix"`
	} `yaml:"index"`
	History struct {
		Provider    string `yaml:"provider"` // yahoo | financego | rest | mock
		Period      string `yaml:"period"`
		Concurrency int    `yaml:"concurrency"`
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		CacheDir    string `yaml:"cache_dir"`
		CacheFormat string `yaml:"cache_format"`
	} `yaml:"history"`
	Analytics struct {
		HighThreshold float64 `yaml:"high_threshold"`
		LowThreshold  float64 `yaml:"low_threshold"`
	} `yaml:"analytics"`
	Output struct {
		Dir        string `yaml:"dir"`
		ReportFile string `yaml:"report_file"`
	} `yaml:"output"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
		Timezone  string `yaml:"timezone"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then .env, then applies environment variable overrides.
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

	// .env never overrides variables already present in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("HISTORY_PROVIDER"); v != "" {
		cfg.History.Provider = v
	}
	if v := os.Getenv("HISTORY_API_KEY"); v != "" {
		cfg.History.APIKey = v
	}
	if v := os.Getenv("HISTORY_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.Concurrency = n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}

	// Defaults
	if cfg.Index.Name == "" {
		cfg.Index.Name = "NIFTY 50"
	}
	if cfg.Index.SymbolSuffix == "" {
		cfg.Index.SymbolSuffix = ".NS"
	}
	if cfg.History.Provider == "" {
		cfg.History.Provider = "yahoo"
	}
	if cfg.History.Period == "" {
		cfg.History.Period = "1y"
	}
	if cfg.History.Concurrency == 0 {
		cfg.History.Concurrency = 4
	}
	if cfg.History.CacheFormat == "" {
		cfg.History.CacheFormat = "parquet"
	}
	if cfg.Analytics.HighThreshold == 0 {
		cfg.Analytics.HighThreshold = 0.70
	}
	if cfg.Analytics.LowThreshold == 0 {
		cfg.Analytics.LowThreshold = 1.20
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "data"
	}
	if cfg.Output.ReportFile == "" {
		cfg.Output.ReportFile = "results.txt"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 45 15 * * 1-5"
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Asia/Kolkata"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = filepath.Join(cfg.Output.Dir, "index_sentinel.db")
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch strings.ToLower(c.History.Provider) {
	case "yahoo", "financego", "mock":
	case "rest":
		if c.History.BaseURL == "" {
			return fmt.Errorf("history.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("history.provider %q is not supported (use: yahoo, financego, rest, mock)", c.History.Provider)
	}
	if c.History.Concurrency < 1 {
		return fmt.Errorf("history.concurrency must be positive")
	}
	if c.History.CacheDir != "" && saver.NewCodec(c.History.CacheFormat) == nil {
		return fmt.Errorf("history.cache_format %q is not supported (use: csv, parquet, json)", c.History.CacheFormat)
	}
	if c.Analytics.HighThreshold <= 0 || c.Analytics.LowThreshold <= 0 {
		return fmt.Errorf("analytics thresholds must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	return nil
}

// ReportPath is where the text report is written.
func (c *Config) ReportPath() string {
	return filepath.Join(c.Output.Dir, c.Output.ReportFile)
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
