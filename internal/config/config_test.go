package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "NIFTY 50", cfg.Index.Name)
	assert.Equal(t, ".NS", cfg.Index.SymbolSuffix)
	assert.Equal(t, "yahoo", cfg.History.Provider)
	assert.Equal(t, "1y", cfg.History.Period)
	assert.Equal(t, 4, cfg.History.Concurrency)
	assert.Equal(t, 0.70, cfg.Analytics.HighThreshold)
	assert.Equal(t, 1.20, cfg.Analytics.LowThreshold)
	assert.Equal(t, filepath.Join("data", "results.txt"), cfg.ReportPath())
	assert.Equal(t, filepath.Join("data", "index_sentinel.db"), cfg.Database.SQLitePath)
	assert.False(t, cfg.TelegramEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
index:
  name: "NIFTY NEXT 50"
  symbol_suffix: ".NS"
history:
  provider: financego
  period: 6mo
  concurrency: 2
analytics:
  high_threshold: 0.6
output:
  dir: out
telegram:
  bot_token: from-yaml
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("HISTORY_CONCURRENCY", "8")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "NIFTY NEXT 50", cfg.Index.Name)
	assert.Equal(t, "financego", cfg.History.Provider)
	assert.Equal(t, "6mo", cfg.History.Period)
	assert.Equal(t, 8, cfg.History.Concurrency)
	assert.Equal(t, 0.6, cfg.Analytics.HighThreshold)
	assert.Equal(t, 1.20, cfg.Analytics.LowThreshold)
	assert.Equal(t, "from-env", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, filepath.Join("out", "results.txt"), cfg.ReportPath())
	assert.True(t, cfg.TelegramEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "index: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.History.Provider = "bloomberg" }},
		{"rest without base url", func(c *Config) { c.History.Provider = "rest" }},
		{"zero concurrency", func(c *Config) { c.History.Concurrency = 0 }},
		{"bad cache format", func(c *Config) { c.History.CacheDir = "cache"; c.History.CacheFormat = "xlsx" }},
		{"negative threshold", func(c *Config) { c.Analytics.HighThreshold = -1 }},
		{"telegram half configured", func(c *Config) { c.Telegram.BotToken = "t" }},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
