package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.coingecko.com", cfg.Price.BaseURL)
	assert.Equal(t, "enki-protocol", cfg.Price.AssetID)
	assert.Equal(t, "https://prod.api.enkixyz.com/", cfg.Points.Endpoint)
	assert.Equal(t, 2.68e9, cfg.Points.DefaultTotal)
	assert.Equal(t, 400_000.0, cfg.Reward.TotalPool)
	assert.Equal(t, 18.38, cfg.Reward.PeakPriceUSD)
	assert.Equal(t, "data/stakescope.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "info", cfg.Log.Level)

	// No presentation surface configured.
	assert.Error(t, cfg.Validate())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "42"
points:
  default_total: 3000000000
  cron: "0 */10 * * * *"
storage:
  state_file: data/state.json
fetch_timeout: 5s
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("PRICE_ASSET_ID", "bitcoin")
	t.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "bitcoin", cfg.Price.AssetID)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 3e9, cfg.Points.DefaultTotal)
	assert.Equal(t, "0 */10 * * * *", cfg.Points.Cron)
	assert.Equal(t, "data/state.json", cfg.Storage.StateFile)
	assert.Empty(t, cfg.Storage.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "telegram: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.HTTP.Addr = ":8080"
		cfg.applyDefaults()
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "token" }},
		{"no surface", func(c *Config) { c.HTTP.Addr = "" }},
		{"negative default total", func(c *Config) { c.Points.DefaultTotal = -1 }},
		{"negative pool", func(c *Config) { c.Reward.TotalPool = -1 }},
		{"negative timeout", func(c *Config) { c.FetchTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
