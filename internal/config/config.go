package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"StakeScope/internal/collector"
	"StakeScope/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`
	Price struct {
		BaseURL string `yaml:"base_url" env:"PRICE_BASE_URL"`
		AssetID string `yaml:"asset_id" env:"PRICE_ASSET_ID"`
		Cron    string `yaml:"cron" env:"PRICE_CRON"`
	} `yaml:"price"`
	Points struct {
		Endpoint     string  `yaml:"endpoint" env:"POINTS_ENDPOINT"`
		Cron         string  `yaml:"cron" env:"POINTS_CRON"`
		DefaultTotal float64 `yaml:"default_total" env:"POINTS_DEFAULT_TOTAL"`
	} `yaml:"points"`
	Reward struct {
		TotalPool    float64 `yaml:"total_pool" env:"REWARD_TOTAL_POOL"`
		PeakPriceUSD float64 `yaml:"peak_price_usd" env:"REWARD_PEAK_PRICE_USD"`
	} `yaml:"reward"`
	Storage struct {
		StateFile  string `yaml:"state_file" env:"STATE_FILE"`
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	} `yaml:"storage"`
	HTTP struct {
		Addr string `yaml:"addr" env:"HTTP_ADDR"`
	} `yaml:"http"`
	Log struct {
		Level         string `yaml:"level" env:"LOG_LEVEL"`
		HumanFriendly bool   `yaml:"human_friendly" env:"LOG_HUMAN_FRIENDLY"`
		File          string `yaml:"file" env:"LOG_FILE"`
		MaxSizeMB     int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
		MaxBackups    int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
	} `yaml:"log"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	Proxy        string        `yaml:"proxy" env:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
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

	// Unset variables leave file values untouched.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Price.BaseURL == "" {
		c.Price.BaseURL = collector.DefaultCoinGeckoURL
	}
	if c.Price.AssetID == "" {
		c.Price.AssetID = "enki-protocol"
	}
	if c.Points.Endpoint == "" {
		c.Points.Endpoint = collector.DefaultPointsEndpoint
	}
	if c.Points.DefaultTotal == 0 {
		c.Points.DefaultTotal = 2.68e9
	}
	if c.Reward.TotalPool == 0 {
		c.Reward.TotalPool = model.DefaultRewardConstants.TotalRewardPool
	}
	if c.Reward.PeakPriceUSD == 0 {
		c.Reward.PeakPriceUSD = model.DefaultRewardConstants.PeakPriceUSD
	}
	if c.Storage.SQLitePath == "" && c.Storage.StateFile == "" {
		c.Storage.SQLitePath = "data/stakescope.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 15 * time.Second
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	telegram := c.Telegram.BotToken != "" || c.Telegram.ChatID != ""
	if telegram && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	if !telegram && c.HTTP.Addr == "" {
		return errors.New("either telegram or http.addr must be configured")
	}
	if c.Price.AssetID == "" {
		return errors.New("price.asset_id is required")
	}
	if c.Points.Endpoint == "" {
		return errors.New("points.endpoint is required")
	}
	if c.Points.DefaultTotal <= 0 {
		return errors.New("points.default_total must be positive")
	}
	if c.Reward.TotalPool <= 0 {
		return errors.New("reward.total_pool must be positive")
	}
	if c.Reward.PeakPriceUSD <= 0 {
		return errors.New("reward.peak_price_usd must be positive")
	}
	if c.FetchTimeout < 0 {
		return errors.New("fetch_timeout must not be negative")
	}
	return nil
}

// TelegramEnabled reports whether the Telegram front end is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// RewardConstants returns the configured airdrop parameters.
func (c *Config) RewardConstants() model.RewardConstants {
	return model.RewardConstants{
		TotalRewardPool: c.Reward.TotalPool,
		PeakPriceUSD:    c.Reward.PeakPriceUSD,
	}
}
