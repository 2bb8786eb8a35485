package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"PriceSentinel/internal/analysis"
)

// Config holds all application configuration.
type Config struct {
	Feed struct {
		Provider   string   `yaml:"provider"` // "alpaca" or "mock"
		StreamURL  string   `yaml:"stream_url"`
		DataURL    string   `yaml:"data_url"`
		APIKey     string   `yaml:"api_key"`
		APISecret  string   `yaml:"api_secret"`
		Symbols    []string `yaml:"symbols"`
		Timeframe  string   `yaml:"timeframe"`
		WarmupBars int      `yaml:"warmup_bars"`
	} `yaml:"feed"`
	Analysis struct {
		SwingDistance     int     `yaml:"swing_distance"`
		StructureWindow   int     `yaml:"structure_window"`
		KeyLevelTolerance float64 `yaml:"key_level_tolerance"`
	} `yaml:"analysis"`
	Risk struct {
		VolatilityLimit float64 `yaml:"volatility_limit"`
		VolumeDiscount  float64 `yaml:"volume_discount"`
		CooldownSeconds int     `yaml:"cooldown_seconds"`
	} `yaml:"risk"`
	Execution struct {
		Enabled       bool    `yaml:"enabled"`
		RiskFraction  float64 `yaml:"risk_fraction"`
		MinConfidence float64 `yaml:"min_confidence"`
	} `yaml:"execution"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		StatusCron string `yaml:"status_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
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
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Feed.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Feed.APISecret = v
	}
	if v := os.Getenv("ALPACA_STREAM_URL"); v != "" {
		cfg.Feed.StreamURL = v
	}
	if v := os.Getenv("FEED_PROVIDER"); v != "" {
		cfg.Feed.Provider = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Feed.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Feed.Provider == "" {
		cfg.Feed.Provider = "mock"
	}
	if len(cfg.Feed.Symbols) == 0 {
		cfg.Feed.Symbols = []string{"SPY"}
	}
	if cfg.Feed.Timeframe == "" {
		cfg.Feed.Timeframe = "1Min"
	}
	if cfg.Feed.WarmupBars == 0 {
		cfg.Feed.WarmupBars = 200
	}
	if cfg.Analysis.SwingDistance == 0 {
		cfg.Analysis.SwingDistance = 5
	}
	if cfg.Analysis.StructureWindow == 0 {
		cfg.Analysis.StructureWindow = 2
	}
	if cfg.Analysis.KeyLevelTolerance == 0 {
		cfg.Analysis.KeyLevelTolerance = 0.005
	}
	if cfg.Risk.VolatilityLimit == 0 {
		cfg.Risk.VolatilityLimit = 5.0
	}
	if cfg.Risk.VolumeDiscount == 0 {
		cfg.Risk.VolumeDiscount = 0.7
	}
	if cfg.Risk.CooldownSeconds == 0 {
		cfg.Risk.CooldownSeconds = 300
	}
	if cfg.Execution.RiskFraction == 0 {
		cfg.Execution.RiskFraction = 0.01
	}
	if cfg.Execution.MinConfidence == 0 {
		cfg.Execution.MinConfidence = 0.6
	}
	if cfg.Schedule.StatusCron == "" {
		cfg.Schedule.StatusCron = "0 */30 * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/price_sentinel.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Feed.Provider == "alpaca" {
		if c.Feed.APIKey == "" || c.Feed.APISecret == "" {
			return fmt.Errorf("feed.api_key and feed.api_secret are required for alpaca")
		}
	}
	if len(c.Feed.Symbols) == 0 {
		return fmt.Errorf("feed.symbols must not be empty")
	}
	if c.Risk.VolatilityLimit <= 0 {
		return fmt.Errorf("risk.volatility_limit must be positive")
	}
	if c.Risk.VolumeDiscount <= 0 || c.Risk.VolumeDiscount > 1 {
		return fmt.Errorf("risk.volume_discount must be in (0,1]")
	}
	if c.Execution.RiskFraction <= 0 || c.Execution.RiskFraction > 1 {
		return fmt.Errorf("execution.risk_fraction must be in (0,1]")
	}
	return nil
}

// AnalysisParams merges the analysis section over the stock thresholds.
func (c *Config) AnalysisParams() analysis.Params {
	p := analysis.DefaultParams()
	if c.Analysis.SwingDistance > 0 {
		p.SwingDistance = c.Analysis.SwingDistance
	}
	if c.Analysis.StructureWindow > 0 {
		p.StructureWindow = c.Analysis.StructureWindow
	}
	if c.Analysis.KeyLevelTolerance > 0 {
		p.KeyLevelTolerance = c.Analysis.KeyLevelTolerance
	}
	return p
}

func splitSymbols(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
