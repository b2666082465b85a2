package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tradescape/internal/indicator"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Workspace struct {
		File string `yaml:"file"`
	} `yaml:"workspace"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Refresh struct {
		Cron string `yaml:"cron"`
	} `yaml:"refresh"`
	Provider struct {
		AlphaVantageKey string `yaml:"alpha_vantage_key"`
	} `yaml:"provider"`
	Indicators indicator.Config `yaml:"indicators"`
	Proxy      string           `yaml:"proxy"`
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
	if v := os.Getenv("TRADESCAPE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TRADESCAPE_WORKSPACE_FILE"); v != "" {
		cfg.Workspace.File = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Refresh.Cron = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.Provider.AlphaVantageKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8081"
	}
	if cfg.Workspace.File == "" {
		cfg.Workspace.File = "data/workspace.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/tradescape.db"
	}
	if cfg.Refresh.Cron == "" {
		cfg.Refresh.Cron = "0 */5 * * * *"
	}
	def := indicator.DefaultConfig()
	if cfg.Indicators.ShortWindow == 0 {
		cfg.Indicators.ShortWindow = def.ShortWindow
	}
	if cfg.Indicators.LongWindow == 0 {
		cfg.Indicators.LongWindow = def.LongWindow
	}
	if cfg.Indicators.BollWindow == 0 {
		cfg.Indicators.BollWindow = def.BollWindow
	}
	if cfg.Indicators.BollStdFactor == 0 {
		cfg.Indicators.BollStdFactor = def.BollStdFactor
	}
	if cfg.Indicators.RSIWindow == 0 {
		cfg.Indicators.RSIWindow = def.RSIWindow
	}
	if cfg.Indicators.MACDFast == 0 {
		cfg.Indicators.MACDFast = def.MACDFast
	}
	if cfg.Indicators.MACDSlow == 0 {
		cfg.Indicators.MACDSlow = def.MACDSlow
	}
	if cfg.Indicators.MACDSignal == 0 {
		cfg.Indicators.MACDSignal = def.MACDSignal
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Workspace.File == "" {
		return fmt.Errorf("workspace.file is required")
	}
	if c.Indicators.MACDFast >= c.Indicators.MACDSlow {
		return fmt.Errorf("indicators.macd_fast must be less than indicators.macd_slow")
	}
	for name, w := range map[string]int{
		"indicators.short_window": c.Indicators.ShortWindow,
		"indicators.long_window":  c.Indicators.LongWindow,
		"indicators.boll_window":  c.Indicators.BollWindow,
		"indicators.rsi_window":   c.Indicators.RSIWindow,
	} {
		if w <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
