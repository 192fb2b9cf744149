package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// VenueConfig holds the per-venue endpoint. Injected explicitly so tests
// can point a controller at arbitrary endpoints deterministically.
type VenueConfig struct {
	WSURL string `yaml:"ws_url"`
}

// Config holds every application setting. Loaded once by LoadConfig and
// overridden from the environment for deploy-specific values.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Feed struct {
		Venue                string                 `yaml:"venue"`
		Symbol               string                 `yaml:"symbol"`
		MaxReconnectAttempts int                    `yaml:"max_reconnect_attempts"`
		Venues               map[string]VenueConfig `yaml:"venues"`
	} `yaml:"feed"`

	Synthetic struct {
		ReferencePrice decimal.Decimal `yaml:"reference_price"`
		PriceBand      float64         `yaml:"price_band"`
		SpreadRatio    float64         `yaml:"spread_ratio"`
		BaseLiquidity  float64         `yaml:"base_liquidity"`
	} `yaml:"synthetic"`

	ReferencePriceAPI struct {
		URL             string `yaml:"url"`
		PollIntervalSec int    `yaml:"poll_interval_sec"`
	} `yaml:"reference_price_api"`

	Simulator struct {
		ImpactWarnRatio      decimal.Decimal `yaml:"impact_warn_ratio"`
		LiquidityWarnFillPct decimal.Decimal `yaml:"liquidity_warn_fill_pct"`
	} `yaml:"simulator"`

	Bridge struct {
		NatsURL       string `yaml:"nats_url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"bridge"`

	Notify struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"notify"`

	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`

	Logging struct {
		Level      string `yaml:"level"`
		Dir        string `yaml:"dir"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Feed.Symbol == "" {
		return fmt.Errorf("feed symbol is required")
	}
	if len(c.Feed.Venues) == 0 {
		return fmt.Errorf("at least one venue is required")
	}
	if _, ok := c.Feed.Venues[c.Feed.Venue]; !ok {
		return fmt.Errorf("selected venue %q has no endpoint configured", c.Feed.Venue)
	}
	for name, v := range c.Feed.Venues {
		if !hasPrefix(v.WSURL, "ws://") && !hasPrefix(v.WSURL, "wss://") {
			return fmt.Errorf("invalid %s WS URL: %s", name, v.WSURL)
		}
	}
	if c.Feed.MaxReconnectAttempts < 0 {
		return fmt.Errorf("max reconnect attempts must be non-negative")
	}
	if c.Simulator.ImpactWarnRatio.IsNegative() || c.Simulator.LiquidityWarnFillPct.IsNegative() {
		return fmt.Errorf("simulator thresholds must be non-negative")
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv applies environment overrides for deploy-specific values
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("DEPTH_NATS_URL"); url != "" {
		cfg.Bridge.NatsURL = url
	}
	if url := os.Getenv("DEPTH_WEBHOOK_URL"); url != "" {
		cfg.Notify.WebhookURL = url
	}
	if venue := os.Getenv("DEPTH_VENUE"); venue != "" {
		cfg.Feed.Venue = venue
	}
	if symbol := os.Getenv("DEPTH_SYMBOL"); symbol != "" {
		cfg.Feed.Symbol = symbol
	}
}
