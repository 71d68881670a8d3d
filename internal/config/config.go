package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/quantarc/alphabench/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Engine   EngineConfig           `mapstructure:"engine"`
	Data     DataConfig             `mapstructure:"data"`
	Broker   BrokerConfig           `mapstructure:"broker"`
	Universe UniverseConfig         `mapstructure:"universe"`
	Models   map[string]ModelConfig `mapstructure:"models"`
	Risk     RiskConfig             `mapstructure:"risk"`
	Storage  StorageConfig          `mapstructure:"storage"`
	Metrics  MetricsConfig          `mapstructure:"metrics"`
}

type EngineConfig struct {
	Resolution         string `mapstructure:"resolution"` // "minute", "hour", "daily"
	HistoryConcurrency int    `mapstructure:"history_concurrency"`
}

type DataConfig struct {
	Dir    string       `mapstructure:"dir"` // CSV data directory
	Stream StreamConfig `mapstructure:"stream"`
}

type StreamConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type BrokerConfig struct {
	Cash        float64 `mapstructure:"cash"`
	FeePerOrder float64 `mapstructure:"fee_per_order"`
}

type UniverseConfig struct {
	Model   string   `mapstructure:"model"` // "manual" or "magicformula"
	Symbols []string `mapstructure:"symbols"`

	CoarseCount    int     `mapstructure:"coarse_count"`
	FineCount      int     `mapstructure:"fine_count"`
	PortfolioCount int     `mapstructure:"portfolio_count"`
	MinMarketCap   float64 `mapstructure:"min_market_cap"`
	MinIPOAgeDays  int     `mapstructure:"min_ipo_age_days"`
}

type ModelConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Params  map[string]any `mapstructure:"params"`
}

type RiskConfig struct {
	// MaxPositionPercent caps any single target's absolute portfolio
	// percentage. Zero disables the cap.
	MaxPositionPercent float64 `mapstructure:"max_position_percent"`
}

type StorageConfig struct {
	Insights InsightStorageConfig `mapstructure:"insights"`
	Results  ResultStorageConfig  `mapstructure:"results"`
}

type InsightStorageConfig struct {
	Type    string `mapstructure:"type"` // "memory" or "postgres"
	DSN     string `mapstructure:"dsn"`
	MaxSize int    `mapstructure:"max_size"` // memory store capacity
}

type ResultStorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Resolution:         "daily",
			HistoryConcurrency: 8,
		},
		Data: DataConfig{
			Dir: "data",
		},
		Broker: BrokerConfig{
			Cash:        100_000,
			FeePerOrder: 0,
		},
		Universe: UniverseConfig{
			Model:          "manual",
			CoarseCount:    500,
			FineCount:      20,
			PortfolioCount: 10,
			MinMarketCap:   5e8,
			MinIPOAgeDays:  180,
		},
		Storage: StorageConfig{
			Insights: InsightStorageConfig{
				Type:    "memory",
				MaxSize: 10000,
			},
			Results: ResultStorageConfig{
				Type: "localfs",
				Path: "results",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Engine.Resolution {
	case "minute", "hour", "daily":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("resolution must be minute, hour or daily, got %q", c.Engine.Resolution))
	}

	if c.Engine.HistoryConcurrency < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("history_concurrency must be positive, got %d", c.Engine.HistoryConcurrency))
	}

	if c.Broker.Cash <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("broker cash must be positive, got %f", c.Broker.Cash))
	}
	if c.Broker.FeePerOrder < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fee_per_order cannot be negative, got %f", c.Broker.FeePerOrder))
	}

	switch c.Universe.Model {
	case "manual":
		// Symbols may be empty: pair-trading models contribute their
		// fixed legs to a manual universe at setup.
	case "magicformula":
		if c.Universe.CoarseCount <= 0 || c.Universe.FineCount <= 0 || c.Universe.PortfolioCount <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("magicformula universe counts must be positive"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown universe model %q", c.Universe.Model))
	}

	if c.Risk.MaxPositionPercent < 0 || c.Risk.MaxPositionPercent > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_position_percent must be between 0 and 1, got %f", c.Risk.MaxPositionPercent))
	}

	if c.Storage.Insights.Type == "postgres" && c.Storage.Insights.DSN == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("postgres insight storage requires dsn"))
	}
	if c.Storage.Results.Type == "s3" && c.Storage.Results.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("s3 result storage requires bucket"))
	}

	return nil
}

// Resolution maps the configured resolution string to a core.Resolution.
func (c *Config) Resolution() core.Resolution {
	switch c.Engine.Resolution {
	case "minute":
		return core.ResolutionMinute
	case "hour":
		return core.ResolutionHour
	default:
		return core.ResolutionDaily
	}
}
