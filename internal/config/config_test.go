package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quantarc/alphabench/internal/core"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
engine:
  resolution: hour
  history_concurrency: 4

broker:
  cash: 250000
  fee_per_order: 1.5

universe:
  model: manual
  symbols: ["SPY", "QQQ"]

models:
  lowvol:
    enabled: true

storage:
  insights:
    type: memory
    max_size: 500
  results:
    type: localfs
    path: "/tmp/alphabench/results"
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Engine.Resolution != "hour" {
		t.Errorf("expected resolution hour, got %s", cfg.Engine.Resolution)
	}
	if cfg.Broker.Cash != 250000 {
		t.Errorf("expected cash 250000, got %f", cfg.Broker.Cash)
	}
	if len(cfg.Universe.Symbols) != 2 {
		t.Errorf("expected 2 symbols, got %v", cfg.Universe.Symbols)
	}
	if !cfg.Models["lowvol"].Enabled {
		t.Error("expected lowvol model enabled")
	}
	if cfg.Storage.Insights.MaxSize != 500 {
		t.Errorf("expected max_size 500, got %d", cfg.Storage.Insights.MaxSize)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_INSIGHT_DSN", "postgres://localhost:5432/alphabench")

	content := []byte(`
storage:
  insights:
    type: postgres
    dsn: "${TEST_INSIGHT_DSN}"
`)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.Insights.DSN != "postgres://localhost:5432/alphabench" {
		t.Errorf("expected expanded dsn, got %s", cfg.Storage.Insights.DSN)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Engine.Resolution != "daily" {
		t.Errorf("expected default resolution daily, got %s", cfg.Engine.Resolution)
	}
	if cfg.Broker.Cash != 100_000 {
		t.Errorf("expected default cash 100000, got %f", cfg.Broker.Cash)
	}
	if cfg.Storage.Insights.Type != "memory" {
		t.Errorf("expected default insight storage memory, got %s", cfg.Storage.Insights.Type)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return Defaults() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "bad resolution",
			mutate:  func(c *Config) { c.Engine.Resolution = "weekly" },
			wantErr: true,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Engine.HistoryConcurrency = 0 },
			wantErr: true,
		},
		{
			name:    "negative cash",
			mutate:  func(c *Config) { c.Broker.Cash = -1 },
			wantErr: true,
		},
		{
			name:    "negative fee",
			mutate:  func(c *Config) { c.Broker.FeePerOrder = -0.5 },
			wantErr: true,
		},
		{
			name:    "unknown universe model",
			mutate:  func(c *Config) { c.Universe.Model = "astrology" },
			wantErr: true,
		},
		{
			name: "magicformula zero counts",
			mutate: func(c *Config) {
				c.Universe.Model = "magicformula"
				c.Universe.FineCount = 0
			},
			wantErr: true,
		},
		{
			name:    "risk out of range",
			mutate:  func(c *Config) { c.Risk.MaxPositionPercent = 1.5 },
			wantErr: true,
		},
		{
			name: "postgres without dsn",
			mutate: func(c *Config) {
				c.Storage.Insights.Type = "postgres"
				c.Storage.Insights.DSN = ""
			},
			wantErr: true,
		},
		{
			name: "s3 without bucket",
			mutate: func(c *Config) {
				c.Storage.Results.Type = "s3"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Resolution(t *testing.T) {
	cfg := Defaults()

	cfg.Engine.Resolution = "minute"
	if cfg.Resolution() != core.ResolutionMinute {
		t.Errorf("got %s", cfg.Resolution())
	}
	cfg.Engine.Resolution = "hour"
	if cfg.Resolution() != core.ResolutionHour {
		t.Errorf("got %s", cfg.Resolution())
	}
	cfg.Engine.Resolution = "daily"
	if cfg.Resolution() != core.ResolutionDaily {
		t.Errorf("got %s", cfg.Resolution())
	}
}
