package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/quantarc/alphabench/internal/alpha"
	"github.com/quantarc/alphabench/internal/alpha/etfdecay"
	"github.com/quantarc/alphabench/internal/alpha/lowvol"
	"github.com/quantarc/alphabench/internal/alpha/lunchbreak"
	"github.com/quantarc/alphabench/internal/alpha/magicformula"
	"github.com/quantarc/alphabench/internal/alpha/shareclass"
	"github.com/quantarc/alphabench/internal/broker/paper"
	"github.com/quantarc/alphabench/internal/config"
	"github.com/quantarc/alphabench/internal/engine"
	"github.com/quantarc/alphabench/internal/execution"
	"github.com/quantarc/alphabench/internal/feed"
	"github.com/quantarc/alphabench/internal/metrics"
	"github.com/quantarc/alphabench/internal/portfolio"
	"github.com/quantarc/alphabench/internal/risk"
	"github.com/quantarc/alphabench/internal/storage/insight"
	"github.com/quantarc/alphabench/internal/storage/results"
	"github.com/quantarc/alphabench/internal/universe"
	"go.uber.org/zap"
)

// components holds everything a command needs after wiring.
type components struct {
	cfg      *config.Config
	provider *feed.CSVProvider
	feeds    *feed.Registry
	broker   *paper.Broker
	engine   *engine.Engine
	alphas   *alpha.Engine
	models   []string
	store    insight.Store
	archiver *results.Archiver
	metrics  *metrics.Registry
	closers  []func()
}

func (c *components) close() {
	for _, fn := range c.closers {
		fn()
	}
}

// loadConfig reads the config file or falls back to defaults.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// setup wires the full engine stack from configuration.
func setup(ctx context.Context, cfg *config.Config, log *zap.Logger) (*components, error) {
	provider, err := feed.NewCSVProvider(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("loading data: %w", err)
	}

	feeds := feed.NewRegistry()
	feeds.Register(provider)

	alphas := alpha.NewEngine(log)
	modelNames, err := registerModels(alphas, cfg.Models)
	if err != nil {
		return nil, err
	}
	if len(modelNames) == 0 {
		return nil, fmt.Errorf("no alpha models enabled")
	}

	selection, err := buildSelection(cfg, alphas)
	if err != nil {
		return nil, err
	}

	b := paper.New(cfg.Broker.Cash, cfg.Broker.FeePerOrder)
	if err := b.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting broker: %w", err)
	}

	var riskModel risk.Model = risk.NewNull()
	if cfg.Risk.MaxPositionPercent > 0 {
		riskModel = risk.NewMaxPositionPercent(cfg.Risk.MaxPositionPercent)
	}

	eng := engine.New(
		engine.Options{
			Resolution:         cfg.Resolution(),
			HistoryConcurrency: cfg.Engine.HistoryConcurrency,
		},
		selection,
		alphas,
		portfolio.NewEqualWeighting(),
		riskModel,
		execution.NewImmediate(b, log),
		b,
		provider,
		log,
	)

	comps := &components{
		cfg:      cfg,
		provider: provider,
		feeds:    feeds,
		broker:   b,
		engine:   eng,
		alphas:   alphas,
		models:   modelNames,
	}

	if cfg.Universe.Model == "magicformula" {
		eng.SetFundamentals(provider)
	}

	store, closer, err := buildInsightStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	comps.store = store
	if closer != nil {
		comps.closers = append(comps.closers, closer)
	}
	eng.SetInsightStore(store)

	backend, err := buildResultBackend(cfg)
	if err != nil {
		return nil, err
	}
	comps.archiver = results.NewArchiver(backend)

	if cfg.Metrics.Enabled {
		comps.metrics = metrics.NewRegistry()
		eng.SetMetrics(comps.metrics)
	}

	return comps, nil
}

// registerModels constructs and initializes every enabled alpha model.
func registerModels(alphas *alpha.Engine, configs map[string]config.ModelConfig) ([]string, error) {
	var names []string
	for name, mc := range configs {
		if !mc.Enabled {
			continue
		}

		model, err := buildModel(name, mc)
		if err != nil {
			return nil, err
		}
		if err := model.Init(alpha.Config{Enabled: true, Params: mc.Params}); err != nil {
			return nil, fmt.Errorf("initializing model %s: %w", name, err)
		}
		alphas.Register(model)
		names = append(names, model.Name())
	}
	sort.Strings(names)
	return names, nil
}

func buildModel(name string, mc config.ModelConfig) (alpha.Model, error) {
	switch name {
	case "magicformula":
		return magicformula.New(1), nil
	case "lowvol":
		return lowvol.New(), nil
	case "lunchbreak":
		return lunchbreak.New(), nil
	case "etfdecay":
		return etfdecay.New(etfdecay.DefaultPairs()), nil
	case "shareclass":
		symbolA, _ := mc.Params["symbol_a"].(string)
		symbolB, _ := mc.Params["symbol_b"].(string)
		if symbolA == "" || symbolB == "" {
			symbolA, symbolB = "GOOGL", "GOOG"
		}
		return shareclass.New(symbolA, symbolB), nil
	default:
		return nil, fmt.Errorf("unknown alpha model %q", name)
	}
}

// buildSelection returns the universe model. Manual universes absorb the
// fixed symbols of pair-trading models so their legs are always members.
func buildSelection(cfg *config.Config, alphas *alpha.Engine) (universe.SelectionModel, error) {
	switch cfg.Universe.Model {
	case "manual":
		symbols := append([]string{}, cfg.Universe.Symbols...)
		for _, m := range alphas.GetAll() {
			if s, ok := m.(interface{ Symbols() []string }); ok {
				symbols = append(symbols, s.Symbols()...)
			}
		}
		return universe.NewManual(symbols...), nil
	case "magicformula":
		uc := universe.DefaultMagicFormulaConfig()
		uc.CoarseCount = cfg.Universe.CoarseCount
		uc.FineCount = cfg.Universe.FineCount
		uc.PortfolioCount = cfg.Universe.PortfolioCount
		uc.MinMarketCap = cfg.Universe.MinMarketCap
		uc.MinIPOAgeDays = cfg.Universe.MinIPOAgeDays
		return universe.NewMagicFormula(uc), nil
	default:
		return nil, fmt.Errorf("unknown universe model %q", cfg.Universe.Model)
	}
}

func buildInsightStore(ctx context.Context, cfg *config.Config) (insight.Store, func(), error) {
	switch cfg.Storage.Insights.Type {
	case "postgres":
		store, err := insight.NewPostgresStore(ctx, cfg.Storage.Insights.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting insight store: %w", err)
		}
		return store, store.Close, nil
	default:
		maxSize := cfg.Storage.Insights.MaxSize
		if maxSize <= 0 {
			maxSize = 10000
		}
		return insight.NewMemoryStore(maxSize), nil, nil
	}
}

func buildResultBackend(cfg *config.Config) (results.Backend, error) {
	switch cfg.Storage.Results.Type {
	case "s3":
		return results.NewS3(results.S3Config{
			Bucket:    cfg.Storage.Results.S3.Bucket,
			Endpoint:  cfg.Storage.Results.S3.Endpoint,
			Region:    cfg.Storage.Results.S3.Region,
			AccessKey: cfg.Storage.Results.S3.AccessKey,
			SecretKey: cfg.Storage.Results.S3.SecretKey,
			Prefix:    cfg.Storage.Results.S3.Prefix,
		})
	default:
		return results.NewLocalFS(cfg.Storage.Results.Path)
	}
}
