package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quantarc/alphabench/internal/core"
	"github.com/quantarc/alphabench/internal/feed"
	"github.com/quantarc/alphabench/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the alpha models live against a quote stream",
	RunE:  runLive,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if !cfg.Data.Stream.Enabled || cfg.Data.Stream.URL == "" {
		return fmt.Errorf("live run requires data.stream.enabled and data.stream.url")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	comps, err := setup(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer comps.close()

	if comps.metrics != nil {
		go serveMetrics(cfg.Metrics.Addr, cfg.Metrics.Path, comps, log)
	}

	stream := feed.NewStream(cfg.Data.Stream.URL, log)
	go func() {
		if err := stream.Run(ctx, comps.provider.Symbols()); err != nil && ctx.Err() == nil {
			log.Error("quote stream stopped", zap.Error(err))
			cancel()
		}
	}()

	log.Info("live run started",
		zap.String("stream", cfg.Data.Stream.URL),
		zap.Strings("models", comps.models),
		zap.String("resolution", string(cfg.Resolution())),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	interval := cfg.Resolution().Duration()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	building := make(map[string]core.Bar)

	for {
		select {
		case <-quit:
			log.Info("shutting down")
			return nil
		case <-ctx.Done():
			return ctx.Err()

		case quote := <-stream.Quotes():
			applyQuote(building, quote)

		case t := <-ticker.C:
			if len(building) == 0 {
				continue
			}
			slice := core.Slice{Time: t.Truncate(interval), Bars: building}
			building = make(map[string]core.Bar)

			if err := comps.engine.OnSlice(ctx, slice); err != nil {
				log.Warn("slice failed", zap.Error(err))
			}
			if comps.metrics != nil {
				if balance, err := comps.broker.GetBalance(ctx); err == nil {
					comps.metrics.SetPortfolioValue(balance.TotalValue)
				}
				comps.metrics.SetUniverseSize(len(comps.engine.Securities()))
			}
		}
	}
}

// applyQuote folds a quote into the bar being built for its symbol.
func applyQuote(building map[string]core.Bar, q core.Quote) {
	bar, ok := building[q.Symbol]
	if !ok {
		bar = core.Bar{
			Symbol: q.Symbol,
			Open:   q.Price,
			High:   q.Price,
			Low:    q.Price,
		}
	}
	if q.Price > bar.High {
		bar.High = q.Price
	}
	if q.Price < bar.Low || bar.Low == 0 {
		bar.Low = q.Price
	}
	bar.Close = q.Price
	bar.Volume += q.Volume
	bar.Time = q.Time
	building[q.Symbol] = bar
}

func serveMetrics(addr, path string, comps *components, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(comps.metrics, promhttp.HandlerOpts{}))

	log.Info("metrics endpoint listening", zap.String("addr", addr), zap.String("path", path))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics endpoint failed", zap.Error(err))
	}
}
