package main

import (
	"fmt"
	"time"

	"github.com/quantarc/alphabench/internal/backtest"
	"github.com/quantarc/alphabench/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	backtestName string
	backtestFrom string
	backtestTo   string
	backtestSave bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical data through the enabled alpha models",
	Long:  "Run the enabled alpha models against CSV data and show performance statistics",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestName, "name", "backtest", "Run name used in the archive key")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")
	backtestCmd.Flags().BoolVar(&backtestSave, "save", true, "Archive the result")

	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	fromDate, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", backtestTo)
	if err != nil {
		return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}
	if toDate.Before(fromDate) {
		return fmt.Errorf("end date must be after start date")
	}
	// Include the end date's bars.
	toDate = toDate.Add(24*time.Hour - time.Nanosecond)

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	comps, err := setup(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer comps.close()

	bt := backtest.New(comps.engine, comps.broker, comps.provider, cfg.Resolution(), comps.models, log)

	started := time.Now()
	result, err := bt.Run(ctx, backtestName, fromDate, toDate)
	if err != nil {
		if comps.metrics != nil {
			comps.metrics.BacktestCompleted("error", time.Since(started))
		}
		return fmt.Errorf("backtest failed: %w", err)
	}
	if comps.metrics != nil {
		comps.metrics.BacktestCompleted("ok", time.Since(started))
	}

	printResult(result)

	if backtestSave {
		if err := comps.archiver.SaveJSON(ctx, result.RunID, "result.json", result); err != nil {
			log.Warn("archiving result failed", zap.Error(err))
		} else {
			fmt.Printf("\nArchived as %s\n", result.RunID)
		}
	}

	return nil
}

func printResult(result *backtest.Result) {
	fmt.Println("=== alphabench backtest ===")
	fmt.Printf("Models:    %v\n", result.Models)
	fmt.Printf("Period:    %s to %s\n",
		result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02"))
	fmt.Printf("Cash:      %.2f -> %.2f\n", result.InitialCash, result.FinalValue)
	fmt.Println()
	fmt.Printf("Bars:          %d\n", result.Stats.BarsProcessed)
	fmt.Printf("Orders:        %d\n", result.Stats.TotalOrders)
	fmt.Printf("Total return:  %.2f%%\n", result.Stats.TotalReturn)
	fmt.Printf("Max drawdown:  %.2f%%\n", result.Stats.MaxDrawdown)
	fmt.Printf("Volatility:    %.2f%%\n", result.Stats.Volatility)
	fmt.Printf("Sharpe ratio:  %.2f\n", result.Stats.SharpeRatio)
}
