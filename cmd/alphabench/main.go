package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "alphabench",
	Short: "alphabench - benchmark alpha models against historical data",
	Long: `alphabench runs a set of classic alpha models (magic formula, low
volatility, lunch-break reversion, leveraged ETF decay, share-class pair
trading) through a portfolio engine, either as a backtest over CSV data or
live against a quote stream.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
