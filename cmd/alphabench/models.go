package main

import (
	"fmt"
	"sort"

	"github.com/quantarc/alphabench/internal/alpha"
	"github.com/quantarc/alphabench/internal/alpha/etfdecay"
	"github.com/quantarc/alphabench/internal/alpha/lowvol"
	"github.com/quantarc/alphabench/internal/alpha/lunchbreak"
	"github.com/quantarc/alphabench/internal/alpha/magicformula"
	"github.com/quantarc/alphabench/internal/alpha/shareclass"
	"github.com/quantarc/alphabench/internal/universe"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available alpha and universe models",
	Run:   runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) {
	available := []alpha.Model{
		magicformula.New(1),
		lowvol.New(),
		lunchbreak.New(),
		etfdecay.New(etfdecay.DefaultPairs()),
		shareclass.New("GOOGL", "GOOG"),
	}
	sort.Slice(available, func(i, j int) bool {
		return available[i].Name() < available[j].Name()
	})

	fmt.Println("Available alpha models:")
	for _, m := range available {
		fmt.Printf("  %-24s %-8s %s\n", m.Name(), m.Resolution(), m.Description())
	}

	fmt.Println("\nAvailable universe models:")
	fmt.Printf("  %-24s %s\n", universe.NewManual().Name(), "Fixed symbol list from configuration")
	fmt.Printf("  %-24s %s\n", universe.NewMagicFormula(universe.DefaultMagicFormulaConfig()).Name(),
		"Greenblatt Magic Formula fundamental selection")
}
