package universe

import (
	"context"
	"math"
	"sort"

	"github.com/quantarc/alphabench/internal/core"
)

// MagicFormulaConfig sizes the three stages of the Magic Formula selection.
type MagicFormulaConfig struct {
	// CoarseCount is the number of top-dollar-volume symbols kept by
	// coarse selection.
	CoarseCount int
	// FineCount is the number of symbols kept after the EV/EBITDA ranking.
	FineCount int
	// PortfolioCount is the final number of symbols after the ROIC ranking.
	PortfolioCount int
	// MinMarketCap is the minimum market capitalization for fine selection.
	MinMarketCap float64
	// MinIPOAgeDays is the minimum age since IPO for fine selection.
	MinIPOAgeDays int
}

// DefaultMagicFormulaConfig returns the benchmark parameterization.
func DefaultMagicFormulaConfig() MagicFormulaConfig {
	return MagicFormulaConfig{
		CoarseCount:    500,
		FineCount:      20,
		PortfolioCount: 10,
		MinMarketCap:   5e8,
		MinIPOAgeDays:  180,
	}
}

// sectorTemplateCodes are the industry template codes selection buckets by.
var sectorTemplateCodes = []string{"N", "M", "U", "T", "B", "I"}

// MagicFormula selects securities after Joel Greenblatt's Magic Formula:
// a liquid large-cap base universe ranked by EV/EBITDA, then by return on
// invested capital. Selection re-runs monthly; between runs the previous
// selection is returned unchanged.
type MagicFormula struct {
	cfg MagicFormulaConfig

	lastMonth         int
	dollarVolumeBySym map[string]float64
	symbols           []string
}

// NewMagicFormula creates the selection model with the given configuration.
func NewMagicFormula(cfg MagicFormulaConfig) *MagicFormula {
	return &MagicFormula{
		cfg:               cfg,
		lastMonth:         -1,
		dollarVolumeBySym: make(map[string]float64),
	}
}

func (m *MagicFormula) Name() string { return "magic_formula" }

// Select performs coarse then fine selection on the snapshot.
func (m *MagicFormula) Select(_ context.Context, snap Snapshot) ([]string, error) {
	coarse := m.SelectCoarse(snap)
	if len(snap.Fine) == 0 {
		return coarse, nil
	}

	fine := make([]core.Fundamental, 0, len(coarse))
	for _, sym := range coarse {
		if f, ok := snap.Fine[sym]; ok {
			fine = append(fine, f)
		}
	}
	return m.SelectFine(snap, fine), nil
}

// SelectCoarse keeps symbols with fundamental data, a positive previous
// close and positive previous-day volume, sorted by dollar volume. It only
// re-runs when the calendar month changes.
func (m *MagicFormula) SelectCoarse(snap Snapshot) []string {
	if len(snap.Coarse) == 0 {
		return m.symbols
	}

	month := int(snap.Coarse[0].EndTime.Month())
	if month == m.lastMonth {
		return m.symbols
	}
	m.lastMonth = month

	filtered := make([]core.CoarseFundamental, 0, len(snap.Coarse))
	for _, c := range snap.Coarse {
		if c.HasFundamentalData && c.Volume > 0 && c.Price > 0 {
			filtered = append(filtered, c)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].DollarVolume > filtered[j].DollarVolume
	})
	if len(filtered) > m.cfg.CoarseCount {
		filtered = filtered[:m.cfg.CoarseCount]
	}

	m.dollarVolumeBySym = make(map[string]float64, len(filtered))
	m.symbols = make([]string, 0, len(filtered))
	for _, c := range filtered {
		m.dollarVolumeBySym[c.Symbol] = c.DollarVolume
		m.symbols = append(m.symbols, c.Symbol)
	}

	return m.symbols
}

// SelectFine narrows the coarse constituents to US large caps listed on
// NYSE or NASDAQ with a seasoned listing, takes the top dollar-volume names
// per sector, then ranks by EV/EBITDA and finally by one-year ROIC.
func (m *MagicFormula) SelectFine(snap Snapshot, fine []core.Fundamental) []string {
	filtered := make([]core.Fundamental, 0, len(fine))
	for _, f := range fine {
		if f.CountryID != "USA" {
			continue
		}
		if f.PrimaryExchangeID != core.ExchangeNYSE && f.PrimaryExchangeID != core.ExchangeNASDAQ {
			continue
		}
		if snap.Time.Sub(f.IPODate).Hours() <= float64(m.cfg.MinIPOAgeDays)*24 {
			continue
		}
		if f.MarketCap() <= m.cfg.MinMarketCap {
			continue
		}
		filtered = append(filtered, f)
	}

	if len(filtered) == 0 {
		return []string{}
	}

	// Top dollar-volume names per sector, proportional to the fine quota.
	percent := float64(m.cfg.FineCount) / float64(len(filtered))
	var topFine []core.Fundamental
	for _, code := range sectorTemplateCodes {
		var bucket []core.Fundamental
		for _, f := range filtered {
			if f.IndustryTemplateCode == code {
				bucket = append(bucket, f)
			}
		}
		sort.Slice(bucket, func(i, j int) bool {
			return m.dollarVolumeBySym[bucket[i].Symbol] > m.dollarVolumeBySym[bucket[j].Symbol]
		})
		take := int(math.Ceil(float64(len(bucket)) * percent))
		if take > len(bucket) {
			take = len(bucket)
		}
		topFine = append(topFine, bucket[:take]...)
	}
	if len(topFine) > m.cfg.CoarseCount {
		topFine = topFine[:m.cfg.CoarseCount]
	}

	// Rank by EV/EBITDA descending.
	sort.Slice(topFine, func(i, j int) bool {
		return topFine[i].EVToEBITDA > topFine[j].EVToEBITDA
	})
	if len(topFine) > m.cfg.FineCount {
		topFine = topFine[:m.cfg.FineCount]
	}

	// Rank the subset by one-year ROIC ascending.
	sort.Slice(topFine, func(i, j int) bool {
		return topFine[i].ROIC < topFine[j].ROIC
	})
	if len(topFine) > m.cfg.PortfolioCount {
		topFine = topFine[:m.cfg.PortfolioCount]
	}

	m.symbols = make([]string, 0, len(topFine))
	for _, f := range topFine {
		m.symbols = append(m.symbols, f.Symbol)
	}
	return m.symbols
}
