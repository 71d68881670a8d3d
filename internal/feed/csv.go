package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

// CSVProvider serves bars and fundamentals from a directory of CSV files.
// Each symbol has a <SYMBOL>.csv with rows time,open,high,low,close,volume;
// an optional fundamentals.csv carries the universe-selection columns.
type CSVProvider struct {
	dir          string
	bars         map[string][]core.Bar
	fundamentals map[string]core.Fundamental
}

// NewCSVProvider loads all CSV files under dir.
func NewCSVProvider(dir string) (*CSVProvider, error) {
	p := &CSVProvider{
		dir:          dir,
		bars:         make(map[string][]core.Bar),
		fundamentals: make(map[string]core.Fundamental),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if entry.Name() == "fundamentals.csv" {
			if err := p.loadFundamentals(path); err != nil {
				return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
			}
			continue
		}
		symbol := strings.TrimSuffix(entry.Name(), ".csv")
		if err := p.loadBars(symbol, path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
	}

	return p, nil
}

// Name returns the provider identifier.
func (p *CSVProvider) Name() string { return "csv" }

// Symbols returns all symbols with loaded bar data, sorted.
func (p *CSVProvider) Symbols() []string {
	symbols := make([]string, 0, len(p.bars))
	for sym := range p.bars {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// FetchHistory returns the bars for symbol within [start, end].
func (p *CSVProvider) FetchHistory(symbol string, start, end time.Time, _ core.Resolution) ([]core.Bar, error) {
	bars, ok := p.bars[symbol]
	if !ok {
		return nil, core.ErrSymbolNotFound
	}

	var result []core.Bar
	for _, b := range bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

// FetchCoarse builds coarse rows from the last bar at or before t.
func (p *CSVProvider) FetchCoarse(t time.Time) ([]core.CoarseFundamental, error) {
	var result []core.CoarseFundamental
	for sym, bars := range p.bars {
		var last *core.Bar
		for i := range bars {
			if bars[i].Time.After(t) {
				break
			}
			last = &bars[i]
		}
		if last == nil {
			continue
		}
		_, hasFine := p.fundamentals[sym]
		result = append(result, core.CoarseFundamental{
			Symbol:             sym,
			Price:              last.Close,
			Volume:             last.Volume,
			DollarVolume:       last.Close * float64(last.Volume),
			HasFundamentalData: hasFine,
			EndTime:            last.Time,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Symbol < result[j].Symbol })
	return result, nil
}

// FetchFundamentals returns the fundamentals rows for the given symbols.
func (p *CSVProvider) FetchFundamentals(symbols []string) (map[string]core.Fundamental, error) {
	result := make(map[string]core.Fundamental, len(symbols))
	for _, sym := range symbols {
		if f, ok := p.fundamentals[sym]; ok {
			result[sym] = f
		}
	}
	return result, nil
}

func (p *CSVProvider) loadBars(symbol, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	var bars []core.Bar
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		line++
		if line == 1 && record[0] == "time" {
			continue // header
		}

		t, err := parseTime(record[0])
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		vals := make([]float64, 4)
		for i := 0; i < 4; i++ {
			vals[i], err = strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return fmt.Errorf("row %d: %w", line, err)
			}
		}
		volume, err := strconv.ParseInt(record[5], 10, 64)
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}

		bars = append(bars, core.Bar{
			Symbol: symbol,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: volume,
			Time:   t,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	p.bars[symbol] = bars
	return nil
}

// fundamentals.csv columns:
// symbol,country,exchange,sector,ipo_date,shares,eps,pe,ev_to_ebitda,roic
func (p *CSVProvider) loadFundamentals(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 10

	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		line++
		if line == 1 && record[0] == "symbol" {
			continue
		}

		ipo, err := time.Parse("2006-01-02", record[4])
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		nums := make([]float64, 5)
		for i := 0; i < 5; i++ {
			nums[i], err = strconv.ParseFloat(record[i+5], 64)
			if err != nil {
				return fmt.Errorf("row %d: %w", line, err)
			}
		}

		p.fundamentals[record[0]] = core.Fundamental{
			Symbol:               record[0],
			CountryID:            record[1],
			PrimaryExchangeID:    core.Exchange(record[2]),
			IndustryTemplateCode: record[3],
			IPODate:              ipo,
			BasicAverageShares:   nums[0],
			BasicEPS:             nums[1],
			PERatio:              nums[2],
			EVToEBITDA:           nums[3],
			ROIC:                 nums[4],
		}
	}

	return nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
