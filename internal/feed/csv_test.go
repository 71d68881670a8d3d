package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quantarc/alphabench/internal/core"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func testDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "AAPL.csv", `time,open,high,low,close,volume
2024-03-01,100,102,99,101,1000000
2024-03-04,101,105,101,104,1200000
2024-03-05,104,104,100,102,900000
`)
	writeFile(t, dir, "MSFT.csv", `time,open,high,low,close,volume
2024-03-04,400,410,399,405,800000
`)
	writeFile(t, dir, "fundamentals.csv", `symbol,country,exchange,sector,ipo_date,shares,eps,pe,ev_to_ebitda,roic
AAPL,USA,NAS,T,1980-12-12,15000000000,6.1,28,21.5,0.55
`)
	return dir
}

func TestCSVProvider_LoadsSymbols(t *testing.T) {
	p, err := NewCSVProvider(testDataDir(t))
	if err != nil {
		t.Fatalf("NewCSVProvider: %v", err)
	}

	symbols := p.Symbols()
	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "MSFT" {
		t.Errorf("Symbols = %v, want [AAPL MSFT]", symbols)
	}
}

func TestCSVProvider_FetchHistory(t *testing.T) {
	p, err := NewCSVProvider(testDataDir(t))
	if err != nil {
		t.Fatalf("NewCSVProvider: %v", err)
	}

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 23, 59, 59, 0, time.UTC)

	bars, err := p.FetchHistory("AAPL", start, end, core.ResolutionDaily)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars in range, got %d", len(bars))
	}
	if bars[0].Close != 104 || bars[1].Close != 102 {
		t.Errorf("closes = %f, %f", bars[0].Close, bars[1].Close)
	}

	if _, err := p.FetchHistory("UNKNOWN", start, end, core.ResolutionDaily); err == nil {
		t.Error("expected error for unknown symbol")
	}
}

func TestCSVProvider_FetchCoarse(t *testing.T) {
	p, err := NewCSVProvider(testDataDir(t))
	if err != nil {
		t.Fatalf("NewCSVProvider: %v", err)
	}

	at := time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC)
	coarse, err := p.FetchCoarse(at)
	if err != nil {
		t.Fatalf("FetchCoarse: %v", err)
	}
	if len(coarse) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(coarse))
	}

	// Sorted by symbol: AAPL first, using the 2024-03-04 bar.
	aapl := coarse[0]
	if aapl.Symbol != "AAPL" || aapl.Price != 104 {
		t.Errorf("AAPL row = %+v", aapl)
	}
	if !aapl.HasFundamentalData {
		t.Error("expected AAPL to have fundamental data")
	}
	if aapl.DollarVolume != 104*1200000 {
		t.Errorf("DollarVolume = %f", aapl.DollarVolume)
	}

	msft := coarse[1]
	if msft.HasFundamentalData {
		t.Error("expected MSFT to lack fundamental data")
	}
}

func TestCSVProvider_FetchFundamentals(t *testing.T) {
	p, err := NewCSVProvider(testDataDir(t))
	if err != nil {
		t.Fatalf("NewCSVProvider: %v", err)
	}

	fine, err := p.FetchFundamentals([]string{"AAPL", "MSFT"})
	if err != nil {
		t.Fatalf("FetchFundamentals: %v", err)
	}
	if len(fine) != 1 {
		t.Fatalf("expected 1 row, got %d", len(fine))
	}

	f := fine["AAPL"]
	if f.CountryID != "USA" || f.PrimaryExchangeID != core.ExchangeNASDAQ {
		t.Errorf("fundamental = %+v", f)
	}
	if f.IndustryTemplateCode != "T" || f.ROIC != 0.55 {
		t.Errorf("fundamental = %+v", f)
	}
}

func TestRegistry(t *testing.T) {
	p, err := NewCSVProvider(testDataDir(t))
	if err != nil {
		t.Fatalf("NewCSVProvider: %v", err)
	}

	reg := NewRegistry()
	reg.Register(p)

	if _, ok := reg.Get("csv"); !ok {
		t.Error("expected csv provider to be registered")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("expected miss for unknown provider")
	}
	if len(reg.GetAll()) != 1 {
		t.Errorf("GetAll len = %d", len(reg.GetAll()))
	}
}
