package core

import "time"

// Resolution is the bar interval a model or subscription operates on.
type Resolution string

const (
	ResolutionMinute Resolution = "minute"
	ResolutionHour   Resolution = "hour"
	ResolutionDaily  Resolution = "daily"
)

// Duration returns the wall-clock length of one bar at this resolution.
func (r Resolution) Duration() time.Duration {
	switch r {
	case ResolutionMinute:
		return time.Minute
	case ResolutionHour:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// Exchange identifies the primary listing exchange of a security.
type Exchange string

const (
	ExchangeNYSE   Exchange = "NYS"
	ExchangeNASDAQ Exchange = "NAS"
)

// Bar represents a single OHLCV candlestick.
type Bar struct {
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
	Time   time.Time
}

// IsValid checks that the bar carries a usable price.
func (b Bar) IsValid() bool {
	return b.Symbol != "" && b.Close > 0
}

// Quote represents a real-time price quote from a streaming feed.
type Quote struct {
	Symbol string
	Price  float64
	Volume int64
	Bid    float64
	Ask    float64
	Time   time.Time
	Source string
}

// IsValid checks if the quote has required fields.
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}

// Slice is the market data delivered to alpha models on one tick:
// the latest bar for every subscribed symbol that produced data.
type Slice struct {
	Bars map[string]Bar
	Time time.Time
}

// Get returns the bar for symbol and whether one exists in this slice.
func (s Slice) Get(symbol string) (Bar, bool) {
	b, ok := s.Bars[symbol]
	return b, ok
}

// Contains reports whether every given symbol has a bar in this slice.
func (s Slice) Contains(symbols ...string) bool {
	for _, sym := range symbols {
		if _, ok := s.Bars[sym]; !ok {
			return false
		}
	}
	return true
}

// Security is a tracked instrument together with its latest market state.
type Security struct {
	Symbol   string
	Exchange Exchange
	LastBar  Bar
	HasData  bool
}

// SecurityChanges describes universe membership changes delivered to
// alpha models through the securities-changed hook.
type SecurityChanges struct {
	Added   []Security
	Removed []Security
}

// IsEmpty reports whether the change set carries no additions or removals.
func (c SecurityChanges) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// Target is a desired portfolio allocation for one symbol, expressed as a
// signed fraction of total portfolio value. Negative percents are shorts.
type Target struct {
	Symbol  string
	Percent float64
}

// Fundamental holds the fundamental data points the universe filters rank on.
type Fundamental struct {
	Symbol string
	// CountryID is the headquarter country code ("USA").
	CountryID string
	// PrimaryExchangeID is the listing exchange code ("NYS", "NAS").
	PrimaryExchangeID Exchange
	// IndustryTemplateCode is the sector template code (N, M, U, T, B, I).
	IndustryTemplateCode string
	// IPODate is the initial public offering date.
	IPODate time.Time
	// BasicAverageShares is the three-month basic average share count.
	BasicAverageShares float64
	// BasicEPS is the twelve-month basic earnings per share.
	BasicEPS float64
	// PERatio is the price-to-earnings valuation ratio.
	PERatio float64
	// EVToEBITDA is the enterprise-value-to-EBITDA valuation ratio.
	EVToEBITDA float64
	// ROIC is the one-year return on invested capital.
	ROIC float64
}

// MarketCap derives market capitalization from shares, EPS and PE.
func (f Fundamental) MarketCap() float64 {
	return f.BasicAverageShares * f.BasicEPS * f.PERatio
}

// CoarseFundamental is the per-symbol row coarse universe selection works on.
type CoarseFundamental struct {
	Symbol string
	// Price is the previous trading day's close.
	Price float64
	// Volume is the previous trading day's share volume.
	Volume int64
	// DollarVolume is price times volume for the previous trading day.
	DollarVolume float64
	// HasFundamentalData indicates fine fundamental data exists for the symbol.
	HasFundamentalData bool
	// EndTime is the end of the period the row describes.
	EndTime time.Time
}
