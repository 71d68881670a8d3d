package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	insightsGenerated *prometheus.CounterVec
	ordersPlaced      *prometheus.CounterVec
	cycles            prometheus.Counter
	cycleDuration     prometheus.Histogram
	backtestsTotal    *prometheus.CounterVec
	backtestDuration  prometheus.Histogram
	universeSize      prometheus.Gauge
	portfolioValue    prometheus.Gauge
	activeInsights    *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		insightsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphabench_insights_generated_total",
				Help: "Total number of insights emitted by alpha models",
			},
			[]string{"model", "direction"},
		),

		ordersPlaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphabench_orders_placed_total",
				Help: "Total number of orders placed by the execution model",
			},
			[]string{"side", "status"},
		),

		cycles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "alphabench_cycles_total",
				Help: "Total number of data slices processed",
			},
		),

		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "alphabench_cycle_duration_seconds",
				Help:    "Slice processing duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphabench_backtests_total",
				Help: "Total number of backtests",
			},
			[]string{"status"},
		),

		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "alphabench_backtest_duration_seconds",
				Help:    "Backtest duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),

		universeSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "alphabench_universe_symbols",
				Help: "Number of symbols in the active universe",
			},
		),

		portfolioValue: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "alphabench_portfolio_value",
				Help: "Current total portfolio value",
			},
		),

		activeInsights: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "alphabench_active_insights",
				Help: "Number of active insights per model",
			},
			[]string{"model"},
		),
	}

	reg.MustRegister(r.insightsGenerated)
	reg.MustRegister(r.ordersPlaced)
	reg.MustRegister(r.cycles)
	reg.MustRegister(r.cycleDuration)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.universeSize)
	reg.MustRegister(r.portfolioValue)
	reg.MustRegister(r.activeInsights)

	return r
}

// InsightGenerated records an insight emitted by a model.
func (r *Registry) InsightGenerated(model, direction string) {
	r.insightsGenerated.WithLabelValues(model, direction).Inc()
}

// OrderPlaced records an order placement outcome.
func (r *Registry) OrderPlaced(side, status string) {
	r.ordersPlaced.WithLabelValues(side, status).Inc()
}

// CycleCompleted records a processed data slice.
func (r *Registry) CycleCompleted(duration time.Duration) {
	r.cycles.Inc()
	r.cycleDuration.Observe(duration.Seconds())
}

// BacktestCompleted records a backtest completion.
func (r *Registry) BacktestCompleted(status string, duration time.Duration) {
	r.backtestsTotal.WithLabelValues(status).Inc()
	r.backtestDuration.Observe(duration.Seconds())
}

// SetUniverseSize sets the active universe size.
func (r *Registry) SetUniverseSize(size int) {
	r.universeSize.Set(float64(size))
}

// SetPortfolioValue sets the current portfolio value.
func (r *Registry) SetPortfolioValue(value float64) {
	r.portfolioValue.Set(value)
}

// SetActiveInsights sets the active insight count for a model.
func (r *Registry) SetActiveInsights(model string, count int) {
	r.activeInsights.WithLabelValues(model).Set(float64(count))
}
