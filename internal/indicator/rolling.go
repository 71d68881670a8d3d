package indicator

import "time"

// RollingROC is a streaming rate-of-change indicator. It keeps the last
// period+1 samples and exposes the current value once enough samples have
// arrived, so callers can warm it from history and then feed it live bars.
type RollingROC struct {
	period  int
	window  []float64
	samples int
	current float64
}

// NewRollingROC creates a streaming ROC over the given period.
func NewRollingROC(period int) *RollingROC {
	if period < 1 {
		period = 1
	}
	return &RollingROC{
		period: period,
		window: make([]float64, 0, period+1),
	}
}

// Update pushes a new sample. The timestamp is accepted for interface
// symmetry with bar-driven callers; ROC only depends on sample order.
func (r *RollingROC) Update(_ time.Time, price float64) {
	r.samples++
	r.window = append(r.window, price)
	if len(r.window) > r.period+1 {
		r.window = r.window[1:]
	}
	if len(r.window) == r.period+1 && r.window[0] != 0 {
		r.current = (price - r.window[0]) / r.window[0]
	}
}

// IsReady reports whether the indicator has seen a full period of samples.
func (r *RollingROC) IsReady() bool {
	return len(r.window) == r.period+1
}

// Samples returns the total number of updates received.
func (r *RollingROC) Samples() int {
	return r.samples
}

// Value returns the current rate of change.
func (r *RollingROC) Value() float64 {
	return r.current
}

// RollingSMA is a streaming simple moving average.
type RollingSMA struct {
	period  int
	window  []float64
	sum     float64
	samples int
}

// NewRollingSMA creates a streaming SMA over the given period.
func NewRollingSMA(period int) *RollingSMA {
	if period < 1 {
		period = 1
	}
	return &RollingSMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

// Update pushes a new sample.
func (s *RollingSMA) Update(_ time.Time, value float64) {
	s.samples++
	s.window = append(s.window, value)
	s.sum += value
	if len(s.window) > s.period {
		s.sum -= s.window[0]
		s.window = s.window[1:]
	}
}

// IsReady reports whether a full period of samples has arrived.
func (s *RollingSMA) IsReady() bool {
	return len(s.window) == s.period
}

// Samples returns the total number of updates received.
func (s *RollingSMA) Samples() int {
	return s.samples
}

// Value returns the current average over the window.
func (s *RollingSMA) Value() float64 {
	if len(s.window) == 0 {
		return 0
	}
	return s.sum / float64(len(s.window))
}
