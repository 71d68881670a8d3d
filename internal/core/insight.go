package core

import (
	"time"

	"github.com/google/uuid"
)

// Direction is the predicted price direction of an insight.
type Direction int

const (
	DirectionDown Direction = -1
	DirectionFlat Direction = 0
	DirectionUp   Direction = 1
)

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "flat"
	}
}

// Insight is a directional forecast for one security: which way the price
// is expected to move, by how much, and for how long the prediction holds.
type Insight struct {
	ID          string
	Symbol      string
	Direction   Direction
	Period      time.Duration
	Magnitude   float64
	Confidence  float64
	Model       string
	GeneratedAt time.Time
}

// NewInsight creates a price insight with a fresh ID.
func NewInsight(symbol string, period time.Duration, direction Direction, magnitude float64) Insight {
	return Insight{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Direction: direction,
		Period:    period,
		Magnitude: magnitude,
	}
}

// CloseTime returns the instant the prediction stops being valid.
func (i Insight) CloseTime() time.Time {
	return i.GeneratedAt.Add(i.Period)
}

// IsActive reports whether the insight is still valid at t.
func (i Insight) IsActive(t time.Time) bool {
	return !t.After(i.CloseTime())
}
