package plan

import (
	"errors"
	"fmt"
)

// ErrNoCriteriaEnabled is returned when a score is requested with every
// criterion disabled. Returning 0 instead would be a misleading default.
var ErrNoCriteriaEnabled = errors.New("no optimization criteria enabled")

// Criterion is one weighted optimization signal. ID selects the raw metric
// it scores: distance, time, cost, or efficiency.
type Criterion struct {
	ID      string
	Name    string
	Enabled bool
	Weight  int // 1..10
}

// RawMetrics are the per-route signals supplied by the caller. Distance
// and time come from the external routing provider; cost and efficiency
// from the fleet/cost model.
type RawMetrics struct {
	DistanceKm    float64
	TimeMin       float64
	Cost          float64
	EfficiencyPct float64
}

// MetricNorms bound the linear normalization of lower-is-better metrics to
// the 0-100 goodness scale. The normalization curve is tunable policy, not
// a fixed law; these defaults suit metro-area delivery routes.
type MetricNorms struct {
	MaxDistanceKm float64
	MaxTimeMin    float64
	MaxCost       float64
}

func DefaultNorms() MetricNorms {
	return MetricNorms{MaxDistanceKm: 100, MaxTimeMin: 600, MaxCost: 1000}
}

func (n MetricNorms) validate() error {
	if n.MaxDistanceKm <= 0 {
		return &ConfigError{Field: "maxDistanceKm", Reason: "must be positive"}
	}
	if n.MaxTimeMin <= 0 {
		return &ConfigError{Field: "maxTimeMin", Reason: "must be positive"}
	}
	if n.MaxCost <= 0 {
		return &ConfigError{Field: "maxCost", Reason: "must be positive"}
	}
	return nil
}

// Score combines the enabled criteria into a weighted average on [0,100].
// Lower-is-better metrics (distance, time, cost) are normalized against
// their bound and inverted; efficiency is used directly. Disabled criteria
// contribute nothing and do not affect the denominator.
func Score(criteria []Criterion, m RawMetrics, norms MetricNorms) (float64, error) {
	if err := norms.validate(); err != nil {
		return 0, err
	}

	var weighted, weightSum float64
	for _, c := range criteria {
		if !c.Enabled {
			continue
		}
		if c.Weight < 1 || c.Weight > 10 {
			return 0, &ConfigError{Field: "criteria." + c.ID, Reason: fmt.Sprintf("weight must be 1..10, got %d", c.Weight)}
		}
		goodness, err := criterionGoodness(c.ID, m, norms)
		if err != nil {
			return 0, err
		}
		weighted += goodness * float64(c.Weight)
		weightSum += float64(c.Weight)
	}
	if weightSum == 0 {
		return 0, ErrNoCriteriaEnabled
	}
	return weighted / weightSum, nil
}

func criterionGoodness(id string, m RawMetrics, norms MetricNorms) (float64, error) {
	switch id {
	case "distance":
		return 100 - normalize(m.DistanceKm, norms.MaxDistanceKm), nil
	case "time":
		return 100 - normalize(m.TimeMin, norms.MaxTimeMin), nil
	case "cost":
		return 100 - normalize(m.Cost, norms.MaxCost), nil
	case "efficiency":
		return clamp(m.EfficiencyPct, 0, 100), nil
	default:
		return 0, &ConfigError{Field: "criteria." + id, Reason: "unknown criterion id"}
	}
}

// normalize maps value linearly onto [0,100] against its bound.
func normalize(value, max float64) float64 {
	return clamp(value/max*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DefaultCriteria mirrors the optimization-settings panel presets.
func DefaultCriteria() []Criterion {
	return []Criterion{
		{ID: "distance", Name: "Minimize Distance", Enabled: true, Weight: 8},
		{ID: "time", Name: "Minimize Time", Enabled: true, Weight: 7},
		{ID: "cost", Name: "Minimize Cost", Enabled: true, Weight: 9},
		{ID: "efficiency", Name: "Maximize Efficiency", Enabled: true, Weight: 6},
	}
}
