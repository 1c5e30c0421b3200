package plan

import "math"

// RiskLevel classifies the magnitude of a scenario's combined impact.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskBands are the thresholds that map combined impact magnitude to a
// risk level. They are configuration, not constants, so operations can
// tune them without a code change.
type RiskBands struct {
	LowBelowPct    float64
	MediumBelowPct float64
}

func DefaultRiskBands() RiskBands {
	return RiskBands{LowBelowPct: 10, MediumBelowPct: 25}
}

func (b RiskBands) validate() error {
	if b.LowBelowPct <= 0 {
		return &ConfigError{Field: "lowBelowPct", Reason: "must be positive"}
	}
	if b.MediumBelowPct <= b.LowBelowPct {
		return &ConfigError{Field: "mediumBelowPct", Reason: "must be greater than lowBelowPct"}
	}
	return nil
}

// ScenarioDeltas are the hypothetical percentage changes of a what-if
// scenario. Positive order volume means more demand; positive vehicle
// availability means more capacity on the road.
type ScenarioDeltas struct {
	OrderVolumePct         float64
	VehicleAvailabilityPct float64
	FuelPricePct           float64
}

// ScenarioResult is the outcome of a what-if analysis. Projected values
// apply the impact percentages to the baseline for display.
type ScenarioResult struct {
	CostImpactPct          float64
	EfficiencyImpactPct    float64
	ProjectedCost          float64
	ProjectedEfficiencyPct float64
	RiskLevel              RiskLevel
}

// Driver weights for scenario impact. Order volume dominates handling
// cost, fuel price feeds directly into the cost base, and lost vehicle
// availability forces overtime or outsourcing.
const (
	costVolumeWeight       = 0.5
	costFuelWeight         = 0.3
	costAvailabilityWeight = 0.2

	effAvailabilityWeight = 0.5
	effVolumeWeight       = 0.3
	effFuelWeight         = 0.2
)

// WhatIf applies percentage deltas to the baseline's cost and efficiency
// drivers and classifies the risk of the combined impact. Impact
// percentages are relative; the baseline anchors the projected values.
func WhatIf(baseline RawMetrics, deltas ScenarioDeltas, bands RiskBands) (ScenarioResult, error) {
	if err := bands.validate(); err != nil {
		return ScenarioResult{}, err
	}

	costImpact := costVolumeWeight*deltas.OrderVolumePct +
		costFuelWeight*deltas.FuelPricePct -
		costAvailabilityWeight*deltas.VehicleAvailabilityPct

	effImpact := effAvailabilityWeight*deltas.VehicleAvailabilityPct -
		effVolumeWeight*deltas.OrderVolumePct -
		effFuelWeight*deltas.FuelPricePct

	combined := (math.Abs(costImpact) + math.Abs(effImpact)) / 2

	level := RiskHigh
	switch {
	case combined < bands.LowBelowPct:
		level = RiskLow
	case combined < bands.MediumBelowPct:
		level = RiskMedium
	}

	return ScenarioResult{
		CostImpactPct:          costImpact,
		EfficiencyImpactPct:    effImpact,
		ProjectedCost:          baseline.Cost * (1 + costImpact/100),
		ProjectedEfficiencyPct: clamp(baseline.EfficiencyPct*(1+effImpact/100), 0, 100),
		RiskLevel:              level,
	}, nil
}
