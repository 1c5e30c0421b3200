package plan

import (
	"fmt"

	"loadplan/internal/catalog"
)

// ViolationKind identifies which configured limit a route breached.
type ViolationKind string

const (
	ViolationStopCount      ViolationKind = "stop_count"
	ViolationRouteDuration  ViolationKind = "route_duration"
	ViolationDrivingTime    ViolationKind = "driving_time"
	ViolationServiceTime    ViolationKind = "service_time"
	ViolationVolumeCapacity ViolationKind = "volume_capacity"
	ViolationWeightCapacity ViolationKind = "weight_capacity"
	ViolationPalletCapacity ViolationKind = "pallet_capacity"
	ViolationVolumeCeiling  ViolationKind = "volume_ceiling"
	ViolationWeightCeiling  ViolationKind = "weight_ceiling"
)

// Violation is a first-class result value, not an error: callers get the
// complete feasibility picture of a route in one evaluation. Advisory
// violations report soft utilization ceilings and do not block feasibility.
type Violation struct {
	Kind     ViolationKind
	Limit    float64
	Actual   float64
	Advisory bool
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: limit=%.2f actual=%.2f", v.Kind, v.Limit, v.Actual)
}

// StopTime pairs a stop id with its computed service time.
type StopTime struct {
	StopID         string
	ServiceTimeMin float64
}

// Totals are the derived aggregates of a route. They are recomputed from
// the route's stops on every evaluation and never persisted alongside them.
type Totals struct {
	Stops          int
	ServiceTimeMin float64
	DrivingTimeMin float64
	BufferTimeMin  float64
	TotalTimeMin   float64
	Load           VehicleLoad
	StopTimes      []StopTime
}

// Evaluation is the full feasibility result for one route.
type Evaluation struct {
	RouteID    string
	Totals     Totals
	Violations []Violation
}

// Feasible reports whether the route passed every hard check. Advisory
// ceiling violations do not affect feasibility.
func (e Evaluation) Feasible() bool {
	for _, v := range e.Violations {
		if !v.Advisory {
			return false
		}
	}
	return true
}

// Evaluate computes a route's totals and checks them against the settings.
// Every check runs; no violation short-circuits the others. Unknown
// catalog ids abort the evaluation with an error, matching the rule that
// every item must contribute to totals.
func Evaluate(cat *catalog.Catalog, route Route, settings Settings) (Evaluation, error) {
	if err := settings.Validate(); err != nil {
		return Evaluation{}, err
	}

	totals := Totals{
		Stops:          len(route.Stops),
		DrivingTimeMin: route.DrivingTimeMin,
		BufferTimeMin:  settings.BufferTimeMin,
		StopTimes:      make([]StopTime, 0, len(route.Stops)),
	}

	var items []Item
	for _, stop := range route.Stops {
		st, err := StopServiceTime(cat, stop)
		if err != nil {
			return Evaluation{}, fmt.Errorf("evaluate route %s: %w", route.ID, err)
		}
		totals.ServiceTimeMin += st
		totals.StopTimes = append(totals.StopTimes, StopTime{StopID: stop.ID, ServiceTimeMin: st})
		items = append(items, stop.Items...)
	}
	totals.TotalTimeMin = totals.DrivingTimeMin + totals.ServiceTimeMin + totals.BufferTimeMin

	load, err := ComputeLoad(cat, route.Vehicle, items)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate route %s: %w", route.ID, err)
	}
	totals.Load = load

	var violations []Violation
	if totals.Stops > settings.MaxStopsPerRoute {
		violations = append(violations, Violation{Kind: ViolationStopCount, Limit: float64(settings.MaxStopsPerRoute), Actual: float64(totals.Stops)})
	}
	if totals.TotalTimeMin > settings.MaxRouteDurationMin {
		violations = append(violations, Violation{Kind: ViolationRouteDuration, Limit: settings.MaxRouteDurationMin, Actual: totals.TotalTimeMin})
	}
	if totals.DrivingTimeMin > settings.MaxDrivingTimeMin {
		violations = append(violations, Violation{Kind: ViolationDrivingTime, Limit: settings.MaxDrivingTimeMin, Actual: totals.DrivingTimeMin})
	}
	if totals.ServiceTimeMin > settings.MaxServiceTimeMin {
		violations = append(violations, Violation{Kind: ViolationServiceTime, Limit: settings.MaxServiceTimeMin, Actual: totals.ServiceTimeMin})
	}
	if load.VolumeUtilPct > 100 {
		violations = append(violations, Violation{Kind: ViolationVolumeCapacity, Limit: route.Vehicle.MaxVolumeFt3, Actual: load.VolumeFt3})
	}
	if load.WeightUtilPct > 100 {
		violations = append(violations, Violation{Kind: ViolationWeightCapacity, Limit: route.Vehicle.MaxWeightLb, Actual: load.WeightLb})
	}
	if load.PalletUtilPct > 100 {
		violations = append(violations, Violation{Kind: ViolationPalletCapacity, Limit: float64(route.Vehicle.MaxPallets), Actual: float64(load.Pallets)})
	}
	// Advisory checks against soft utilization targets.
	if load.VolumeUtilPct > settings.VolumeCeilingPct {
		violations = append(violations, Violation{Kind: ViolationVolumeCeiling, Limit: settings.VolumeCeilingPct, Actual: load.VolumeUtilPct, Advisory: true})
	}
	if load.WeightUtilPct > settings.WeightCeilingPct {
		violations = append(violations, Violation{Kind: ViolationWeightCeiling, Limit: settings.WeightCeilingPct, Actual: load.WeightUtilPct, Advisory: true})
	}

	return Evaluation{RouteID: route.ID, Totals: totals, Violations: violations}, nil
}
