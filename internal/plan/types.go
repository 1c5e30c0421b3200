// Package plan implements the delivery capacity and service-time planning
// engine: per-stop service time, vehicle load aggregation, route-level
// feasibility evaluation, and weighted optimization scoring. Every function
// is pure over immutable inputs; derived totals are recomputed from source
// data on every call and never stored back.
package plan

import "fmt"

// Item is a quantity of one product size category present at a stop.
type Item struct {
	SizeCategory string
	Quantity     int
}

// Stop is one delivery location within a route.
type Stop struct {
	ID          string
	ServiceType string
	Address     string
	Items       []Item
}

// VehicleCapacity holds the hard limits of a vehicle type. Limits are
// constant per type, not per vehicle instance.
type VehicleCapacity struct {
	Type         string
	MaxVolumeFt3 float64
	MaxWeightLb  float64
	MaxPallets   int
}

// VehicleLoad is the derived load of one item set against a vehicle type.
// Utilization is used/limit x 100 per dimension and is deliberately not
// clamped: a value above 100 signals an infeasible assignment.
type VehicleLoad struct {
	VolumeFt3     float64
	WeightLb      float64
	Pallets       int
	VolumeUtilPct float64
	WeightUtilPct float64
	PalletUtilPct float64
}

// Route is an ordered sequence of stops assigned to one vehicle.
// DrivingTimeMin and inter-stop distances come from an external routing
// provider; the engine never computes geographic distance itself.
type Route struct {
	ID             string
	Vehicle        VehicleCapacity
	Stops          []Stop
	DrivingTimeMin float64
}

// Settings are the configurable limits for one planning run.
type Settings struct {
	MaxStopsPerRoute    int
	MaxRouteDurationMin float64
	MaxDrivingTimeMin   float64
	MaxServiceTimeMin   float64
	BufferTimeMin       float64
	// Soft utilization targets, reported but non-blocking.
	VolumeCeilingPct float64
	WeightCeilingPct float64
}

// ConfigError reports settings or criteria that are rejected before any
// computation begins.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate rejects non-positive limits. Buffer time may be zero.
func (s Settings) Validate() error {
	if s.MaxStopsPerRoute <= 0 {
		return &ConfigError{Field: "maxStopsPerRoute", Reason: "must be positive"}
	}
	if s.MaxRouteDurationMin <= 0 {
		return &ConfigError{Field: "maxRouteDurationMin", Reason: "must be positive"}
	}
	if s.MaxDrivingTimeMin <= 0 {
		return &ConfigError{Field: "maxDrivingTimeMin", Reason: "must be positive"}
	}
	if s.MaxServiceTimeMin <= 0 {
		return &ConfigError{Field: "maxServiceTimeMin", Reason: "must be positive"}
	}
	if s.BufferTimeMin < 0 {
		return &ConfigError{Field: "bufferTimeMin", Reason: "must not be negative"}
	}
	if s.VolumeCeilingPct <= 0 || s.VolumeCeilingPct > 100 {
		return &ConfigError{Field: "volumeCeilingPct", Reason: "must be in (0,100]"}
	}
	if s.WeightCeilingPct <= 0 || s.WeightCeilingPct > 100 {
		return &ConfigError{Field: "weightCeilingPct", Reason: "must be in (0,100]"}
	}
	return nil
}

// DefaultSettings mirrors the limits dispatchers start from in the
// constraints panel.
func DefaultSettings() Settings {
	return Settings{
		MaxStopsPerRoute:    20,
		MaxRouteDurationMin: 600,
		MaxDrivingTimeMin:   420,
		MaxServiceTimeMin:   240,
		BufferTimeMin:       30,
		VolumeCeilingPct:    85,
		WeightCeilingPct:    80,
	}
}
