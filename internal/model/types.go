// Package model holds the wire-level types of the planning API and their
// conversions to and from the pure engine types in internal/plan.
package model

type ItemIn struct {
	SizeCategory string `json:"sizeCategory"`
	Quantity     int    `json:"quantity"`
}

type StopIn struct {
	ID          string   `json:"id"`
	ServiceType string   `json:"serviceType"`
	Address     string   `json:"address,omitempty"`
	Items       []ItemIn `json:"items"`
}

type VehicleIn struct {
	Type         string  `json:"type"`
	MaxVolumeFt3 float64 `json:"maxVolumeFt3"`
	MaxWeightLb  float64 `json:"maxWeightLb"`
	MaxPallets   int     `json:"maxPallets"`
}

type RouteIn struct {
	ID             string    `json:"id"`
	Vehicle        VehicleIn `json:"vehicle"`
	Stops          []StopIn  `json:"stops"`
	DrivingTimeMin float64   `json:"drivingTimeMin"`
}

type SettingsIn struct {
	MaxStopsPerRoute    int     `json:"maxStopsPerRoute"`
	MaxRouteDurationMin float64 `json:"maxRouteDurationMin"`
	MaxDrivingTimeMin   float64 `json:"maxDrivingTimeMin"`
	MaxServiceTimeMin   float64 `json:"maxServiceTimeMin"`
	BufferTimeMin       float64 `json:"bufferTimeMin"`
	VolumeCeilingPct    float64 `json:"volumeCeilingPct"`
	WeightCeilingPct    float64 `json:"weightCeilingPct"`
}

type EvaluateRequest struct {
	TenantID string      `json:"tenantId"`
	Route    RouteIn     `json:"route"`
	Settings *SettingsIn `json:"settings,omitempty"`
	// Persist controls whether the evaluation is stored for history.
	Persist bool `json:"persist,omitempty"`
}

type BatchEvaluateRequest struct {
	TenantID string      `json:"tenantId"`
	Routes   []RouteIn   `json:"routes"`
	Settings *SettingsIn `json:"settings,omitempty"`
	Persist  bool        `json:"persist,omitempty"`
}

type CriterionIn struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Enabled bool   `json:"enabled"`
	Weight  int    `json:"weight"`
}

type RawMetricsIn struct {
	DistanceKm    float64 `json:"distanceKm"`
	TimeMin       float64 `json:"timeMin"`
	Cost          float64 `json:"cost"`
	EfficiencyPct float64 `json:"efficiencyPct"`
}

type NormsIn struct {
	MaxDistanceKm float64 `json:"maxDistanceKm"`
	MaxTimeMin    float64 `json:"maxTimeMin"`
	MaxCost       float64 `json:"maxCost"`
}

type ScoreRequest struct {
	TenantID string        `json:"tenantId"`
	Criteria []CriterionIn `json:"criteria"`
	Metrics  RawMetricsIn  `json:"metrics"`
	Norms    *NormsIn      `json:"norms,omitempty"`
}

type ScoreResponse struct {
	Score float64 `json:"score"`
}

type ScenarioDeltasIn struct {
	OrderVolumePct         float64 `json:"orderVolumePct"`
	VehicleAvailabilityPct float64 `json:"vehicleAvailabilityPct"`
	FuelPricePct           float64 `json:"fuelPricePct"`
}

type RiskBandsIn struct {
	LowBelowPct    float64 `json:"lowBelowPct"`
	MediumBelowPct float64 `json:"mediumBelowPct"`
}

type WhatIfRequest struct {
	TenantID string           `json:"tenantId"`
	Name     string           `json:"name,omitempty"`
	Baseline RawMetricsIn     `json:"baseline"`
	Deltas   ScenarioDeltasIn `json:"deltas"`
	Bands    *RiskBandsIn     `json:"bands,omitempty"`
}

type ScenarioResult struct {
	Name                   string  `json:"name,omitempty"`
	CostImpactPct          float64 `json:"costImpactPct"`
	EfficiencyImpactPct    float64 `json:"efficiencyImpactPct"`
	ProjectedCost          float64 `json:"projectedCost"`
	ProjectedEfficiencyPct float64 `json:"projectedEfficiencyPct"`
	RiskLevel              string  `json:"riskLevel"`
}

// Read models for API responses.

type ViolationOut struct {
	Kind     string  `json:"kind"`
	Limit    float64 `json:"limit"`
	Actual   float64 `json:"actual"`
	Advisory bool    `json:"advisory"`
}

type LoadOut struct {
	VolumeFt3     float64 `json:"volumeFt3"`
	WeightLb      float64 `json:"weightLb"`
	Pallets       int     `json:"pallets"`
	VolumeUtilPct float64 `json:"volumeUtilPct"`
	WeightUtilPct float64 `json:"weightUtilPct"`
	PalletUtilPct float64 `json:"palletUtilPct"`
}

type StopTimeOut struct {
	StopID         string  `json:"stopId"`
	ServiceTimeMin float64 `json:"serviceTimeMin"`
}

type TotalsOut struct {
	Stops          int           `json:"stops"`
	ServiceTimeMin float64       `json:"serviceTimeMin"`
	DrivingTimeMin float64       `json:"drivingTimeMin"`
	BufferTimeMin  float64       `json:"bufferTimeMin"`
	TotalTimeMin   float64       `json:"totalTimeMin"`
	Load           LoadOut       `json:"load"`
	StopTimes      []StopTimeOut `json:"stopTimes,omitempty"`
}

type EvaluationOut struct {
	ID         string         `json:"id,omitempty"`
	TenantID   string         `json:"tenantId,omitempty"`
	RouteID    string         `json:"routeId"`
	Feasible   bool           `json:"feasible"`
	Totals     TotalsOut      `json:"totals"`
	Violations []ViolationOut `json:"violations"`
	CreatedAt  string         `json:"createdAt,omitempty"`
}

// Stored configuration bundles.

type SettingsPreset struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenantId"`
	Name      string     `json:"name"`
	Settings  SettingsIn `json:"settings"`
	CreatedAt string     `json:"createdAt,omitempty"`
}

type CriteriaSet struct {
	ID        string        `json:"id"`
	TenantID  string        `json:"tenantId"`
	Name      string        `json:"name"`
	Criteria  []CriterionIn `json:"criteria"`
	CreatedAt string        `json:"createdAt,omitempty"`
}

// Webhook subscriptions.

type SubscriptionRequest struct {
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret"`
}

type Subscription struct {
	ID       string   `json:"id"`
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret,omitempty"`
}
