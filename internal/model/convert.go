package model

import "loadplan/internal/plan"

// ToPlan converts a wire route to the engine type.
func (r RouteIn) ToPlan() plan.Route {
	stops := make([]plan.Stop, 0, len(r.Stops))
	for _, s := range r.Stops {
		items := make([]plan.Item, 0, len(s.Items))
		for _, it := range s.Items {
			items = append(items, plan.Item{SizeCategory: it.SizeCategory, Quantity: it.Quantity})
		}
		stops = append(stops, plan.Stop{ID: s.ID, ServiceType: s.ServiceType, Address: s.Address, Items: items})
	}
	return plan.Route{
		ID: r.ID,
		Vehicle: plan.VehicleCapacity{
			Type:         r.Vehicle.Type,
			MaxVolumeFt3: r.Vehicle.MaxVolumeFt3,
			MaxWeightLb:  r.Vehicle.MaxWeightLb,
			MaxPallets:   r.Vehicle.MaxPallets,
		},
		Stops:          stops,
		DrivingTimeMin: r.DrivingTimeMin,
	}
}

// ToPlan converts wire settings; a nil receiver falls back to defaults.
func (s *SettingsIn) ToPlan() plan.Settings {
	if s == nil {
		return plan.DefaultSettings()
	}
	return plan.Settings{
		MaxStopsPerRoute:    s.MaxStopsPerRoute,
		MaxRouteDurationMin: s.MaxRouteDurationMin,
		MaxDrivingTimeMin:   s.MaxDrivingTimeMin,
		MaxServiceTimeMin:   s.MaxServiceTimeMin,
		BufferTimeMin:       s.BufferTimeMin,
		VolumeCeilingPct:    s.VolumeCeilingPct,
		WeightCeilingPct:    s.WeightCeilingPct,
	}
}

func CriteriaToPlan(in []CriterionIn) []plan.Criterion {
	out := make([]plan.Criterion, 0, len(in))
	for _, c := range in {
		out = append(out, plan.Criterion{ID: c.ID, Name: c.Name, Enabled: c.Enabled, Weight: c.Weight})
	}
	return out
}

func (m RawMetricsIn) ToPlan() plan.RawMetrics {
	return plan.RawMetrics{
		DistanceKm:    m.DistanceKm,
		TimeMin:       m.TimeMin,
		Cost:          m.Cost,
		EfficiencyPct: m.EfficiencyPct,
	}
}

// ToPlan converts norms; a nil receiver falls back to defaults.
func (n *NormsIn) ToPlan() plan.MetricNorms {
	if n == nil {
		return plan.DefaultNorms()
	}
	return plan.MetricNorms{MaxDistanceKm: n.MaxDistanceKm, MaxTimeMin: n.MaxTimeMin, MaxCost: n.MaxCost}
}

func (d ScenarioDeltasIn) ToPlan() plan.ScenarioDeltas {
	return plan.ScenarioDeltas{
		OrderVolumePct:         d.OrderVolumePct,
		VehicleAvailabilityPct: d.VehicleAvailabilityPct,
		FuelPricePct:           d.FuelPricePct,
	}
}

// ToPlan converts risk bands; a nil receiver falls back to defaults.
func (b *RiskBandsIn) ToPlan() plan.RiskBands {
	if b == nil {
		return plan.DefaultRiskBands()
	}
	return plan.RiskBands{LowBelowPct: b.LowBelowPct, MediumBelowPct: b.MediumBelowPct}
}

// FromEvaluation converts an engine evaluation to its read model.
func FromEvaluation(ev plan.Evaluation) EvaluationOut {
	violations := make([]ViolationOut, 0, len(ev.Violations))
	for _, v := range ev.Violations {
		violations = append(violations, ViolationOut{
			Kind:     string(v.Kind),
			Limit:    v.Limit,
			Actual:   v.Actual,
			Advisory: v.Advisory,
		})
	}
	stopTimes := make([]StopTimeOut, 0, len(ev.Totals.StopTimes))
	for _, st := range ev.Totals.StopTimes {
		stopTimes = append(stopTimes, StopTimeOut{StopID: st.StopID, ServiceTimeMin: st.ServiceTimeMin})
	}
	return EvaluationOut{
		RouteID:  ev.RouteID,
		Feasible: ev.Feasible(),
		Totals: TotalsOut{
			Stops:          ev.Totals.Stops,
			ServiceTimeMin: ev.Totals.ServiceTimeMin,
			DrivingTimeMin: ev.Totals.DrivingTimeMin,
			BufferTimeMin:  ev.Totals.BufferTimeMin,
			TotalTimeMin:   ev.Totals.TotalTimeMin,
			Load: LoadOut{
				VolumeFt3:     ev.Totals.Load.VolumeFt3,
				WeightLb:      ev.Totals.Load.WeightLb,
				Pallets:       ev.Totals.Load.Pallets,
				VolumeUtilPct: ev.Totals.Load.VolumeUtilPct,
				WeightUtilPct: ev.Totals.Load.WeightUtilPct,
				PalletUtilPct: ev.Totals.Load.PalletUtilPct,
			},
			StopTimes: stopTimes,
		},
		Violations: violations,
	}
}

// FromScenarioResult converts an engine scenario result to its read model.
func FromScenarioResult(name string, res plan.ScenarioResult) ScenarioResult {
	return ScenarioResult{
		Name:                   name,
		CostImpactPct:          res.CostImpactPct,
		EfficiencyImpactPct:    res.EfficiencyImpactPct,
		ProjectedCost:          res.ProjectedCost,
		ProjectedEfficiencyPct: res.ProjectedEfficiencyPct,
		RiskLevel:              string(res.RiskLevel),
	}
}
