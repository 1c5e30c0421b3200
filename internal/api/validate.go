package api

import (
	"fmt"

	"loadplan/internal/model"
)

func validateRoute(rt *model.RouteIn) error {
	if rt.ID == "" {
		return fmt.Errorf("route id is required")
	}
	if rt.Vehicle.MaxVolumeFt3 <= 0 {
		return fmt.Errorf("vehicle maxVolumeFt3 must be > 0")
	}
	if rt.Vehicle.MaxWeightLb <= 0 {
		return fmt.Errorf("vehicle maxWeightLb must be > 0")
	}
	if rt.Vehicle.MaxPallets < 0 {
		return fmt.Errorf("vehicle maxPallets must be >= 0")
	}
	if rt.DrivingTimeMin < 0 {
		return fmt.Errorf("drivingTimeMin must be >= 0")
	}
	for i, st := range rt.Stops {
		if st.ServiceType == "" {
			return fmt.Errorf("stop %d: serviceType is required", i)
		}
		for j, it := range st.Items {
			if it.SizeCategory == "" {
				return fmt.Errorf("stop %d item %d: sizeCategory is required", i, j)
			}
			if it.Quantity < 1 {
				return fmt.Errorf("stop %d item %d: quantity must be >= 1", i, j)
			}
		}
	}
	return nil
}

func validateWhatIfRequest(req *model.WhatIfRequest) error {
	for _, d := range []struct {
		name string
		pct  float64
	}{
		{"orderVolumePct", req.Deltas.OrderVolumePct},
		{"vehicleAvailabilityPct", req.Deltas.VehicleAvailabilityPct},
		{"fuelPricePct", req.Deltas.FuelPricePct},
	} {
		if d.pct < -100 || d.pct > 500 {
			return fmt.Errorf("%s out of range [-100,500]", d.name)
		}
	}
	return nil
}
