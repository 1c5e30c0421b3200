package plan

import (
	"fmt"

	"loadplan/internal/catalog"
)

// ComputeLoad aggregates a set of items into a VehicleLoad against one
// vehicle type. Each dimension (volume, weight, pallet positions) is
// accumulated and utilized independently; there is no single capacity
// scalar, so callers can see which dimension is the binding constraint.
func ComputeLoad(cat *catalog.Catalog, vc VehicleCapacity, items []Item) (VehicleLoad, error) {
	var load VehicleLoad
	for _, it := range items {
		if it.Quantity < 1 {
			return VehicleLoad{}, fmt.Errorf("item %q: quantity must be >= 1, got %d", it.SizeCategory, it.Quantity)
		}
		sc, err := cat.SizeCategory(it.SizeCategory)
		if err != nil {
			return VehicleLoad{}, err
		}
		qty := float64(it.Quantity)
		load.VolumeFt3 += sc.UnitVolumeFt3 * qty
		load.WeightLb += sc.UnitWeightLb * qty
		if sc.Pallet {
			load.Pallets += it.Quantity
		}
	}
	load.VolumeUtilPct = utilization(load.VolumeFt3, vc.MaxVolumeFt3)
	load.WeightUtilPct = utilization(load.WeightLb, vc.MaxWeightLb)
	load.PalletUtilPct = utilization(float64(load.Pallets), float64(vc.MaxPallets))
	return load, nil
}

// OverCapacity reports whether any dimension exceeds its limit. This is a
// hard constraint: an over-capacity route is infeasible regardless of its
// time budget.
func (l VehicleLoad) OverCapacity() bool {
	return l.VolumeUtilPct > 100 || l.WeightUtilPct > 100 || l.PalletUtilPct > 100
}

// utilization is used/limit x 100, unclamped. A zero limit with a non-zero
// use reads as unbounded overflow; a zero limit with zero use is 0.
func utilization(used, limit float64) float64 {
	if limit <= 0 {
		if used > 0 {
			return 200 // no capacity at all: flag as overflow
		}
		return 0
	}
	return used / limit * 100
}
