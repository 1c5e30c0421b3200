package plan

import (
	"fmt"

	"loadplan/internal/catalog"
)

// StopServiceTime computes the service time in minutes for a single stop.
//
// The time is the service standard's base time, plus for each item both the
// size category's per-unit service time and the standard's per-item time
// (each multiplied by quantity), plus the standard's per-pallet time for
// palletized categories, plus setup and signature time once per stop.
//
// A stop with no items still incurs base + setup + signature: arriving at a
// location always has a minimum cost. An unknown service type or size
// category fails the whole computation; partial totals would understate
// operational load.
func StopServiceTime(cat *catalog.Catalog, stop Stop) (float64, error) {
	std, err := cat.ServiceStandard(stop.ServiceType)
	if err != nil {
		return 0, fmt.Errorf("stop %s: %w", stop.ID, err)
	}

	total := std.BaseTimeMin
	for _, it := range stop.Items {
		if it.Quantity < 1 {
			return 0, fmt.Errorf("stop %s: item %q: quantity must be >= 1, got %d", stop.ID, it.SizeCategory, it.Quantity)
		}
		sc, err := cat.SizeCategory(it.SizeCategory)
		if err != nil {
			return 0, fmt.Errorf("stop %s: %w", stop.ID, err)
		}
		qty := float64(it.Quantity)
		total += sc.ServiceTimeMin*qty + std.PerItemMin*qty
		if sc.Pallet {
			total += std.PerPalletMin * qty
		}
	}
	total += std.SetupTimeMin + std.SignatureTimeMin
	return total, nil
}
