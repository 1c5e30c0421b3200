package catalog

import "slices"

// Default returns the built-in reference data. Unit volumes/weights and
// handling times reflect common 3PL standards; deployments override or
// extend them with a seed file (see Load).
func Default() *Catalog {
	c, err := New(defaultSizes(), defaultStandards())
	if err != nil {
		// defaults are static; a failure here is a programming error
		panic(err)
	}
	return c
}

func defaultSizes() []SizeCategory {
	return []SizeCategory{
		{ID: "small", Name: "Small Parcel", UnitVolumeFt3: 1.5, UnitWeightLb: 15, ServiceTimeMin: 2},
		{ID: "medium", Name: "Medium Box", UnitVolumeFt3: 8, UnitWeightLb: 50, ServiceTimeMin: 5},
		{ID: "large", Name: "Large Freight", UnitVolumeFt3: 30, UnitWeightLb: 150, ServiceTimeMin: 8},
		{ID: "pallet", Name: "Standard Pallet", UnitVolumeFt3: 64, UnitWeightLb: 1500, ServiceTimeMin: 15, Pallet: true},
	}
}

func defaultStandards() []ServiceStandard {
	return []ServiceStandard{
		{ID: "residential", Name: "Residential Delivery", BaseTimeMin: 15, PerItemMin: 2, PerPalletMin: 10, SetupTimeMin: 5, SignatureTimeMin: 3},
		{ID: "commercial", Name: "Commercial Delivery", BaseTimeMin: 20, PerItemMin: 1.5, PerPalletMin: 8, SetupTimeMin: 8, SignatureTimeMin: 2},
		{ID: "warehouse", Name: "Warehouse Transfer", BaseTimeMin: 10, PerItemMin: 1, PerPalletMin: 5, SetupTimeMin: 12, SignatureTimeMin: 1},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
