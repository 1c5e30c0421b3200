package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"loadplan/internal/catalog"
)

// freightCatalog adds denser test categories so load totals can be pinned
// exactly without depending on the default unit values.
func freightCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(
		[]catalog.SizeCategory{
			{ID: "drum", UnitVolumeFt3: 50.9, UnitWeightLb: 600, ServiceTimeMin: 6},
			{ID: "skid", UnitVolumeFt3: 64, UnitWeightLb: 1500, ServiceTimeMin: 15, Pallet: true},
			{ID: "carton", UnitVolumeFt3: 2, UnitWeightLb: 20, ServiceTimeMin: 2},
		},
		[]catalog.ServiceStandard{
			{ID: "dock", BaseTimeMin: 10, PerItemMin: 1, PerPalletMin: 5, SetupTimeMin: 5, SignatureTimeMin: 1},
		},
	)
	require.NoError(t, err)
	return cat
}

func TestComputeLoadUtilization(t *testing.T) {
	// {volume 765, weight 12000, pallets 4} against {900, 16000, 6}
	// -> utilization {85%, 75%, ~67%}, not over capacity.
	cat := freightCatalog(t)
	vc := VehicleCapacity{Type: "box-truck", MaxVolumeFt3: 900, MaxWeightLb: 16000, MaxPallets: 6}
	items := []Item{
		{SizeCategory: "drum", Quantity: 10}, // 509 ft3, 6000 lb
		{SizeCategory: "skid", Quantity: 4},  // 256 ft3, 6000 lb, 4 pallets
	}

	load, err := ComputeLoad(cat, vc, items)
	require.NoError(t, err)
	require.InDelta(t, 765, load.VolumeFt3, 1e-9)
	require.InDelta(t, 12000, load.WeightLb, 1e-9)
	require.Equal(t, 4, load.Pallets)
	require.InDelta(t, 85, load.VolumeUtilPct, 1e-9)
	require.InDelta(t, 75, load.WeightUtilPct, 1e-9)
	require.InDelta(t, 100.0*4/6, load.PalletUtilPct, 1e-9)
	require.False(t, load.OverCapacity())
}

func TestComputeLoadAdditivity(t *testing.T) {
	cat := freightCatalog(t)
	vc := VehicleCapacity{Type: "box-truck", MaxVolumeFt3: 900, MaxWeightLb: 16000, MaxPallets: 6}
	a := []Item{{SizeCategory: "drum", Quantity: 3}, {SizeCategory: "skid", Quantity: 1}}
	b := []Item{{SizeCategory: "carton", Quantity: 12}, {SizeCategory: "skid", Quantity: 2}}

	la, err := ComputeLoad(cat, vc, a)
	require.NoError(t, err)
	lb, err := ComputeLoad(cat, vc, b)
	require.NoError(t, err)
	lab, err := ComputeLoad(cat, vc, append(append([]Item{}, a...), b...))
	require.NoError(t, err)

	require.InDelta(t, la.VolumeFt3+lb.VolumeFt3, lab.VolumeFt3, 1e-9)
	require.InDelta(t, la.WeightLb+lb.WeightLb, lab.WeightLb, 1e-9)
	require.Equal(t, la.Pallets+lb.Pallets, lab.Pallets)
}

func TestOverCapacityByOneUnit(t *testing.T) {
	cat := freightCatalog(t)
	// Weight limit exactly one carton short; volume and pallets stay low.
	vc := VehicleCapacity{Type: "van", MaxVolumeFt3: 1000, MaxWeightLb: 199, MaxPallets: 6}

	load, err := ComputeLoad(cat, vc, []Item{{SizeCategory: "carton", Quantity: 10}}) // 200 lb
	require.NoError(t, err)
	require.True(t, load.OverCapacity())
	require.Greater(t, load.WeightUtilPct, 100.0)
	require.Less(t, load.VolumeUtilPct, 100.0)
	require.Equal(t, 0.0, load.PalletUtilPct)
}

func TestUtilizationNotClamped(t *testing.T) {
	cat := freightCatalog(t)
	vc := VehicleCapacity{Type: "van", MaxVolumeFt3: 100, MaxWeightLb: 100000, MaxPallets: 10}

	load, err := ComputeLoad(cat, vc, []Item{{SizeCategory: "drum", Quantity: 4}}) // 203.6 ft3
	require.NoError(t, err)
	require.InDelta(t, 203.6, load.VolumeUtilPct, 1e-9)
}

func TestComputeLoadErrors(t *testing.T) {
	cat := freightCatalog(t)
	vc := VehicleCapacity{Type: "van", MaxVolumeFt3: 100, MaxWeightLb: 100, MaxPallets: 1}

	_, err := ComputeLoad(cat, vc, []Item{{SizeCategory: "mystery", Quantity: 1}})
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = ComputeLoad(cat, vc, []Item{{SizeCategory: "carton", Quantity: -2}})
	require.Error(t, err)
}

func TestZeroPalletPositions(t *testing.T) {
	cat := freightCatalog(t)
	vc := VehicleCapacity{Type: "cargo-van", MaxVolumeFt3: 300, MaxWeightLb: 3000, MaxPallets: 0}

	load, err := ComputeLoad(cat, vc, []Item{{SizeCategory: "skid", Quantity: 1}})
	require.NoError(t, err)
	require.True(t, load.OverCapacity())
}
