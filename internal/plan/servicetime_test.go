package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"loadplan/internal/catalog"
)

func TestStopServiceTimeResidentialMedium(t *testing.T) {
	// base 15 + (5x2 item time + 2x2 per-item) + setup 5 + signature 3 = 37
	cat := catalog.Default()
	stop := Stop{
		ID:          "s1",
		ServiceType: "residential",
		Items:       []Item{{SizeCategory: "medium", Quantity: 2}},
	}

	got, err := StopServiceTime(cat, stop)
	require.NoError(t, err)
	require.Equal(t, 37.0, got)
}

func TestStopServiceTimeCommercialPallet(t *testing.T) {
	// base 20 + (15x1 + 1.5x1) + per-pallet 8x1 + setup 8 + signature 2 = 54.5
	cat := catalog.Default()
	stop := Stop{
		ID:          "s2",
		ServiceType: "commercial",
		Items:       []Item{{SizeCategory: "pallet", Quantity: 1}},
	}

	got, err := StopServiceTime(cat, stop)
	require.NoError(t, err)
	require.Equal(t, 54.5, got)
}

func TestStopServiceTimeEmptyStopMinimum(t *testing.T) {
	cat := catalog.Default()
	for _, svc := range []string{"residential", "commercial", "warehouse"} {
		std, err := cat.ServiceStandard(svc)
		require.NoError(t, err)

		got, err := StopServiceTime(cat, Stop{ID: "empty", ServiceType: svc})
		require.NoError(t, err)
		require.Equal(t, std.BaseTimeMin+std.SetupTimeMin+std.SignatureTimeMin, got, svc)
	}
}

func TestStopServiceTimeDeterministic(t *testing.T) {
	cat := catalog.Default()
	stop := Stop{
		ID:          "s3",
		ServiceType: "warehouse",
		Items: []Item{
			{SizeCategory: "small", Quantity: 7},
			{SizeCategory: "pallet", Quantity: 2},
		},
	}

	first, err := StopServiceTime(cat, stop)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := StopServiceTime(cat, stop)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestStopServiceTimeMonotonicInQuantity(t *testing.T) {
	cat := catalog.Default()
	prev := 0.0
	for qty := 1; qty <= 20; qty++ {
		got, err := StopServiceTime(cat, Stop{
			ID:          "s4",
			ServiceType: "residential",
			Items:       []Item{{SizeCategory: "large", Quantity: qty}},
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestStopServiceTimeErrors(t *testing.T) {
	cat := catalog.Default()

	_, err := StopServiceTime(cat, Stop{ID: "x", ServiceType: "festival"})
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = StopServiceTime(cat, Stop{
		ID:          "x",
		ServiceType: "residential",
		Items:       []Item{{SizeCategory: "hoverboard", Quantity: 1}},
	})
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = StopServiceTime(cat, Stop{
		ID:          "x",
		ServiceType: "residential",
		Items:       []Item{{SizeCategory: "small", Quantity: 0}},
	})
	require.Error(t, err)
}
