package plan

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"loadplan/internal/catalog"
)

func TestEvaluateBatchPreservesOrder(t *testing.T) {
	cat := catalog.Default()
	routes := make([]Route, 40)
	for i := range routes {
		routes[i] = Route{
			ID:             fmt.Sprintf("r%02d", i),
			Vehicle:        bigTruck(),
			Stops:          tinyStops(1 + i%5),
			DrivingTimeMin: float64(30 + i),
		}
	}

	evs, err := EvaluateBatch(context.Background(), cat, routes, DefaultSettings())
	require.NoError(t, err)
	require.Len(t, evs, len(routes))
	for i, ev := range evs {
		require.Equal(t, routes[i].ID, ev.RouteID)
		require.Equal(t, len(routes[i].Stops), ev.Totals.Stops)
	}
}

func TestEvaluateBatchCancelled(t *testing.T) {
	cat := catalog.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	routes := make([]Route, 100)
	for i := range routes {
		routes[i] = Route{ID: fmt.Sprintf("r%d", i), Vehicle: bigTruck(), Stops: tinyStops(3)}
	}

	_, err := EvaluateBatch(ctx, cat, routes, DefaultSettings())
	require.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateBatchPropagatesDataErrors(t *testing.T) {
	cat := catalog.Default()
	routes := []Route{
		{ID: "good", Vehicle: bigTruck(), Stops: tinyStops(2)},
		{ID: "bad", Vehicle: bigTruck(), Stops: []Stop{{ID: "x", ServiceType: "unknown"}}},
	}

	_, err := EvaluateBatch(context.Background(), cat, routes, DefaultSettings())
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestEvaluateBatchEmpty(t *testing.T) {
	evs, err := EvaluateBatch(context.Background(), catalog.Default(), nil, DefaultSettings())
	require.NoError(t, err)
	require.Empty(t, evs)
}
