package plan

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"loadplan/internal/catalog"
)

// batchConcurrency bounds the fan-out of EvaluateBatch. Evaluations are
// short and CPU-bound, so a small fixed pool is enough.
const batchConcurrency = 8

// EvaluateBatch evaluates many routes against one settings block,
// preserving input order. Routes share no state, so evaluations run in
// parallel. Cancellation is checked between route evaluations, not inside
// a single route's arithmetic: individual evaluations are O(stops).
func EvaluateBatch(ctx context.Context, cat *catalog.Catalog, routes []Route, settings Settings) ([]Evaluation, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	out := make([]Evaluation, len(routes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, route := range routes {
		i, route := i, route
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ev, err := Evaluate(cat, route, settings)
			if err != nil {
				return fmt.Errorf("batch route %d: %w", i, err)
			}
			out[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
