package classroom

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// mapOrdered calls fn on every item concurrently, at most `limit` at a time (no cap when limit <= 0),
// and returns the results in input order whatever order the calls complete in.
// fn must handle its own failures: mapOrdered always waits for every call.
func mapOrdered[T, R any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
