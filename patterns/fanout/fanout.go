// Package fanout runs independent per-item operations concurrently under a
// bounded worker pool while preserving the input order in the aggregated
// result. It is the concurrency primitive behind multi-topic course
// retrieval: completion order is unconstrained, aggregation order is not.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWidth is the worker pool size used when the caller does not
// configure one.
const DefaultWidth = 5

// Result pairs one item's output with the error its operation produced.
// Exactly one of Value and Err is meaningful.
type Result[O any] struct {
	Value O
	Err   error
}

// Map applies fn to every item with at most width concurrent executions and
// returns the results in the exact order of items, regardless of which
// invocation finished first. Ordering holds by construction: each worker
// writes into the slot of the item it was submitted for, and Map joins all
// workers before returning.
//
// Per-item failures are isolated: a failing fn records its error in the
// corresponding Result and never affects sibling invocations. Map blocks
// until every invocation has completed; no partial results are returned
// early. No worker outlives the call.
//
// The context is passed through to fn; cancellation is fn's responsibility
// to honor. A width of zero or less falls back to DefaultWidth.
func Map[I, O any](ctx context.Context, width int, items []I, fn func(ctx context.Context, item I) (O, error)) []Result[O] {
	if width <= 0 {
		width = DefaultWidth
	}

	results := make([]Result[O], len(items))

	var group errgroup.Group
	group.SetLimit(width)

	for index, item := range items {
		group.Go(func() error {
			value, err := fn(ctx, item)
			results[index] = Result[O]{Value: value, Err: err}
			// Errors stay in the result slot; returning nil keeps the
			// group from canceling sibling invocations.
			return nil
		})
	}

	// Wait never returns an error here because workers always return nil.
	_ = group.Wait()

	return results
}
