package flow

import (
	"time"

	"github.com/saharlajmi1/recmooc4all/providers/observability"
)

// Option is a functional option for configuring flow execution.
// Options are applied during Builder construction via NewBuilder.
type Option func(*flowConfig)

// WithMaxVisits bounds the total number of node visits per run. A run
// exceeding the budget fails with *BudgetError. Zero or negative values
// fall back to the Build-time default of three times the node count.
//
// The budget is what makes cyclic routing safe: the feedback loop re-enters
// classification at most a handful of times before the run is cut off.
func WithMaxVisits(maxVisits int) Option {
	return func(config *flowConfig) {
		config.maxVisits = maxVisits
	}
}

// WithNodeTimeout sets the maximum duration for a single node's
// transformation, including any capability calls it makes. When the timeout
// is exceeded the node's context is canceled and the run fails with the
// node's error. Zero (default) means no per-node timeout.
func WithNodeTimeout(timeout time.Duration) Option {
	return func(config *flowConfig) {
		config.nodeTimeout = timeout
	}
}

// WithRunTimeout sets the deadline for the whole run. Cancellation
// propagates to the current node and to any fan-out work it started.
// Zero (default) means no deadline.
func WithRunTimeout(timeout time.Duration) Option {
	return func(config *flowConfig) {
		config.runTimeout = timeout
	}
}

// WithObserver attaches an observability provider receiving structured
// execution events (run and node lifecycle, routing decisions). A nil
// observer disables observability with zero overhead.
func WithObserver(observer observability.Provider) Option {
	return func(config *flowConfig) {
		config.observer = observer
	}
}
