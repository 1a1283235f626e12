package flow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/saharlajmi1/recmooc4all/providers/observability"
)

// End is the terminal sentinel. An edge or router targeting End halts the
// run and returns the current state to the caller.
const End = "__end__"

// NodeFunc is a named transformation applied to the state. Side effects are
// limited to capability calls made through the closed-over dependencies; a
// node never mutates anything shared between turns.
//
// The context carries cancellation and the per-node timeout configured on
// the flow, and must be passed to any blocking capability call.
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// Router selects the next node key from the post-transformation state.
// The returned key must be present in the edge table registered alongside
// the router; any other value is a RoutingError.
type Router[S any] func(state S) string

// node pairs a registered transformation with its outgoing edge. Exactly
// one of next and router is set after a successful Build.
type node[S any] struct {
	name   string
	fn     NodeFunc[S]
	next   string
	router *conditionalEdge[S]
}

// conditionalEdge is a router plus its fixed table of allowed targets.
type conditionalEdge[S any] struct {
	route Router[S]
	table map[string]string
}

// allowedKeys returns the router table keys in sorted order, for error
// messages and logs.
func (edge *conditionalEdge[S]) allowedKeys() []string {
	keys := make([]string, 0, len(edge.table))
	for key := range edge.table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// flowConfig holds the execution configuration populated by Options.
type flowConfig struct {
	// maxVisits bounds the total number of node visits per run. Zero means
	// derive a default from the node count at Build time.
	maxVisits int

	// nodeTimeout is the maximum duration for a single node, including the
	// capability calls it makes. Zero means no per-node timeout.
	nodeTimeout time.Duration

	// runTimeout is the deadline for the whole run. Zero means none.
	runTimeout time.Duration

	// observer receives structured execution events. Nil disables
	// observability with zero overhead.
	observer observability.Provider
}

// Flow is a validated, executable state machine over states of type S.
// A Flow is stateless across runs and safe for concurrent Run calls; all
// per-run state lives on the stack of Run.
type Flow[S any] struct {
	start  string
	nodes  map[string]*node[S]
	config flowConfig
}

// RoutingError reports a router returning a key absent from its edge table.
// It is a defect in the router table, not a retryable condition.
type RoutingError struct {
	// Node is the name of the node whose router misbehaved.
	Node string

	// Key is the value the router returned.
	Key string

	// Allowed lists the keys the edge table accepts, sorted.
	Allowed []string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("flow: router after node %q returned unmapped key %q (allowed: %s)",
		e.Node, e.Key, strings.Join(e.Allowed, ", "))
}

// NodeError wraps a failure inside a node transformation. The turn fails
// fast: no partial answer is substituted.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("flow: node %q failed: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// BudgetError reports a run that exceeded its visit budget, which means a
// router cycle failed to converge.
type BudgetError struct {
	Limit int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("flow: visit budget of %d node visits exceeded", e.Limit)
}
