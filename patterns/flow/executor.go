package flow

import (
	"context"
	"fmt"
	"time"
)

// Run drives the state from the start node to the End sentinel.
//
// On each step the executor applies the current node's transformation, then
// determines the next node: a routed node invokes its router with the
// post-transformation state and follows the mapped target; otherwise the
// single unconditional edge is followed. The walk is strictly sequential;
// any concurrency lives inside individual nodes.
//
// Failure semantics:
//   - a node error fails the run immediately, wrapped as *NodeError
//   - a router key absent from its table fails the run with *RoutingError
//   - exceeding the visit budget fails the run with *BudgetError
//   - context cancellation is checked before every node visit
//
// No partial state is returned on failure: the caller gets the zero value
// of S together with the error.
func (flow *Flow[S]) Run(ctx context.Context, initial S) (S, error) {
	var zero S

	if flow.config.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flow.config.runTimeout)
		defer cancel()
	}

	runStart := time.Now()
	flow.observeRunStart(ctx)

	state := initial
	current := flow.start
	visits := 0

	for current != End {
		if err := ctx.Err(); err != nil {
			flow.observeRunFailed(ctx, err, time.Since(runStart))
			return zero, fmt.Errorf("flow canceled before node %q: %w", current, err)
		}

		visits++
		if visits > flow.config.maxVisits {
			budgetErr := &BudgetError{Limit: flow.config.maxVisits}
			flow.observeRunFailed(ctx, budgetErr, time.Since(runStart))
			return zero, budgetErr
		}

		flowNode := flow.nodes[current]

		next, nodeErr := flow.step(ctx, flowNode, &state)
		if nodeErr != nil {
			flow.observeRunFailed(ctx, nodeErr, time.Since(runStart))
			return zero, nodeErr
		}

		current = next
	}

	flow.observeRunCompleted(ctx, visits, time.Since(runStart))
	return state, nil
}

// step executes one node and resolves its successor. The state is updated
// in place on success so the caller keeps the last good state for the next
// iteration.
func (flow *Flow[S]) step(ctx context.Context, flowNode *node[S], state *S) (string, error) {
	nodeCtx := ctx
	if flow.config.nodeTimeout > 0 {
		var cancel context.CancelFunc
		nodeCtx, cancel = context.WithTimeout(ctx, flow.config.nodeTimeout)
		defer cancel()
	}

	nodeStart := time.Now()
	flow.observeNodeStart(nodeCtx, flowNode.name)

	transformed, err := flowNode.fn(nodeCtx, *state)
	nodeDuration := time.Since(nodeStart)

	if err != nil {
		flow.observeNodeFailed(nodeCtx, flowNode.name, err, nodeDuration)
		return "", &NodeError{Node: flowNode.name, Err: err}
	}

	*state = transformed
	flow.observeNodeCompleted(nodeCtx, flowNode.name, nodeDuration)

	if flowNode.router == nil {
		return flowNode.next, nil
	}

	// Routers consult the post-transformation state.
	key := flowNode.router.route(*state)
	target, mapped := flowNode.router.table[key]
	if !mapped {
		routingErr := &RoutingError{
			Node:    flowNode.name,
			Key:     key,
			Allowed: flowNode.router.allowedKeys(),
		}
		flow.observeRouting(nodeCtx, flowNode.name, key, false)
		return "", routingErr
	}

	flow.observeRouting(nodeCtx, flowNode.name, key, true)
	return target, nil
}
