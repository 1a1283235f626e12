package flow

import (
	"context"
	"time"

	"github.com/saharlajmi1/recmooc4all/providers/observability"
)

// Attribute and metric names for flow observability.
const (
	attrFlowNode       = "flow.node"
	attrFlowRouteKey   = "flow.route.key"
	attrFlowVisits     = "flow.visits"
	attrFlowTotalNodes = "flow.total_nodes"

	metricFlowNodeDuration = "recmooc.flow.node.duration"
	metricFlowNodeCount    = "recmooc.flow.node.count"
	metricFlowRunDuration  = "recmooc.flow.run.duration"
)

func (flow *Flow[S]) observeRunStart(ctx context.Context) {
	if flow.config.observer == nil {
		return
	}

	flow.config.observer.Debug(ctx, "flow run started",
		observability.Int(attrFlowTotalNodes, len(flow.nodes)),
		observability.String("flow.start", flow.start),
	)
}

func (flow *Flow[S]) observeRunCompleted(ctx context.Context, visits int, duration time.Duration) {
	if flow.config.observer == nil {
		return
	}

	flow.config.observer.Histogram(metricFlowRunDuration).Record(ctx, duration.Seconds())
	flow.config.observer.Info(ctx, "flow run completed",
		observability.Int(attrFlowVisits, visits),
		observability.Duration(observability.AttrDuration, duration),
	)
}

func (flow *Flow[S]) observeRunFailed(ctx context.Context, runError error, duration time.Duration) {
	if flow.config.observer == nil {
		return
	}

	flow.config.observer.Histogram(metricFlowRunDuration).Record(ctx, duration.Seconds())
	flow.config.observer.Error(ctx, "flow run failed",
		observability.Error(runError),
		observability.Duration(observability.AttrDuration, duration),
	)
}

func (flow *Flow[S]) observeNodeStart(ctx context.Context, nodeName string) {
	if flow.config.observer == nil {
		return
	}

	flow.config.observer.Debug(ctx, "node started",
		observability.String(attrFlowNode, nodeName),
	)
}

func (flow *Flow[S]) observeNodeCompleted(ctx context.Context, nodeName string, duration time.Duration) {
	if flow.config.observer == nil {
		return
	}

	flow.config.observer.Histogram(metricFlowNodeDuration).Record(ctx, duration.Seconds(),
		observability.String(attrFlowNode, nodeName),
	)
	flow.config.observer.Counter(metricFlowNodeCount).Add(ctx, 1,
		observability.String(attrFlowNode, nodeName),
		observability.String(observability.AttrStatus, "completed"),
	)
	flow.config.observer.Info(ctx, "node completed",
		observability.String(attrFlowNode, nodeName),
		observability.Duration(observability.AttrDuration, duration),
	)
}

func (flow *Flow[S]) observeNodeFailed(ctx context.Context, nodeName string, nodeError error, duration time.Duration) {
	if flow.config.observer == nil {
		return
	}

	flow.config.observer.Counter(metricFlowNodeCount).Add(ctx, 1,
		observability.String(attrFlowNode, nodeName),
		observability.String(observability.AttrStatus, "failed"),
	)
	flow.config.observer.Error(ctx, "node failed",
		observability.String(attrFlowNode, nodeName),
		observability.Error(nodeError),
		observability.Duration(observability.AttrDuration, duration),
	)
}

func (flow *Flow[S]) observeRouting(ctx context.Context, nodeName, key string, mapped bool) {
	if flow.config.observer == nil {
		return
	}

	if !mapped {
		flow.config.observer.Error(ctx, "router returned unmapped key",
			observability.String(attrFlowNode, nodeName),
			observability.String(attrFlowRouteKey, key),
		)
		return
	}

	flow.config.observer.Debug(ctx, "routed",
		observability.String(attrFlowNode, nodeName),
		observability.String(attrFlowRouteKey, key),
	)
}
