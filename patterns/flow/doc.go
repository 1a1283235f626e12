// Package flow implements a run-to-completion state machine for
// orchestrating multi-step conversational workflows. Each node is a named
// transformation of the turn state; edges are either unconditional or
// selected by a router function consulting the post-transformation state.
//
// Unlike a DAG executor, a flow may contain cycles (a feedback node may
// route back to classification). Safety comes from an explicit visit
// budget: the executor counts node visits and fails the run when the budget
// is exceeded, so no router table can loop a turn forever.
//
// The main entry points are [NewBuilder] to construct a flow and [Flow.Run]
// to drive a state from the start node to the [End] sentinel. A router
// returning a key absent from its edge table is a construction defect
// surfaced as [*RoutingError], never silently defaulted.
//
// Example:
//
//	f, err := flow.NewBuilder[Turn]("classify").
//	    AddNode("classify", classifyNode).
//	    AddNode("answer", answerNode).
//	    AddConditionalEdges("classify", route, map[string]string{
//	        "answer": "answer",
//	        "done":   flow.End,
//	    }).
//	    AddEdge("answer", flow.End).
//	    Build()
//
//	final, err := f.Run(ctx, initial)
package flow
