package flow

import (
	"errors"
	"fmt"
)

// Builder constructs a validated Flow[S] using a fluent API. Nodes and
// edges are added incrementally and Build() performs structural validation.
//
// The builder enforces the following constraints:
//   - Node names must be unique and non-empty
//   - Every node has exactly one outgoing edge: unconditional or routed
//   - Edge targets and router table values reference existing nodes or End
//   - The start node exists
//
// Example:
//
//	f, err := flow.NewBuilder[Turn]("detect_language").
//	    AddNode("detect_language", detectLanguage).
//	    AddNode("classify_query", classify).
//	    AddEdge("detect_language", "classify_query").
//	    AddConditionalEdges("classify_query", classificationRouter, routes).
//	    Build()
type Builder[S any] struct {
	start string

	config flowConfig

	nodes map[string]*node[S]

	// nodeOrder preserves insertion order for deterministic validation
	// error reporting.
	nodeOrder []string

	// buildErrors accumulates validation errors from AddNode/AddEdge and
	// is reported when Build() is called.
	buildErrors []error
}

// NewBuilder creates a Builder for a flow starting at the named node.
// Flow-level options (WithMaxVisits, WithNodeTimeout, WithRunTimeout,
// WithObserver) are applied here.
func NewBuilder[S any](start string, opts ...Option) *Builder[S] {
	config := flowConfig{}
	for _, opt := range opts {
		opt(&config)
	}

	return &Builder[S]{
		start:  start,
		config: config,
		nodes:  make(map[string]*node[S]),
	}
}

// AddNode registers a transformation under a unique name. Returns the
// builder for chaining; duplicate or invalid registrations are recorded and
// reported at Build() time.
func (builder *Builder[S]) AddNode(name string, fn NodeFunc[S]) *Builder[S] {
	if name == "" || name == End {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("node name %q is reserved or empty", name))
		return builder
	}

	if fn == nil {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("nil transformation for node %q", name))
		return builder
	}

	if _, exists := builder.nodes[name]; exists {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("duplicate node name %q", name))
		return builder
	}

	builder.nodes[name] = &node[S]{name: name, fn: fn}
	builder.nodeOrder = append(builder.nodeOrder, name)

	return builder
}

// AddEdge sets the unconditional successor of a node. The target may be
// another node or the End sentinel.
func (builder *Builder[S]) AddEdge(from, to string) *Builder[S] {
	sourceNode, exists := builder.nodes[from]
	if !exists {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("edge from unregistered node %q", from))
		return builder
	}

	if sourceNode.next != "" || sourceNode.router != nil {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("node %q already has an outgoing edge", from))
		return builder
	}

	sourceNode.next = to
	return builder
}

// AddConditionalEdges attaches a router to a node together with its fixed
// edge table. After the node's transformation runs, the router is invoked
// with the post-transformation state and its return value is looked up in
// the table; a key absent from the table fails the run with a RoutingError.
func (builder *Builder[S]) AddConditionalEdges(from string, route Router[S], table map[string]string) *Builder[S] {
	sourceNode, exists := builder.nodes[from]
	if !exists {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("conditional edges from unregistered node %q", from))
		return builder
	}

	if sourceNode.next != "" || sourceNode.router != nil {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("node %q already has an outgoing edge", from))
		return builder
	}

	if route == nil || len(table) == 0 {
		builder.buildErrors = append(builder.buildErrors, fmt.Errorf("node %q needs a router and a non-empty edge table", from))
		return builder
	}

	tableCopy := make(map[string]string, len(table))
	for key, target := range table {
		tableCopy[key] = target
	}

	sourceNode.router = &conditionalEdge[S]{route: route, table: tableCopy}
	return builder
}

// Build validates the flow structure and produces an executable Flow[S].
//
//  1. No accumulated build errors from AddNode/AddEdge
//  2. At least one node exists and the start node is registered
//  3. Every node has exactly one outgoing edge
//  4. All edge targets and router table values are registered nodes or End
//
// The visit budget defaults to three times the node count when not set via
// WithMaxVisits, which accommodates the one-iteration feedback cycle with
// room to spare while still catching runaway routing.
func (builder *Builder[S]) Build() (*Flow[S], error) {
	if len(builder.buildErrors) > 0 {
		return nil, fmt.Errorf("flow build errors: %w", errors.Join(builder.buildErrors...))
	}

	if len(builder.nodes) == 0 {
		return nil, fmt.Errorf("flow must contain at least one node")
	}

	if _, exists := builder.nodes[builder.start]; !exists {
		return nil, fmt.Errorf("start node %q is not registered", builder.start)
	}

	for _, name := range builder.nodeOrder {
		flowNode := builder.nodes[name]

		if flowNode.next == "" && flowNode.router == nil {
			return nil, fmt.Errorf("node %q has no outgoing edge", name)
		}

		if flowNode.next != "" {
			if err := builder.checkTarget(name, flowNode.next); err != nil {
				return nil, err
			}
			continue
		}

		for key, target := range flowNode.router.table {
			if err := builder.checkTarget(name+"/"+key, target); err != nil {
				return nil, err
			}
		}
	}

	config := builder.config
	if config.maxVisits <= 0 {
		config.maxVisits = 3 * len(builder.nodes)
	}

	return &Flow[S]{
		start:  builder.start,
		nodes:  builder.nodes,
		config: config,
	}, nil
}

func (builder *Builder[S]) checkTarget(source, target string) error {
	if target == End {
		return nil
	}
	if _, exists := builder.nodes[target]; !exists {
		return fmt.Errorf("edge %s references unregistered node %q", source, target)
	}
	return nil
}
