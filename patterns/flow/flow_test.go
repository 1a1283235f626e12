package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// testState is a minimal state for executor tests: a trace of visited nodes
// plus a routing hint.
type testState struct {
	visited []string
	route   string
	counter int
}

func recordingNode(name string) NodeFunc[testState] {
	return func(_ context.Context, state testState) (testState, error) {
		state.visited = append(state.visited, name)
		return state, nil
	}
}

func TestRunLinearFlow(t *testing.T) {
	f, err := NewBuilder[testState]("first").
		AddNode("first", recordingNode("first")).
		AddNode("second", recordingNode("second")).
		AddNode("third", recordingNode("third")).
		AddEdge("first", "second").
		AddEdge("second", "third").
		AddEdge("third", End).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	final, err := f.Run(context.Background(), testState{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []string{"first", "second", "third"}
	if fmt.Sprint(final.visited) != fmt.Sprint(want) {
		t.Errorf("visited %v, want %v", final.visited, want)
	}
}

func TestRunConditionalRouting(t *testing.T) {
	build := func() (*Flow[testState], error) {
		return NewBuilder[testState]("classify").
			AddNode("classify", recordingNode("classify")).
			AddNode("left", recordingNode("left")).
			AddNode("right", recordingNode("right")).
			AddConditionalEdges("classify", func(state testState) string { return state.route },
				map[string]string{
					"left":  "left",
					"right": "right",
				}).
			AddEdge("left", End).
			AddEdge("right", End).
			Build()
	}

	tests := []struct {
		route string
		want  string
	}{
		{route: "left", want: "left"},
		{route: "right", want: "right"},
	}

	for _, test := range tests {
		t.Run(test.route, func(t *testing.T) {
			f, err := build()
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}

			final, err := f.Run(context.Background(), testState{route: test.route})
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}

			last := final.visited[len(final.visited)-1]
			if last != test.want {
				t.Errorf("last visited node %q, want %q", last, test.want)
			}
		})
	}
}

func TestRunRoutingErrorOnUnmappedKey(t *testing.T) {
	f, err := NewBuilder[testState]("classify").
		AddNode("classify", recordingNode("classify")).
		AddNode("left", recordingNode("left")).
		AddConditionalEdges("classify", func(testState) string { return "sideways" },
			map[string]string{"left": "left"}).
		AddEdge("left", End).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, err = f.Run(context.Background(), testState{})

	var routingErr *RoutingError
	if !errors.As(err, &routingErr) {
		t.Fatalf("expected RoutingError, got %v", err)
	}
	if routingErr.Node != "classify" || routingErr.Key != "sideways" {
		t.Errorf("unexpected routing error details: %+v", routingErr)
	}
	if len(routingErr.Allowed) != 1 || routingErr.Allowed[0] != "left" {
		t.Errorf("unexpected allowed keys: %v", routingErr.Allowed)
	}
}

func TestRunNodeErrorFailsFast(t *testing.T) {
	capabilityFailure := errors.New("capability unavailable")

	f, err := NewBuilder[testState]("boom").
		AddNode("boom", func(_ context.Context, state testState) (testState, error) {
			return state, capabilityFailure
		}).
		AddNode("after", recordingNode("after")).
		AddEdge("boom", "after").
		AddEdge("after", End).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, err = f.Run(context.Background(), testState{})

	var nodeErr *NodeError
	if !errors.As(err, &nodeErr) {
		t.Fatalf("expected NodeError, got %v", err)
	}
	if nodeErr.Node != "boom" {
		t.Errorf("error attributed to node %q, want boom", nodeErr.Node)
	}
	if !errors.Is(err, capabilityFailure) {
		t.Error("expected wrapped capability failure to survive errors.Is")
	}
}

func TestRunCycleTerminatesViaRouter(t *testing.T) {
	// Feedback-style cycle: refine routes back to classify once, then the
	// updated state routes to done.
	f, err := NewBuilder[testState]("classify").
		AddNode("classify", recordingNode("classify")).
		AddNode("refine", func(_ context.Context, state testState) (testState, error) {
			state.visited = append(state.visited, "refine")
			state.route = "done"
			return state, nil
		}).
		AddNode("done", recordingNode("done")).
		AddConditionalEdges("classify", func(state testState) string { return state.route },
			map[string]string{
				"refine": "refine",
				"done":   "done",
			}).
		AddEdge("refine", "classify").
		AddEdge("done", End).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	final, err := f.Run(context.Background(), testState{route: "refine"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []string{"classify", "refine", "classify", "done"}
	if fmt.Sprint(final.visited) != fmt.Sprint(want) {
		t.Errorf("visited %v, want %v", final.visited, want)
	}
}

func TestRunVisitBudgetExceeded(t *testing.T) {
	f, err := NewBuilder[testState]("spin", WithMaxVisits(7)).
		AddNode("spin", func(_ context.Context, state testState) (testState, error) {
			state.counter++
			return state, nil
		}).
		AddConditionalEdges("spin", func(testState) string { return "again" },
			map[string]string{"again": "spin"}).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, err = f.Run(context.Background(), testState{})

	var budgetErr *BudgetError
	if !errors.As(err, &budgetErr) {
		t.Fatalf("expected BudgetError, got %v", err)
	}
	if budgetErr.Limit != 7 {
		t.Errorf("budget limit %d, want 7", budgetErr.Limit)
	}
}

func TestRunContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	f, err := NewBuilder[testState]("first").
		AddNode("first", func(_ context.Context, state testState) (testState, error) {
			cancel() // cancel mid-run; the next visit must not start
			return state, nil
		}).
		AddNode("second", recordingNode("second")).
		AddEdge("first", "second").
		AddEdge("second", End).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, err = f.Run(ctx, testState{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunNodeTimeout(t *testing.T) {
	f, err := NewBuilder[testState]("slow", WithNodeTimeout(10*time.Millisecond)).
		AddNode("slow", func(ctx context.Context, state testState) (testState, error) {
			select {
			case <-ctx.Done():
				return state, ctx.Err()
			case <-time.After(time.Second):
				return state, nil
			}
		}).
		AddEdge("slow", End).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, err = f.Run(context.Background(), testState{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		builder func() *Builder[testState]
		wantErr string
	}{
		{
			name: "empty flow",
			builder: func() *Builder[testState] {
				return NewBuilder[testState]("start")
			},
			wantErr: "at least one node",
		},
		{
			name: "start not registered",
			builder: func() *Builder[testState] {
				return NewBuilder[testState]("missing").
					AddNode("only", recordingNode("only")).
					AddEdge("only", End)
			},
			wantErr: "start node",
		},
		{
			name: "duplicate node",
			builder: func() *Builder[testState] {
				return NewBuilder[testState]("a").
					AddNode("a", recordingNode("a")).
					AddNode("a", recordingNode("a")).
					AddEdge("a", End)
			},
			wantErr: "duplicate node",
		},
		{
			name: "reserved name",
			builder: func() *Builder[testState] {
				return NewBuilder[testState](End).
					AddNode(End, recordingNode("end"))
			},
			wantErr: "reserved",
		},
		{
			name: "dangling node",
			builder: func() *Builder[testState] {
				return NewBuilder[testState]("a").
					AddNode("a", recordingNode("a"))
			},
			wantErr: "no outgoing edge",
		},
		{
			name: "edge to unknown node",
			builder: func() *Builder[testState] {
				return NewBuilder[testState]("a").
					AddNode("a", recordingNode("a")).
					AddEdge("a", "ghost")
			},
			wantErr: "unregistered node",
		},
		{
			name: "router table to unknown node",
			builder: func() *Builder[testState] {
				return NewBuilder[testState]("a").
					AddNode("a", recordingNode("a")).
					AddConditionalEdges("a", func(testState) string { return "x" },
						map[string]string{"x": "ghost"})
			},
			wantErr: "unregistered node",
		},
		{
			name: "double outgoing edge",
			builder: func() *Builder[testState] {
				return NewBuilder[testState]("a").
					AddNode("a", recordingNode("a")).
					AddNode("b", recordingNode("b")).
					AddEdge("a", "b").
					AddEdge("a", End).
					AddEdge("b", End)
			},
			wantErr: "already has an outgoing edge",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.builder().Build()
			if err == nil {
				t.Fatal("expected build error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error %q does not mention %q", err, test.wantErr)
			}
		})
	}
}
