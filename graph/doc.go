// Package graph is a graph-based execution engine for composing stateful
// units of work into pipelines with branching, iteration and reusable
// sub-graph templates.
//
// A Graph wires Nodes together with directed, keyed Edges and two
// pseudo-nodes, ENTRY and EXIT. Each node declares which attribute keys it
// pulls as input and which it pushes as output; the scheduler repeatedly
// computes the set of ready nodes (every live incoming edge pending),
// executes them, and propagates their outputs along edges until EXIT
// becomes ready or no node is ready, which is reported as a deadlock with
// full diagnostics.
//
// Basic usage:
//
//	g := graph.NewGraph("pipeline")
//	g.AddNode(graph.NewFuncNode("double",
//		graph.Keys(map[string]string{"x": "the input number"}),
//		graph.Keys(map[string]string{"y": "the doubled number"}),
//		func(ctx context.Context, ec *graph.ExecContext) (graph.Payload, error) {
//			return graph.Payload{"y": graph.Number(ec.Input["x"].Num() * 2)}, nil
//		}))
//	g.AddEdge(graph.EntryName, "double", graph.Keys(map[string]string{"x": "input"}))
//	g.AddEdge("double", graph.ExitName, graph.Keys(map[string]string{"y": "output"}))
//	g.Build(ctx, nil)
//	res, err := g.Invoke(ctx, graph.Payload{"x": graph.Number(21)}, nil)
//
// A Loop replaces ENTRY/EXIT with the re-entrant CONTROLLER pseudo-node and
// bounds iteration; a Switch gates its outgoing edges per message using
// bound predicates, optionally backed by a model judge. NodeTemplate turns
// a declarative blueprint into live nodes and sub-graphs, with explicit
// control over which configuration values are cloned per instance and
// which are shared by reference.
//
// Cross-cutting concerns attach through the HookManager: hooks observe or
// veto build, forward and edge-send stages; the Tracer is built on top of
// it.
package graph
