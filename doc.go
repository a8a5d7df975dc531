// Package agentgraph composes stateful work units into executable graphs.
//
// A graph is a set of named nodes joined by directed, keyed edges. Each node
// declares which attribute keys it pulls as input and which it pushes as
// output; edges carry filtered snapshots of those attributes between nodes.
// The scheduler repeatedly runs every node whose inputs have arrived until
// the graph's exit boundary is satisfied, and reports a structural deadlock
// with per-node diagnostics when no progress is possible.
//
// The engine lives in the graph package:
//
//	g := graph.NewGraph("pipeline")
//	g.AddNode(graph.NewFuncNode("double",
//		graph.Keys(map[string]string{"x": "the operand"}),
//		graph.Keys(map[string]string{"y": "the doubled operand"}),
//		func(ctx context.Context, ec *graph.ExecContext) (graph.Payload, error) {
//			return graph.Payload{"y": graph.Int(ec.Input["x"].Int() * 2)}, nil
//		}))
//	g.AddEdge(graph.EntryName, "double", graph.Keys(map[string]string{"x": ""}))
//	g.AddEdge("double", graph.ExitName, graph.Keys(map[string]string{"y": ""}))
//	g.Build(ctx, nil)
//	res, err := g.Invoke(ctx, graph.Payload{"x": graph.Int(21)}, nil)
//
// Beyond plain pipelines the graph package provides:
//
//   - Loop: a graph whose boundary is a re-entrant controller, iterating the
//     body until a terminate condition holds or an iteration ceiling is hit;
//   - Switch and JudgeSwitch: nodes that gate their outgoing edges per
//     message, by predicate or by a model-judged natural-language condition;
//   - NodeTemplate and Registry: declarative blueprints yielding independent
//     instances, with shared-by-reference configuration for client objects;
//   - HookManager and Tracer: lifecycle observation of builds, forwards,
//     edge traffic and loop iterations.
//
// The surrounding packages supply the external collaborators a node may be
// bound to:
//
//   - model: chat-model providers (langchaingo, go-openai) and a yes/no
//     judge built on them;
//   - memory: conversational memory with in-memory, Redis, SQLite and
//     Postgres backends;
//   - format: rendering payloads into prompts and tolerant parsing of model
//     output back into payloads;
//   - tool: web search and webpage-reading tools callable by a model;
//   - prebuilt: a ready-made model-backed agent node and its template.
package agentgraph // import "github.com/smallnest/agentgraph"
