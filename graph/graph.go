package graph

import (
	"context"
	"fmt"
)

const (
	// EntryName is the pseudo-node marking a graph's external input boundary.
	EntryName = "ENTRY"

	// ExitName is the pseudo-node marking a graph's external output boundary.
	ExitName = "EXIT"

	// ControllerName is the pseudo-node marking a loop body's re-entry
	// boundary. It replaces ENTRY and EXIT inside a loop.
	ControllerName = "CONTROLLER"
)

func isReserved(name string) bool {
	return name == EntryName || name == ExitName || name == ControllerName
}

// Graph is a composite node: a set of nodes and keyed edges between them,
// plus the ENTRY and EXIT pseudo-nodes, owning the scheduling loop that
// drives an invocation to a terminal outcome.
//
// A graph is itself a Node, so graphs nest; its pull and push keys define
// its contract with the parent scope.
type Graph struct {
	BaseNode

	nodes    map[string]Node
	edges    []*Edge
	hooks    *HookManager
	memories map[string]Memory
	tools    map[string][]Tool

	// source and sink are ENTRY/EXIT for plain graphs and both CONTROLLER
	// for loops.
	source string
	sink   string

	built bool
}

// NewGraph creates an empty graph with an inherit-all contract.
func NewGraph(name string) *Graph {
	return &Graph{
		BaseNode: NewBaseNode(name, InheritAll(), InheritAll()),
		nodes:    make(map[string]Node),
		hooks:    NewHookManager(),
		memories: make(map[string]Memory),
		tools:    make(map[string][]Tool),
		source:   EntryName,
		sink:     ExitName,
	}
}

// SetContract declares the graph's pull and push keys toward its parent
// scope when nested as a node.
func (g *Graph) SetContract(pull, push KeySet) {
	g.pull = pull
	g.push = push
}

// Hooks returns the graph's hook registry. Hooks must be registered before
// Build.
func (g *Graph) Hooks() *HookManager { return g.hooks }

// AddNode adds a node to the graph. Names must be unique and must not shadow
// a pseudo-node.
func (g *Graph) AddNode(n Node) error {
	name := n.Name()
	if isReserved(name) {
		return &BuildError{Graph: g.Name(), Node: name, Err: ErrReservedName}
	}
	if _, ok := g.nodes[name]; ok {
		return &BuildError{Graph: g.Name(), Node: name, Err: ErrDuplicateNode}
	}
	g.nodes[name] = n
	return nil
}

// AddEdge wires a directed, keyed edge between two nodes. The source
// pseudo-node is a legal sender and the sink pseudo-node a legal receiver.
func (g *Graph) AddEdge(from, to string, keys KeySet) error {
	if _, ok := g.nodes[from]; !ok && from != g.source {
		return &BuildError{Graph: g.Name(), Edge: from + "->" + to, Err: fmt.Errorf("%w: %s", ErrUnknownNode, from)}
	}
	if _, ok := g.nodes[to]; !ok && to != g.sink {
		return &BuildError{Graph: g.Name(), Edge: from + "->" + to, Err: fmt.Errorf("%w: %s", ErrUnknownNode, to)}
	}
	g.edges = append(g.edges, NewEdge(from, to, keys))
	return nil
}

// BindMemory attaches a conversational memory to a node. The memory is
// handed to the node through its ExecContext.
func (g *Graph) BindMemory(node string, m Memory) {
	g.memories[node] = m
}

// BindTools attaches tools to a node.
func (g *Graph) BindTools(node string, tools ...Tool) {
	g.tools[node] = append(g.tools[node], tools...)
}

// Nodes returns the node names in the graph, excluding pseudo-nodes.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	return names
}

// Edges returns the graph's edges.
func (g *Graph) Edges() []*Edge { return g.edges }

// Node returns the named node, if present.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// switchValidator is implemented by nodes that gate their outgoing edges
// with condition bindings; the validator uses it to reject unbound edges at
// build time.
type switchValidator interface {
	hasBinding(target string) bool
}

// Build validates the graph's structure, builds every child node and fires
// build hooks. Structural errors fail fast, before any node executes.
func (g *Graph) Build(ctx context.Context, parentHooks *HookManager) error {
	if err := g.validate(); err != nil {
		return err
	}

	for name, n := range g.nodes {
		if err := g.hooks.fire(ctx, &HookEvent{Stage: StageBuild, Node: name}); err != nil {
			return &BuildError{Graph: g.Name(), Node: name, Err: err}
		}
		if err := n.Build(ctx, g.hooks); err != nil {
			return &BuildError{Graph: g.Name(), Node: name, Err: err}
		}
	}

	g.built = true
	return nil
}

func (g *Graph) validate() error {
	incoming := make(map[string]int, len(g.nodes))
	var fromSource, toSink int
	for _, e := range g.edges {
		if e.Sender() == g.source {
			fromSource++
		}
		if e.Receiver() == g.sink {
			toSink++
		}
		incoming[e.Receiver()]++
	}
	if fromSource == 0 {
		err := ErrMissingEntryEdge
		if g.source == ControllerName {
			err = ErrMissingControllerEdge
		}
		return &BuildError{Graph: g.Name(), Node: g.source, Err: err}
	}
	if toSink == 0 {
		err := ErrMissingExitEdge
		if g.sink == ControllerName {
			err = ErrMissingControllerEdge
		}
		return &BuildError{Graph: g.Name(), Node: g.sink, Err: err}
	}

	for name := range g.nodes {
		if incoming[name] == 0 {
			return &BuildError{Graph: g.Name(), Node: name, Err: ErrNoInput}
		}
	}

	for _, e := range g.edges {
		// Keys crossing an edge must have a producer: the sender's push
		// contract, or the graph's own pull contract for boundary edges.
		var push KeySet
		if e.Sender() == g.source {
			push = g.PullKeys()
		} else {
			push = g.nodes[e.Sender()].PushKeys()
		}
		if !push.InheritsAll() {
			for _, k := range e.Keys().Names() {
				if !push.Has(k) {
					return &BuildError{
						Graph: g.Name(),
						Edge:  e.String(),
						Err:   fmt.Errorf("%w: key %q is never pushed by %s", ErrNoProducer, k, e.Sender()),
					}
				}
			}
		}

		// Every outgoing edge of a switch needs at least one binding, or it
		// is permanently closed and its receiver may starve.
		if sw, ok := g.nodes[e.Sender()].(switchValidator); ok {
			if !sw.hasBinding(e.Receiver()) {
				return &BuildError{Graph: g.Name(), Edge: e.String(), Err: ErrUnboundSwitchEdge}
			}
		}
	}
	return nil
}

// Forward runs the graph as a nested node: the parent's filtered input seeds
// ENTRY, and the result is filtered by the graph's push contract.
func (g *Graph) Forward(ctx context.Context, ec *ExecContext) (Payload, error) {
	res, err := g.Invoke(ctx, ec.Input, nil)
	if err != nil {
		return nil, err
	}
	if g.PushKeys().InheritsAll() {
		return res.Output, nil
	}
	return g.PushKeys().Filter(res.Output), nil
}
