package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/smallnest/agentgraph/log"
)

// Result is the terminal outcome of a successful graph invocation.
type Result struct {
	// RunID uniquely identifies the invocation.
	RunID string

	// Output is the merged payload consumed at the exit boundary.
	Output Payload

	// Attrs is a snapshot of the attribute store after the last completed
	// pass.
	Attrs Payload

	// Passes is the number of scheduling passes the invocation took.
	Passes int
}

// edgeGater is implemented by switch nodes: after the node's forward phase,
// the scheduler asks which outgoing targets are open for this round.
type edgeGater interface {
	gateTargets(ctx context.Context, ec *ExecContext) (map[string]bool, error)
}

// Invoke executes the graph with the given input and initial attributes and
// runs it to a terminal outcome: success when EXIT becomes ready, a
// DeadlockError when no node is ready, or the first node failure.
func (g *Graph) Invoke(ctx context.Context, input, attrs Payload) (*Result, error) {
	if !g.built {
		return nil, &BuildError{Graph: g.Name(), Err: ErrNotBuilt}
	}

	runID := generateRunID()
	ctx = WithRunID(ctx, runID)
	st := NewStore(attrs)

	for _, e := range g.edges {
		e.reset()
	}
	if err := g.seed(ctx, input); err != nil {
		return nil, err
	}

	log.Debug("graph %s: run %s started with keys %v", g.Name(), runID, input.Keys())

	output, passes, err := g.runToSink(ctx, st)
	if err != nil {
		return nil, err
	}

	log.Debug("graph %s: run %s finished in %d passes", g.Name(), runID, passes)

	return &Result{
		RunID:  runID,
		Output: output,
		Attrs:  st.Snapshot(),
		Passes: passes,
	}, nil
}

// seed places the invocation input on every edge leaving the source
// boundary, filtered per edge.
func (g *Graph) seed(ctx context.Context, input Payload) error {
	for _, e := range g.edges {
		if e.Sender() != g.source {
			continue
		}
		if err := e.send(ctx, input, g.hooks); err != nil {
			return fmt.Errorf("seeding %s: %w", e, err)
		}
	}
	return nil
}

// runToSink drives scheduling passes until the sink boundary is ready,
// returning the merged sink payload.
func (g *Graph) runToSink(ctx context.Context, st *Store) (Payload, int, error) {
	passes := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, passes, fmt.Errorf("graph %s cancelled: %w", g.Name(), err)
		}
		passes++

		dead := g.deadNodes()

		if g.sinkSatisfied(dead) {
			out, err := g.consumeSink(ctx)
			if err != nil {
				return nil, passes, err
			}
			return out, passes, nil
		}

		ready := g.readySet(dead)
		if len(ready) == 0 {
			return nil, passes, g.deadlock(dead)
		}

		if err := g.runPass(ctx, ready, st); err != nil {
			return nil, passes, err
		}
	}
}

// deadNodes computes the nodes that can never run again this invocation:
// every incoming edge is closed, or comes empty from a node that is itself
// dead. A pending payload keeps a node alive regardless of its sender.
func (g *Graph) deadNodes() map[string]bool {
	incoming := g.incomingIndex()
	dead := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for name := range g.nodes {
			if dead[name] {
				continue
			}
			edges := incoming[name]
			if len(edges) == 0 {
				continue
			}
			starved := true
			for _, e := range edges {
				if e.IsPending() {
					starved = false
					break
				}
				if e.IsClosed() || dead[e.Sender()] {
					continue
				}
				starved = false
				break
			}
			if starved {
				dead[name] = true
				changed = true
			}
		}
	}
	return dead
}

func (g *Graph) incomingIndex() map[string][]*Edge {
	idx := make(map[string][]*Edge)
	for _, e := range g.edges {
		idx[e.Receiver()] = append(idx[e.Receiver()], e)
	}
	return idx
}

// satisfied reports whether every live incoming edge of the node is pending
// and at least one payload is waiting.
func (g *Graph) satisfied(name string, dead map[string]bool) bool {
	hasPending := false
	for _, e := range g.edges {
		if e.Receiver() != name {
			continue
		}
		if e.IsPending() {
			hasPending = true
			continue
		}
		if e.IsClosed() || dead[e.Sender()] {
			continue
		}
		return false
	}
	return hasPending
}

func (g *Graph) sinkSatisfied(dead map[string]bool) bool {
	return g.satisfied(g.sink, dead)
}

// readySet returns the names of every node eligible to execute this pass,
// sorted for reproducible logs. Members of the ready set never share an
// edge, so execution order is a performance concern only.
func (g *Graph) readySet(dead map[string]bool) []string {
	var ready []string
	for name := range g.nodes {
		if dead[name] {
			continue
		}
		if g.satisfied(name, dead) {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)
	return ready
}

func (g *Graph) consumeSink(ctx context.Context) (Payload, error) {
	out := make(Payload)
	for _, e := range g.edges {
		if e.Receiver() != g.sink || !e.IsPending() {
			continue
		}
		p, err := e.consume(ctx, g.hooks)
		if err != nil {
			return nil, fmt.Errorf("consuming %s: %w", e, err)
		}
		out.Merge(p)
	}
	return out, nil
}

func (g *Graph) deadlock(dead map[string]bool) error {
	incoming := g.incomingIndex()
	names := append(g.Nodes(), g.sink)
	sort.Strings(names)

	dl := &DeadlockError{Graph: g.Name()}
	for _, name := range names {
		if dead[name] {
			continue
		}
		var emptyEdges, missing []string
		for _, e := range incoming[name] {
			if e.IsPending() || e.IsClosed() || dead[e.Sender()] {
				continue
			}
			emptyEdges = append(emptyEdges, e.String())
			missing = append(missing, e.Keys().Names()...)
		}
		if len(emptyEdges) == 0 {
			continue
		}
		sort.Strings(missing)
		dl.Waiting = append(dl.Waiting, WaitingNode{
			Node:        name,
			EmptyEdges:  emptyEdges,
			MissingKeys: missing,
		})
	}
	log.Warn("graph %s: %v", g.Name(), dl)
	return dl
}

// turn is one node execution within a pass.
type turn struct {
	node Node
	ec   *ExecContext
	out  Payload
	// open is the per-round gate decision for switch nodes; nil means all
	// outgoing edges send.
	open map[string]bool
	err  error
}

// runPass consumes the ready nodes' inputs, executes their forward phases
// concurrently, then commits outputs to the store and propagates them along
// outgoing edges. Consumption, commit and propagation stay on the
// scheduler's goroutine so a cancelled pass never leaves a partial commit.
func (g *Graph) runPass(ctx context.Context, ready []string, st *Store) error {
	turns := make([]*turn, 0, len(ready))
	for _, name := range ready {
		n := g.nodes[name]
		in, err := g.collectInput(ctx, n, st)
		if err != nil {
			return err
		}
		ec := &ExecContext{
			Input:  in,
			Attrs:  st,
			Memory: g.memories[name],
			Tools:  g.tools[name],
			Node:   n,
		}
		if ln, ok := n.(interface{ Local() *Store }); ok {
			ec.Local = ln.Local()
		}
		turns = append(turns, &turn{node: n, ec: ec})
	}

	var wg sync.WaitGroup
	for _, t := range turns {
		wg.Add(1)
		go g.runTurn(ctx, t, &wg)
	}
	wg.Wait()

	for _, t := range turns {
		if t.err != nil {
			return t.err
		}
	}

	for _, t := range turns {
		st.Commit(t.out)
		if err := g.propagate(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// collectInput consumes the node's pending edges and merges their payloads,
// applying the node's pull contract. Inherit-all nodes see the ambient store
// underneath the fresher edge snapshots.
func (g *Graph) collectInput(ctx context.Context, n Node, st *Store) (Payload, error) {
	merged := make(Payload)
	for _, e := range g.edges {
		if e.Receiver() != n.Name() || !e.IsPending() {
			continue
		}
		p, err := e.consume(ctx, g.hooks)
		if err != nil {
			return nil, fmt.Errorf("consuming %s: %w", e, err)
		}
		merged.Merge(p)
	}

	pull := n.PullKeys()
	if pull.InheritsAll() {
		// The store provides ambient context; edge payloads win on
		// collision because they are the fresher snapshot.
		in := st.Snapshot()
		in.Merge(merged)
		return in, nil
	}
	return pull.Filter(merged), nil
}

func (g *Graph) runTurn(ctx context.Context, t *turn, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			t.err = &NodeError{Node: t.node.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	name := t.node.Name()
	if err := g.hooks.fire(ctx, &HookEvent{Stage: StageForward, Node: name, Payload: t.ec.Input}); err != nil {
		t.err = &NodeError{Node: name, Err: err}
		return
	}

	out, err := t.node.Forward(ctx, t.ec)

	if hookErr := g.hooks.fire(ctx, &HookEvent{Stage: StageForwardDone, Node: name, Payload: out, Err: err}); hookErr != nil && err == nil {
		err = hookErr
	}
	if err != nil {
		t.err = &NodeError{Node: name, Err: err}
		return
	}

	if err := validateOutput(t.node, out); err != nil {
		t.err = &NodeError{Node: name, Err: err}
		return
	}
	t.out = out

	if gater, ok := t.node.(edgeGater); ok {
		open, err := gater.gateTargets(ctx, t.ec)
		if err != nil {
			t.err = &NodeError{Node: name, Err: err}
			return
		}
		t.open = open
	}
}

// validateOutput rejects forward results that push keys outside the node's
// declared contract. That is a structural failure of the node, fatal to the
// invocation.
func validateOutput(n Node, out Payload) error {
	push := n.PushKeys()
	if push.InheritsAll() {
		return nil
	}
	for k := range out {
		if !push.Has(k) {
			return fmt.Errorf("%w: undeclared key %q", ErrInvalidOutput, k)
		}
	}
	return nil
}

// propagate places the turn's output on every open outgoing edge, applying a
// switch's per-round gate decisions first.
func (g *Graph) propagate(ctx context.Context, t *turn) error {
	name := t.node.Name()
	for _, e := range g.edges {
		if e.Sender() != name {
			continue
		}
		if t.open != nil {
			if t.open[e.Receiver()] {
				e.Open()
			} else {
				e.Close()
				log.Debug("graph %s: switch %s closed %s for this round", g.Name(), name, e)
				continue
			}
		}
		if err := e.send(ctx, t.out, g.hooks); err != nil {
			return fmt.Errorf("sending on %s: %w", e, err)
		}
	}
	return nil
}
