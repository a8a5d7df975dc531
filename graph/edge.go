package graph

import (
	"context"
	"sync"
)

// Edge is a directed, keyed channel between two nodes. Its state is the
// product {open|closed} x {empty|pending}: a switch may close it for a
// round, and a payload placed on it stays pending until the receiver
// consumes it. The payload can be consumed exactly once per production.
//
// Edges store sender and receiver names, never node references; the owning
// graph's arena resolves them. This keeps the structure cycle-free and
// trivially serializable.
type Edge struct {
	sender   string
	receiver string
	keys     KeySet

	mu      sync.Mutex
	closed  bool
	pending bool
	payload Payload
}

// NewEdge creates an open, empty edge.
func NewEdge(sender, receiver string, keys KeySet) *Edge {
	return &Edge{sender: sender, receiver: receiver, keys: keys}
}

// Sender returns the sending node's name.
func (e *Edge) Sender() string { return e.sender }

// Receiver returns the receiving node's name.
func (e *Edge) Receiver() string { return e.receiver }

// Keys returns the key filter defining which attributes cross this edge.
func (e *Edge) Keys() KeySet { return e.keys }

// String renders the edge identity for diagnostics.
func (e *Edge) String() string { return e.sender + "->" + e.receiver }

// Close gates the edge shut. A closed edge contributes no payload and does
// not count toward its receiver's readiness.
func (e *Edge) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// Open reopens a gated edge.
func (e *Edge) Open() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = false
}

// IsClosed reports whether the gate is shut.
func (e *Edge) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// IsPending reports whether an unconsumed payload is on the edge.
func (e *Edge) IsPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// send places the filtered snapshot of out on the edge and fires edge-send
// hooks. Sending onto a still-pending edge is congestion and fails.
func (e *Edge) send(ctx context.Context, out Payload, hooks *HookManager) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	if e.pending {
		e.mu.Unlock()
		return ErrEdgeCongested
	}
	snapshot := e.keys.Filter(out).Clone()
	e.payload = snapshot
	e.pending = true
	e.mu.Unlock()

	if hooks == nil {
		return nil
	}
	return hooks.fire(ctx, &HookEvent{
		Stage:   StageEdgeSend,
		Edge:    e.String(),
		Payload: snapshot,
	})
}

// consume takes the pending payload off the edge, reverting it to empty.
// Consuming an empty edge is illegal.
func (e *Edge) consume(ctx context.Context, hooks *HookManager) (Payload, error) {
	e.mu.Lock()
	if !e.pending {
		e.mu.Unlock()
		return nil, ErrEdgeEmpty
	}
	p := e.payload
	e.payload = nil
	e.pending = false
	e.mu.Unlock()

	if hooks != nil {
		if err := hooks.fire(ctx, &HookEvent{
			Stage:   StageEdgeReceive,
			Edge:    e.String(),
			Payload: p,
		}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// reset returns the edge to its initial open+empty state. Called once per
// invocation before seeding.
func (e *Edge) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = false
	e.pending = false
	e.payload = nil
}
