package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateNode is returned when a node name is added twice to a graph.
	ErrDuplicateNode = errors.New("duplicate node name")

	// ErrReservedName is returned when a node uses a pseudo-node name.
	ErrReservedName = errors.New("reserved node name")

	// ErrUnknownNode is returned when an edge references a node the graph
	// does not contain.
	ErrUnknownNode = errors.New("unknown node")

	// ErrMissingEntryEdge is returned when a graph has no ENTRY-outgoing edge.
	ErrMissingEntryEdge = errors.New("graph has no edge leaving ENTRY")

	// ErrMissingExitEdge is returned when a graph has no EXIT-incoming edge.
	ErrMissingExitEdge = errors.New("graph has no edge reaching EXIT")

	// ErrMissingControllerEdge is returned when a loop body is not wired to
	// its CONTROLLER on both sides.
	ErrMissingControllerEdge = errors.New("loop has no controller edge")

	// ErrUnboundSwitchEdge is returned when an outgoing edge of a switch has
	// no condition binding. Such an edge would be permanently closed.
	ErrUnboundSwitchEdge = errors.New("switch edge has no condition binding")

	// ErrNoProducer is returned when an edge carries a key its sender never
	// pushes.
	ErrNoProducer = errors.New("edge key has no producer")

	// ErrNoInput is returned when a node has no incoming edge at all and can
	// therefore never become ready.
	ErrNoInput = errors.New("node has no incoming edge")

	// ErrEdgeCongested is returned when a payload is produced onto an edge
	// whose previous payload has not been consumed yet.
	ErrEdgeCongested = errors.New("edge already holds a pending payload")

	// ErrEdgeEmpty is returned when an empty edge is consumed.
	ErrEdgeEmpty = errors.New("edge holds no pending payload")

	// ErrInvalidOutput is returned when a node's forward pushes keys outside
	// its declared push set.
	ErrInvalidOutput = errors.New("forward output violates push keys")

	// ErrNotBuilt is returned when a graph is invoked before Build.
	ErrNotBuilt = errors.New("graph has not been built")

	// ErrHookVeto is returned when a lifecycle hook vetoes the stage it
	// observes.
	ErrHookVeto = errors.New("vetoed by hook")
)

// BuildError reports a structural error detected while building a graph. It
// always carries the identity of the offending node or edge.
type BuildError struct {
	// Graph is the name of the graph being built.
	Graph string

	// Node is the offending node name, if the error concerns a node.
	Node string

	// Edge is the offending edge (as "sender->receiver"), if the error
	// concerns an edge.
	Edge string

	// Err is the underlying structural error.
	Err error
}

func (e *BuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build %s", e.Graph)
	if e.Node != "" {
		fmt.Fprintf(&b, ": node %s", e.Node)
	}
	if e.Edge != "" {
		fmt.Fprintf(&b, ": edge %s", e.Edge)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *BuildError) Unwrap() error { return e.Err }

// WaitingNode describes one node stuck in a deadlocked invocation: which of
// its incoming edges were still empty and which keys it was therefore
// missing.
type WaitingNode struct {
	Node        string
	EmptyEdges  []string
	MissingKeys []string
}

// DeadlockError is returned when a scheduling pass finds no ready node and
// the exit boundary has not been reached. It is a structural bug in the
// wiring, never a transient condition.
type DeadlockError struct {
	// Graph is the name of the deadlocked graph.
	Graph string

	// Waiting lists every node still awaiting input, with the keys it is
	// missing, to let the designer reconstruct the failure without
	// re-running.
	Waiting []WaitingNode
}

func (e *DeadlockError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "deadlock in graph %s: no node ready", e.Graph)
	for _, w := range e.Waiting {
		fmt.Fprintf(&b, "; %s awaits %s", w.Node, strings.Join(w.MissingKeys, ","))
		if len(w.EmptyEdges) > 0 {
			fmt.Fprintf(&b, " via %s", strings.Join(w.EmptyEdges, ","))
		}
	}
	return b.String()
}

// NodeError wraps a failure raised by a node's forward phase with the node's
// identity. It is fatal to the invocation; retry, when configured, happens
// inside a RetryNode wrapper before the scheduler ever sees the error.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
