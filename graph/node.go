package graph

import "context"

// Utterance is one labeled entry of a conversational memory.
type Utterance struct {
	Role    string
	Content string
}

// Memory is the narrow port the engine exposes to nodes for conversational
// memory. Implementations live outside the engine (see the memory package);
// appends are additive and never feed back into scheduling.
type Memory interface {
	Append(ctx context.Context, u Utterance) error
	Recent(ctx context.Context, n int) ([]Utterance, error)
}

// Tool is a callable capability a node may hand to a model provider.
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
}

// ExecContext is the single fixed-shape argument of a node's forward phase.
// Every node receives the same shape and ignores what it does not need.
type ExecContext struct {
	// Input is the merged payload of the node's consumed edges, filtered by
	// its pull keys (plus the ambient store when the node inherits all).
	Input Payload

	// Attrs is the invocation's attribute store.
	Attrs *Store

	// Local is the node's private store, surviving across invocations of
	// the same node instance.
	Local *Store

	// Memory is the conversational memory bound to the node, if any.
	Memory Memory

	// Tools are the tools bound to the node, if any.
	Tools []Tool

	// Node is a handle to the executing node.
	Node Node
}

// Node is the unit of work. A node declares which attribute keys it pulls as
// input and which it pushes as output; Build performs one-time structural
// setup, Forward runs once per scheduling turn in which the node is ready.
//
// Forward must confine its side effects to the node's local store and its
// declared push keys; the scheduler treats it as pure.
type Node interface {
	Name() string
	PullKeys() KeySet
	PushKeys() KeySet
	Build(ctx context.Context, hooks *HookManager) error
	Forward(ctx context.Context, ec *ExecContext) (Payload, error)
}

// BaseNode carries the identity, key contracts and local store every node
// needs. Embed it and implement Forward.
type BaseNode struct {
	name  string
	pull  KeySet
	push  KeySet
	local *Store
}

// NewBaseNode creates the common node core.
func NewBaseNode(name string, pull, push KeySet) BaseNode {
	return BaseNode{name: name, pull: pull, push: push, local: NewStore(nil)}
}

// Name returns the node's unique name within its owning graph.
func (n *BaseNode) Name() string { return n.name }

// PullKeys returns the node's input contract.
func (n *BaseNode) PullKeys() KeySet { return n.pull }

// PushKeys returns the node's output contract.
func (n *BaseNode) PushKeys() KeySet { return n.push }

// Local returns the node's private store.
func (n *BaseNode) Local() *Store {
	if n.local == nil {
		n.local = NewStore(nil)
	}
	return n.local
}

// Build is a no-op for plain nodes.
func (n *BaseNode) Build(ctx context.Context, hooks *HookManager) error { return nil }

// ForwardFunc is the function form of a node's forward phase.
type ForwardFunc func(ctx context.Context, ec *ExecContext) (Payload, error)

// FuncNode wraps a plain function as a Node.
type FuncNode struct {
	BaseNode
	fn ForwardFunc
}

// NewFuncNode creates a node from a forward function.
func NewFuncNode(name string, pull, push KeySet, fn ForwardFunc) *FuncNode {
	return &FuncNode{BaseNode: NewBaseNode(name, pull, push), fn: fn}
}

// Forward runs the wrapped function.
func (n *FuncNode) Forward(ctx context.Context, ec *ExecContext) (Payload, error) {
	return n.fn(ctx, ec)
}
