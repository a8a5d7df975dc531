package graph

import (
	"context"
	"fmt"
	"sync"
)

// Stage identifies a lifecycle stage a hook can attach to.
type Stage string

const (
	// StageBuild fires once per node during the graph's build pass.
	StageBuild Stage = "build"

	// StageForward fires before a node's forward phase runs.
	StageForward Stage = "forward"

	// StageForwardDone fires after a node's forward phase returns.
	StageForwardDone Stage = "forward_done"

	// StageEdgeSend fires when a payload is placed on an edge.
	StageEdgeSend Stage = "edge_send"

	// StageEdgeReceive fires when a pending payload is consumed from an edge.
	StageEdgeReceive Stage = "edge_receive"

	// StageLoopIteration fires at the start of each loop pass.
	StageLoopIteration Stage = "loop_iteration"
)

// HookEvent carries the context of the stage being observed. Payload is a
// read-only view: hooks may observe or veto a stage, never rewrite the pull
// and push contracts it serves.
type HookEvent struct {
	// Stage is the lifecycle stage that fired.
	Stage Stage

	// Node is the node the stage concerns, if any.
	Node string

	// Edge is the edge (as "sender->receiver") the stage concerns, if any.
	Edge string

	// Payload is the data crossing the stage: a node's input or output, or
	// an edge's payload snapshot.
	Payload Payload

	// Iteration is the 1-based loop pass for StageLoopIteration events.
	Iteration int

	// Err is the forward error for StageForwardDone events.
	Err error
}

// Hook observes one lifecycle stage. Returning a non-nil error vetoes the
// stage and fails the build or invocation it belongs to.
type Hook func(ctx context.Context, ev *HookEvent) error

// HookManager is a registry of hooks keyed by lifecycle stage. Registration
// is explicit and happens at construction time; hooks fire synchronously, in
// registration order, around the stage they decorate.
type HookManager struct {
	mu       sync.RWMutex
	handlers map[Stage][]Hook
}

// NewHookManager creates an empty hook registry.
func NewHookManager() *HookManager {
	return &HookManager{handlers: make(map[Stage][]Hook)}
}

// Register attaches a hook to a stage.
func (hm *HookManager) Register(stage Stage, h Hook) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.handlers[stage] = append(hm.handlers[stage], h)
}

// RegisterAll attaches a hook to every stage it is given.
func (hm *HookManager) RegisterAll(h Hook, stages ...Stage) {
	for _, st := range stages {
		hm.Register(st, h)
	}
}

// fire runs every hook of the stage in order. The first error wins and is
// reported as a veto.
func (hm *HookManager) fire(ctx context.Context, ev *HookEvent) error {
	hm.mu.RLock()
	hooks := hm.handlers[ev.Stage]
	hm.mu.RUnlock()

	for _, h := range hooks {
		if err := h(ctx, ev); err != nil {
			return fmt.Errorf("%w: stage %s: %w", ErrHookVeto, ev.Stage, err)
		}
	}
	return nil
}
