package graph

import (
	"context"
	"fmt"

	"github.com/smallnest/agentgraph/log"
)

// ExitReason distinguishes how a loop terminated.
type ExitReason int

const (
	// ExitPredicate means the terminate condition held.
	ExitPredicate ExitReason = iota + 1

	// ExitExhausted means the iteration ceiling was reached before the
	// terminate condition ever held. This is a designed, bounded exit, not
	// an error; callers decide whether to treat it as a soft failure.
	ExitExhausted
)

// String returns the reason's canonical name.
func (r ExitReason) String() string {
	switch r {
	case ExitPredicate:
		return "predicate"
	case ExitExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// TerminateFunc is evaluated at the controller boundary after each pass,
// against the pass's merged state and the attribute store.
type TerminateFunc func(ctx context.Context, merged Payload, attrs *Store) (bool, error)

// LoopResult is the terminal outcome of a loop run. Reason lets callers
// tell a predicate exit from iteration-ceiling exhaustion.
type LoopResult struct {
	RunID      string
	Output     Payload
	Attrs      Payload
	Iterations int
	Reason     ExitReason
}

// Loop is a graph whose boundary is the re-entrant CONTROLLER pseudo-node:
// each pass, the controller's merged state seeds the body exactly like a
// graph's ENTRY, the body runs to its controller-bound edges, and the merge
// becomes the next seed until the terminate condition holds or the
// iteration ceiling is reached. Iterations are strictly sequential; pass
// i+1 starts from pass i's merge.
type Loop struct {
	Graph

	maxIterations int
	terminate     TerminateFunc
	seedState     Payload
}

// NewLoop creates a loop with the given iteration ceiling and terminate
// condition. A nil terminate condition never holds, making the ceiling the
// only exit.
func NewLoop(name string, maxIterations int, terminate TerminateFunc) *Loop {
	l := &Loop{
		Graph:         *NewGraph(name),
		maxIterations: maxIterations,
		terminate:     terminate,
	}
	l.source = ControllerName
	l.sink = ControllerName
	return l
}

// SetSeed declares the initial controller state for the first pass.
// Invocation input is merged on top of it.
func (l *Loop) SetSeed(p Payload) {
	l.seedState = p.Clone()
}

// MaxIterations returns the loop's iteration ceiling.
func (l *Loop) MaxIterations() int { return l.maxIterations }

// Run executes the loop to its terminal state.
func (l *Loop) Run(ctx context.Context, input, attrs Payload) (*LoopResult, error) {
	if !l.built {
		return nil, &BuildError{Graph: l.Name(), Err: ErrNotBuilt}
	}

	runID := generateRunID()
	ctx = WithRunID(ctx, runID)
	st := NewStore(attrs)

	state := l.seedState.Clone()
	if state == nil {
		state = make(Payload)
	}
	state.Merge(input)

	res := &LoopResult{RunID: runID}
	for i := 1; i <= l.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("loop %s cancelled at iteration %d: %w", l.Name(), i, err)
		}
		if err := l.hooks.fire(ctx, &HookEvent{Stage: StageLoopIteration, Node: l.Name(), Iteration: i, Payload: state}); err != nil {
			return nil, fmt.Errorf("loop %s iteration %d: %w", l.Name(), i, err)
		}
		log.Debug("loop %s: iteration %d/%d", l.Name(), i, l.maxIterations)

		for _, e := range l.edges {
			e.reset()
		}
		if err := l.seed(ctx, state); err != nil {
			return nil, fmt.Errorf("loop %s iteration %d: %w", l.Name(), i, err)
		}

		merged, _, err := l.runToSink(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("loop %s iteration %d: %w", l.Name(), i, err)
		}

		// Keys the body did not return persist from the previous pass.
		next := state.Clone()
		next.Merge(merged)
		state = next
		res.Iterations = i

		if l.terminate != nil {
			done, err := l.terminate(ctx, state, st)
			if err != nil {
				return nil, fmt.Errorf("loop %s terminate condition at iteration %d: %w", l.Name(), i, err)
			}
			if done {
				res.Reason = ExitPredicate
				break
			}
		}
		if i == l.maxIterations {
			res.Reason = ExitExhausted
		}
	}

	res.Output = state
	res.Attrs = st.Snapshot()
	log.Debug("loop %s: terminated after %d iterations (%s)", l.Name(), res.Iterations, res.Reason)
	return res, nil
}

// Forward runs the loop as a nested node. The exit reason and iteration
// count are recorded in the loop's local store under "exit_reason" and
// "iterations".
func (l *Loop) Forward(ctx context.Context, ec *ExecContext) (Payload, error) {
	res, err := l.Run(ctx, ec.Input, nil)
	if err != nil {
		return nil, err
	}
	l.Local().Set("exit_reason", String(res.Reason.String()))
	l.Local().Set("iterations", Int(res.Iterations))

	if l.PushKeys().InheritsAll() {
		return res.Output, nil
	}
	return l.PushKeys().Filter(res.Output), nil
}
