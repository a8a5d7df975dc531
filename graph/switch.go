package graph

import (
	"context"
	"fmt"
	"sync"
)

// Predicate decides whether a gated edge opens for the current message.
// Predicates may be slow or fallible (a judge-backed predicate is an
// ordinary model call); a predicate error is fatal to the invocation.
type Predicate func(ctx context.Context, input Payload, attrs *Store) (bool, error)

// Judge evaluates a natural-language condition against a message, answering
// strictly yes or no. Implementations typically delegate to a model
// provider; the scheduler treats the call as a suspension point like any
// other node work.
type Judge interface {
	Decide(ctx context.Context, condition string, input Payload) (bool, error)
}

// Switch is a node that gates its outgoing edges per message. Each outgoing
// edge carries one or more condition bindings; on every invocation the
// switch evaluates all bound predicates against the received message and
// opens exactly the edges whose predicate holds. An edge with no binding is
// permanently closed, which Build rejects.
type Switch struct {
	BaseNode

	mu       sync.RWMutex
	bindings map[string][]Predicate
}

// NewSwitch creates a switch that passes its message through unchanged,
// subject to its push contract.
func NewSwitch(name string, pull, push KeySet) *Switch {
	return &Switch{
		BaseNode: NewBaseNode(name, pull, push),
		bindings: make(map[string][]Predicate),
	}
}

// Bind attaches a predicate to the outgoing edge toward target. Multiple
// bindings on one edge are disjunctive.
func (s *Switch) Bind(target string, p Predicate) *Switch {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[target] = append(s.bindings[target], p)
	return s
}

func (s *Switch) hasBinding(target string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bindings[target]) > 0
}

// Forward passes the received message through; routing happens in the gate
// phase.
func (s *Switch) Forward(ctx context.Context, ec *ExecContext) (Payload, error) {
	if s.PushKeys().InheritsAll() {
		return ec.Input, nil
	}
	return s.PushKeys().Filter(ec.Input), nil
}

// gateTargets evaluates every binding against the received message. The
// opened set is exactly the set of targets whose predicate returned true.
func (s *Switch) gateTargets(ctx context.Context, ec *ExecContext) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	open := make(map[string]bool, len(s.bindings))
	for target, preds := range s.bindings {
		for _, p := range preds {
			ok, err := p(ctx, ec.Input, ec.Attrs)
			if err != nil {
				return nil, fmt.Errorf("condition for %s: %w", target, err)
			}
			if ok {
				open[target] = true
				break
			}
		}
	}
	return open, nil
}

// JudgeSwitch is a switch whose conditions are natural-language statements
// evaluated by an external judge.
type JudgeSwitch struct {
	*Switch
	judge Judge
}

// NewJudgeSwitch creates a judge-backed switch.
func NewJudgeSwitch(name string, pull, push KeySet, judge Judge) *JudgeSwitch {
	return &JudgeSwitch{
		Switch: NewSwitch(name, pull, push),
		judge:  judge,
	}
}

// BindCondition attaches a natural-language condition to the outgoing edge
// toward target.
func (s *JudgeSwitch) BindCondition(target, condition string) *JudgeSwitch {
	s.Bind(target, func(ctx context.Context, input Payload, _ *Store) (bool, error) {
		return s.judge.Decide(ctx, condition, input)
	})
	return s
}
