package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildError_Format(t *testing.T) {
	err := &BuildError{Graph: "g", Node: "n", Edge: "a->b", Err: ErrNoProducer}
	assert.Contains(t, err.Error(), "build g")
	assert.Contains(t, err.Error(), "node n")
	assert.Contains(t, err.Error(), "edge a->b")
	assert.True(t, errors.Is(err, ErrNoProducer))

	bare := &BuildError{Graph: "g", Err: ErrNotBuilt}
	assert.NotContains(t, bare.Error(), "node")
	assert.NotContains(t, bare.Error(), "edge")
}

func TestDeadlockError_Format(t *testing.T) {
	err := &DeadlockError{
		Graph: "g",
		Waiting: []WaitingNode{
			{Node: "join", EmptyEdges: []string{"a->join"}, MissingKeys: []string{"p"}},
		},
	}
	assert.Equal(t, "deadlock in graph g: no node ready; join awaits p via a->join", err.Error())
}

func TestNodeError_Format(t *testing.T) {
	inner := errors.New("boom")
	err := &NodeError{Node: "worker", Err: inner}
	assert.Equal(t, "node worker: boom", err.Error())
	assert.True(t, errors.Is(err, inner))
}

func TestExitReason_String(t *testing.T) {
	assert.Equal(t, "predicate", ExitPredicate.String())
	assert.Equal(t, "exhausted", ExitExhausted.String())
}
