package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incrementNode() *FuncNode {
	return NewFuncNode("inc",
		Keys(map[string]string{"number": ""}),
		Keys(map[string]string{"number": ""}),
		func(ctx context.Context, ec *ExecContext) (Payload, error) {
			return Payload{"number": Int(ec.Input["number"].Int() + 1)}, nil
		})
}

func counterLoop(t *testing.T, max int, terminate TerminateFunc) *Loop {
	t.Helper()
	l := NewLoop("counter", max, terminate)
	require.NoError(t, l.AddNode(incrementNode()))
	require.NoError(t, l.AddEdge(ControllerName, "inc", Keys(map[string]string{"number": ""})))
	require.NoError(t, l.AddEdge("inc", ControllerName, Keys(map[string]string{"number": ""})))
	require.NoError(t, l.Build(context.Background(), nil))
	return l
}

func TestLoop_ExhaustsIterationCeiling(t *testing.T) {
	ctx := context.Background()
	l := counterLoop(t, 3, nil)

	res, err := l.Run(ctx, Payload{"number": Int(0)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Output["number"].Int())
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, ExitExhausted, res.Reason)
}

func TestLoop_PredicateExit(t *testing.T) {
	ctx := context.Background()
	l := counterLoop(t, 10, func(ctx context.Context, merged Payload, attrs *Store) (bool, error) {
		return merged["number"].Int() >= 2, nil
	})

	res, err := l.Run(ctx, Payload{"number": Int(0)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Output["number"].Int())
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, ExitPredicate, res.Reason)
}

func TestLoop_StatePersistsUnreturnedKeys(t *testing.T) {
	ctx := context.Background()
	// The body pulls and pushes only "number"; "label" must survive every
	// pass untouched.
	l := counterLoop(t, 2, nil)

	res, err := l.Run(ctx, Payload{"number": Int(0), "label": String("kept")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Output["number"].Int())
	assert.Equal(t, "kept", res.Output["label"].Str())
}

func TestLoop_SeedState(t *testing.T) {
	ctx := context.Background()
	l := counterLoop(t, 1, nil)
	l.SetSeed(Payload{"number": Int(40), "origin": String("seed")})

	// Invocation input wins over the seed on shared keys.
	res, err := l.Run(ctx, Payload{"number": Int(10)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 11, res.Output["number"].Int())
	assert.Equal(t, "seed", res.Output["origin"].Str())
}

func TestLoop_RunBeforeBuild(t *testing.T) {
	l := NewLoop("unbuilt", 1, nil)
	_, err := l.Run(context.Background(), Payload{}, nil)
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestLoop_MissingControllerEdge(t *testing.T) {
	l := NewLoop("l", 1, nil)
	require.NoError(t, l.AddNode(incrementNode()))
	require.NoError(t, l.AddEdge("inc", ControllerName, Keys(map[string]string{"number": ""})))
	err := l.Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingControllerEdge)
}

func TestLoop_IterationHook(t *testing.T) {
	ctx := context.Background()
	l := counterLoop(t, 3, nil)

	var iterations []int
	l.Hooks().Register(StageLoopIteration, func(ctx context.Context, ev *HookEvent) error {
		iterations = append(iterations, ev.Iteration)
		return nil
	})

	_, err := l.Run(ctx, Payload{"number": Int(0)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, iterations)
}

func TestLoop_AsNestedNode(t *testing.T) {
	ctx := context.Background()
	l := counterLoop(t, 3, nil)
	l.SetContract(Keys(map[string]string{"number": ""}), Keys(map[string]string{"number": ""}))

	g := NewGraph("outer")
	require.NoError(t, g.AddNode(l))
	require.NoError(t, g.AddEdge(EntryName, "counter", Keys(map[string]string{"number": ""})))
	require.NoError(t, g.AddEdge("counter", ExitName, Keys(map[string]string{"number": ""})))
	require.NoError(t, g.Build(ctx, nil))

	res, err := g.Invoke(ctx, Payload{"number": Int(0)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Output["number"].Int())

	reason, ok := l.Local().Get("exit_reason")
	require.True(t, ok)
	assert.Equal(t, "exhausted", reason.Str())
	iters, ok := l.Local().Get("iterations")
	require.True(t, ok)
	assert.Equal(t, 3, iters.Int())
}
