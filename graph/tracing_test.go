package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracedGraph(t *testing.T) (*Graph, *Tracer) {
	t.Helper()
	g := NewGraph("traced")
	require.NoError(t, g.AddNode(doubler()))
	require.NoError(t, g.AddEdge(EntryName, "double", Keys(map[string]string{"x": ""})))
	require.NoError(t, g.AddEdge("double", ExitName, Keys(map[string]string{"y": ""})))

	tr := NewTracer()
	tr.Attach(g.Hooks())
	require.NoError(t, g.Build(context.Background(), nil))
	return g, tr
}

func TestTracer_RecordsNodeAndEdgeSpans(t *testing.T) {
	ctx := context.Background()
	g, tr := tracedGraph(t)

	_, err := g.Invoke(ctx, Payload{"x": Int(21)}, nil)
	require.NoError(t, err)

	spans := tr.Spans()
	byEvent := map[TraceEvent][]*TraceSpan{}
	for _, s := range spans {
		byEvent[s.Event] = append(byEvent[s.Event], s)
	}

	require.Len(t, byEvent[TraceEventNodeEnd], 1)
	node := byEvent[TraceEventNodeEnd][0]
	assert.Equal(t, "double", node.Node)
	assert.NotEmpty(t, node.ID)
	assert.False(t, node.EndTime.Before(node.StartTime))
	assert.Equal(t, 42, node.Payload["y"].Int())

	// One send seeding ENTRY->double, one propagating double->EXIT.
	require.Len(t, byEvent[TraceEventEdgeSend], 2)
	edges := []string{byEvent[TraceEventEdgeSend][0].Edge, byEvent[TraceEventEdgeSend][1].Edge}
	assert.ElementsMatch(t, []string{"ENTRY->double", "double->EXIT"}, edges)

	assert.Empty(t, byEvent[TraceEventNodeError])
}

func TestTracer_RecordsNodeError(t *testing.T) {
	ctx := context.Background()
	g := NewGraph("g")
	fail := NewFuncNode("fail", InheritAll(), InheritAll(),
		func(ctx context.Context, ec *ExecContext) (Payload, error) {
			return nil, assert.AnError
		})
	require.NoError(t, g.AddNode(fail))
	require.NoError(t, g.AddEdge(EntryName, "fail", InheritAll()))
	require.NoError(t, g.AddEdge("fail", ExitName, InheritAll()))

	tr := NewTracer()
	tr.Attach(g.Hooks())
	require.NoError(t, g.Build(ctx, nil))

	_, err := g.Invoke(ctx, Payload{"x": Int(1)}, nil)
	require.Error(t, err)

	var errSpan *TraceSpan
	for _, s := range tr.Spans() {
		if s.Event == TraceEventNodeError {
			errSpan = s
		}
	}
	require.NotNil(t, errSpan)
	assert.Equal(t, "fail", errSpan.Node)
	assert.ErrorIs(t, errSpan.Err, assert.AnError)
}

func TestTracer_HookReceivesSpans(t *testing.T) {
	ctx := context.Background()
	g, tr := tracedGraph(t)

	var seen []TraceEvent
	tr.AddHook(TraceHookFunc(func(ctx context.Context, span *TraceSpan) {
		seen = append(seen, span.Event)
	}))

	_, err := g.Invoke(ctx, Payload{"x": Int(1)}, nil)
	require.NoError(t, err)
	assert.Contains(t, seen, TraceEventNodeEnd)
	assert.Contains(t, seen, TraceEventEdgeSend)
}

func TestTracer_LoopIterationSpans(t *testing.T) {
	ctx := context.Background()
	l := counterLoop(t, 2, nil)

	tr := NewTracer()
	tr.Attach(l.Hooks())

	_, err := l.Run(ctx, Payload{"number": Int(0)}, nil)
	require.NoError(t, err)

	var iters []int
	for _, s := range tr.Spans() {
		if s.Event == TraceEventLoopIteration {
			iters = append(iters, s.Iteration)
		}
	}
	assert.Equal(t, []int{1, 2}, iters)
}
