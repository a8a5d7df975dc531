package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportableGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph("export")

	sw := NewSwitch("route", InheritAll(), InheritAll())
	sw.Bind("double", func(ctx context.Context, input Payload, _ *Store) (bool, error) {
		return true, nil
	})
	require.NoError(t, g.AddNode(sw))
	require.NoError(t, g.AddNode(doubler()))
	require.NoError(t, g.AddEdge(EntryName, "route", InheritAll()))
	require.NoError(t, g.AddEdge("route", "double", Keys(map[string]string{"x": ""})))
	require.NoError(t, g.AddEdge("double", ExitName, Keys(map[string]string{"y": ""})))
	return g
}

func TestExporter_DrawMermaid(t *testing.T) {
	out := NewExporter(exportableGraph(t)).DrawMermaid()

	assert.True(t, strings.HasPrefix(out, "flowchart TD\n"))
	assert.Contains(t, out, `ENTRY(["ENTRY"])`)
	assert.Contains(t, out, `EXIT(["EXIT"])`)
	assert.Contains(t, out, `route{"route"}`, "switches render as diamonds")
	assert.Contains(t, out, `double["double"]`)
	assert.Contains(t, out, "route -->|x| double")
	assert.Contains(t, out, "double -->|y| EXIT")
	assert.Contains(t, out, "ENTRY --> route", "inherit-all edges carry no label")
}

func TestExporter_DrawMermaidDirection(t *testing.T) {
	out := NewExporter(exportableGraph(t)).DrawMermaidWithOptions(MermaidOptions{Direction: "LR"})
	assert.True(t, strings.HasPrefix(out, "flowchart LR\n"))
}

func TestExporter_DrawDOT(t *testing.T) {
	out := NewExporter(exportableGraph(t)).DrawDOT()

	assert.True(t, strings.HasPrefix(out, "digraph G {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, "route [shape=diamond];")
	assert.Contains(t, out, `route -> double [label="x"];`)
	assert.Contains(t, out, "ENTRY -> route;")
}

func TestExporter_LoopUsesControllerBoundary(t *testing.T) {
	l := counterLoop(t, 1, nil)
	out := NewExporter(&l.Graph).DrawMermaid()

	assert.Contains(t, out, `CONTROLLER(["CONTROLLER"])`)
	assert.NotContains(t, out, "ENTRY")
	// Source and sink coincide; the boundary renders once.
	assert.Equal(t, 1, strings.Count(out, `(["CONTROLLER"])`))
}

func TestExporter_Summary(t *testing.T) {
	g := exportableGraph(t)
	require.NoError(t, g.Build(context.Background(), nil))

	res, err := g.Invoke(context.Background(), Payload{"x": Int(21)}, nil)
	require.NoError(t, err)

	summary := NewExporter(g).Summary(res)
	assert.Contains(t, summary, "graph export")
	assert.Contains(t, summary, res.RunID)
	assert.Contains(t, summary, "passes:")
	assert.Contains(t, summary, "42")
}
