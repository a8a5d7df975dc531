package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/agentgraph/graph"
)

func TestFormatter_Render(t *testing.T) {
	f := New()
	keys := graph.Keys(map[string]string{
		"question": "the user's question",
		"context":  "retrieved documents",
	})

	out := f.Render(graph.Payload{
		"question": graph.String("what is the capital of France?"),
		"context":  graph.String("France is a country in Europe."),
		"secret":   graph.String("not in contract"),
	}, keys)

	assert.Contains(t, out, "## question")
	assert.Contains(t, out, "_the user's question_")
	assert.Contains(t, out, "what is the capital of France?")
	assert.Contains(t, out, "## context")
	assert.NotContains(t, out, "secret")
}

func TestFormatter_Instructions(t *testing.T) {
	f := New()
	keys := graph.Keys(map[string]string{
		"answer":     "the final answer",
		"confidence": "0 to 1",
	})

	out := f.Instructions(keys)
	assert.Contains(t, out, "JSON object")
	assert.Contains(t, out, "- answer: the final answer")
	assert.Contains(t, out, "- confidence: 0 to 1")
}

func TestFormatter_ParseBareJSON(t *testing.T) {
	f := New()
	keys := graph.Keys(map[string]string{"answer": "", "confidence": ""})

	p, err := f.Parse(`{"answer": "Paris", "confidence": 0.9, "extra": true}`, keys)
	require.NoError(t, err)

	assert.Equal(t, "Paris", p["answer"].Str())
	assert.InDelta(t, 0.9, p["confidence"].Num(), 1e-9)
	_, hasExtra := p["extra"]
	assert.False(t, hasExtra)
}

func TestFormatter_ParseFencedJSON(t *testing.T) {
	f := New()
	keys := graph.Keys(map[string]string{"answer": ""})

	text := "Here is my answer:\n\n```json\n{\"answer\": \"Paris\"}\n```\n\nLet me know if you need more."
	p, err := f.Parse(text, keys)
	require.NoError(t, err)
	assert.Equal(t, "Paris", p["answer"].Str())
}

func TestFormatter_ParseKeyValueLines(t *testing.T) {
	f := New()
	keys := graph.Keys(map[string]string{"answer": "", "confidence": ""})

	text := "answer: Paris\n**confidence**: high\nsome unrelated prose here"
	p, err := f.Parse(text, keys)
	require.NoError(t, err)
	assert.Equal(t, "Paris", p["answer"].Str())
	assert.Equal(t, "high", p["confidence"].Str())
}

func TestFormatter_ParseSingleKeyFallback(t *testing.T) {
	f := New()
	keys := graph.Keys(map[string]string{"summary": "a short summary"})

	p, err := f.Parse("The report covers Q3 revenue growth.", keys)
	require.NoError(t, err)
	assert.Equal(t, "The report covers Q3 revenue growth.", p["summary"].Str())
}

func TestFormatter_ParseNoMatch(t *testing.T) {
	f := New()
	keys := graph.Keys(map[string]string{"a": "", "b": ""})

	_, err := f.Parse(`{"unrelated": 1}`, keys)
	assert.Error(t, err)
}

func TestFormatter_ParseInheritAll(t *testing.T) {
	f := New()

	p, err := f.Parse(`{"x": 1, "y": "two"}`, graph.InheritAll())
	require.NoError(t, err)
	assert.Equal(t, 1, p["x"].Int())
	assert.Equal(t, "two", p["y"].Str())
}

func TestRenderHTML_Sanitizes(t *testing.T) {
	out := RenderHTML("# Title\n\nSome **bold** text.\n\n<script>alert(1)</script>")

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}
