package prebuilt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/agentgraph/graph"
	"github.com/smallnest/agentgraph/memory"
	"github.com/smallnest/agentgraph/model"
)

// scriptedProvider replays canned responses and records every invocation.
type scriptedProvider struct {
	responses []*model.Response
	calls     [][]model.Message
}

func (p *scriptedProvider) Invoke(ctx context.Context, messages []model.Message, tools []graph.Tool, settings model.Settings) (*model.Response, error) {
	p.calls = append(p.calls, messages)
	i := len(p.calls) - 1
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	return p.responses[i], nil
}

type recordingTool struct {
	name   string
	inputs []string
	result string
}

func (t *recordingTool) Name() string        { return t.name }
func (t *recordingTool) Description() string { return "records calls" }
func (t *recordingTool) Call(ctx context.Context, input string) (string, error) {
	t.inputs = append(t.inputs, input)
	return t.result, nil
}

func TestAgentNode_Forward(t *testing.T) {
	provider := &scriptedProvider{responses: []*model.Response{
		{Type: model.ResponseContent, Content: `{"answer": "42"}`},
	}}

	agent := NewAgent("solver",
		graph.Keys(map[string]string{"question": "the question"}),
		graph.Keys(map[string]string{"answer": "the answer"}),
		provider,
		WithSystemPrompt("Answer precisely."),
	)

	out, err := agent.Forward(context.Background(), &graph.ExecContext{
		Input: graph.Payload{"question": graph.String("meaning of life?")},
		Node:  agent,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", out["answer"].Str())

	require.Len(t, provider.calls, 1)
	messages := provider.calls[0]
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "Answer precisely.")
	assert.Contains(t, messages[0].Content, "answer")
	assert.Equal(t, model.RoleUser, messages[1].Role)
	assert.Contains(t, messages[1].Content, "meaning of life?")
}

func TestAgentNode_ToolRound(t *testing.T) {
	provider := &scriptedProvider{responses: []*model.Response{
		{Type: model.ResponseToolCall, ToolCalls: []model.ToolCall{{
			ID: "c1", Name: "lookup", Arguments: `{"input":"population of spain"}`,
		}}},
		{Type: model.ResponseContent, Content: `{"answer": "47 million"}`},
	}}
	lookup := &recordingTool{name: "lookup", result: "about 47 million"}

	agent := NewAgent("researcher",
		graph.InheritAll(),
		graph.Keys(map[string]string{"answer": ""}),
		provider,
	)

	out, err := agent.Forward(context.Background(), &graph.ExecContext{
		Input: graph.Payload{"question": graph.String("how many people live in Spain?")},
		Tools: []graph.Tool{lookup},
		Node:  agent,
	})
	require.NoError(t, err)
	assert.Equal(t, "47 million", out["answer"].Str())

	require.Equal(t, []string{"population of spain"}, lookup.inputs)

	// Second invocation carries the assistant tool call and the tool result.
	require.Len(t, provider.calls, 2)
	second := provider.calls[1]
	assert.Equal(t, model.RoleAssistant, second[len(second)-2].Role)
	assert.Equal(t, model.RoleTool, second[len(second)-1].Role)
	assert.Equal(t, "c1", second[len(second)-1].ToolCallID)
	assert.Equal(t, "about 47 million", second[len(second)-1].Content)
}

func TestAgentNode_UnknownToolReportedToModel(t *testing.T) {
	provider := &scriptedProvider{responses: []*model.Response{
		{Type: model.ResponseToolCall, ToolCalls: []model.ToolCall{{
			ID: "c1", Name: "missing", Arguments: `{}`,
		}}},
		{Type: model.ResponseContent, Content: `{"answer": "done without tool"}`},
	}}

	agent := NewAgent("a", graph.InheritAll(), graph.Keys(map[string]string{"answer": ""}), provider)

	out, err := agent.Forward(context.Background(), &graph.ExecContext{
		Input: graph.Payload{"q": graph.String("x")},
		Node:  agent,
	})
	require.NoError(t, err)
	assert.Equal(t, "done without tool", out["answer"].Str())

	second := provider.calls[1]
	assert.Contains(t, second[len(second)-1].Content, "tool error")
}

func TestAgentNode_ToolBudgetExhausted(t *testing.T) {
	provider := &scriptedProvider{responses: []*model.Response{
		{Type: model.ResponseToolCall, ToolCalls: []model.ToolCall{{
			ID: "c", Name: "loop", Arguments: `{"input":"again"}`,
		}}},
	}}
	loop := &recordingTool{name: "loop", result: "again"}

	agent := NewAgent("a", graph.InheritAll(), graph.InheritAll(), provider,
		WithMaxToolRounds(2))

	_, err := agent.Forward(context.Background(), &graph.ExecContext{
		Input: graph.Payload{"q": graph.String("x")},
		Tools: []graph.Tool{loop},
		Node:  agent,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool budget")
}

func TestAgentNode_MemoryRoundTrip(t *testing.T) {
	provider := &scriptedProvider{responses: []*model.Response{
		{Type: model.ResponseContent, Content: `{"answer": "ok"}`},
	}}
	mem := memory.NewBuffer(0)
	ctx := context.Background()

	require.NoError(t, mem.Append(ctx, graph.Utterance{Role: "user", Content: "earlier question"}))
	require.NoError(t, mem.Append(ctx, graph.Utterance{Role: "assistant", Content: "earlier answer"}))

	agent := NewAgent("a", graph.InheritAll(), graph.Keys(map[string]string{"answer": ""}), provider)

	_, err := agent.Forward(ctx, &graph.ExecContext{
		Input:  graph.Payload{"q": graph.String("new question")},
		Memory: mem,
		Node:   agent,
	})
	require.NoError(t, err)

	// History replayed into the prompt.
	messages := provider.calls[0]
	require.Len(t, messages, 4)
	assert.Equal(t, "earlier question", messages[1].Content)
	assert.Equal(t, model.RoleAssistant, messages[2].Role)

	// This exchange recorded.
	recent, err := mem.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Contains(t, recent[0].Content, "new question")
	assert.Equal(t, "assistant", recent[1].Role)
}
