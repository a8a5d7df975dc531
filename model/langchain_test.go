package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/agentgraph/graph"
)

// mockLLM is a mock implementation of llms.Model for testing.
type mockLLM struct {
	response *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	options  []llms.CallOption
}

func (m *mockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.messages = messages
	m.options = options

	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes the input" }
func (echoTool) Call(ctx context.Context, input string) (string, error) {
	return input, nil
}

func contentResponse(text string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text}},
	}
}

func TestLangChainProvider_Content(t *testing.T) {
	llm := &mockLLM{response: contentResponse("hello")}
	provider := NewLangChainProvider(llm)

	resp, err := provider.Invoke(context.Background(), []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
	}, nil, Settings{})
	require.NoError(t, err)

	assert.Equal(t, ResponseContent, resp.Type)
	assert.Equal(t, "hello", resp.Content)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, llm.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, llm.messages[1].Role)
}

func TestLangChainProvider_ToolCall(t *testing.T) {
	llm := &mockLLM{response: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				ID:   "call-1",
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      "echo",
					Arguments: `{"input":"ping"}`,
				},
			}},
		}},
	}}
	provider := NewLangChainProvider(llm)

	resp, err := provider.Invoke(context.Background(), []Message{
		{Role: RoleUser, Content: "call echo"},
	}, []graph.Tool{echoTool{}}, Settings{})
	require.NoError(t, err)

	assert.Equal(t, ResponseToolCall, resp.Type)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call-1", resp.ToolCalls[0].ID)
	assert.Equal(t, "echo", resp.ToolCalls[0].Name)
	assert.Equal(t, `{"input":"ping"}`, resp.ToolCalls[0].Arguments)
}

func TestLangChainProvider_ToolRoundTripMessages(t *testing.T) {
	llm := &mockLLM{response: contentResponse("pong")}
	provider := NewLangChainProvider(llm)

	_, err := provider.Invoke(context.Background(), []Message{
		{Role: RoleUser, Content: "call echo"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call-1", Name: "echo", Arguments: `{"input":"ping"}`}}},
		{Role: RoleTool, ToolCallID: "call-1", Content: "ping"},
	}, nil, Settings{})
	require.NoError(t, err)

	require.Len(t, llm.messages, 3)
	assert.Equal(t, llms.ChatMessageTypeAI, llm.messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeTool, llm.messages[2].Role)

	tr, ok := llm.messages[2].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call-1", tr.ToolCallID)
	assert.Equal(t, "ping", tr.Content)
}

func TestLangChainProvider_Error(t *testing.T) {
	llm := &mockLLM{err: errors.New("rate limited")}
	provider := NewLangChainProvider(llm)

	_, err := provider.Invoke(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
	}, nil, Settings{})
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "langchain", perr.Provider)
}

func TestLangChainProvider_EmptyResponse(t *testing.T) {
	llm := &mockLLM{response: &llms.ContentResponse{}}
	provider := NewLangChainProvider(llm)

	_, err := provider.Invoke(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
	}, nil, Settings{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestLangChainProvider_Cancellation(t *testing.T) {
	llm := &mockLLM{response: contentResponse("late")}
	provider := NewLangChainProvider(llm)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Invoke(ctx, []Message{
		{Role: RoleUser, Content: "hi"},
	}, nil, Settings{})
	assert.ErrorIs(t, err, context.Canceled)
}
