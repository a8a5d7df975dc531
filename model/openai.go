package model

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smallnest/agentgraph/graph"
)

// chatCompleter is the slice of the go-openai client the provider uses,
// kept narrow so tests can substitute it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider adapts the go-openai client to the Provider interface,
// for callers who want the raw OpenAI surface without langchaingo in
// between.
type OpenAIProvider struct {
	client       chatCompleter
	defaultModel string
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider wraps a configured go-openai client. defaultModel is
// used when Settings.Model is empty.
func NewOpenAIProvider(client *openai.Client, defaultModel string) *OpenAIProvider {
	return &OpenAIProvider{client: client, defaultModel: defaultModel}
}

// Invoke implements Provider.
func (p *OpenAIProvider) Invoke(ctx context.Context, messages []Message, tools []graph.Tool, settings Settings) (*Response, error) {
	req := openai.ChatCompletionRequest{
		Model:       settings.Model,
		Temperature: float32(settings.Temperature),
		MaxTokens:   settings.MaxTokens,
	}
	if req.Model == "" {
		req.Model = p.defaultModel
	}

	for _, msg := range messages {
		req.Messages = append(req.Messages, toOpenAIMessage(msg))
	}

	for _, t := range tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  toolParameters(),
			},
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &ProviderError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: "openai", Err: ErrEmptyResponse}
	}

	choice := resp.Choices[0].Message
	if len(choice.ToolCalls) > 0 {
		calls := make([]ToolCall, 0, len(choice.ToolCalls))
		for _, tc := range choice.ToolCalls {
			calls = append(calls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		return &Response{Type: ResponseToolCall, Content: choice.Content, ToolCalls: calls}, nil
	}

	return &Response{Type: ResponseContent, Content: choice.Content}, nil
}

func toOpenAIMessage(msg Message) openai.ChatCompletionMessage {
	m := openai.ChatCompletionMessage{
		Role:       string(msg.Role),
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}
	for _, tc := range msg.ToolCalls {
		m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
			ID:   tc.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return m
}
