package model

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/agentgraph/graph"
)

// ErrEmptyResponse is returned when the underlying model yields no choices.
var ErrEmptyResponse = errors.New("no response")

// LangChainProvider adapts any langchaingo llms.Model to the Provider
// interface, covering OpenAI, Anthropic, Ollama and the rest of the
// langchaingo backends with one wrapper.
type LangChainProvider struct {
	llm  llms.Model
	name string
}

var _ Provider = (*LangChainProvider)(nil)

// NewLangChainProvider wraps a langchaingo model.
func NewLangChainProvider(llm llms.Model) *LangChainProvider {
	return &LangChainProvider{llm: llm, name: "langchain"}
}

// Invoke implements Provider.
func (p *LangChainProvider) Invoke(ctx context.Context, messages []Message, tools []graph.Tool, settings Settings) (*Response, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, toLangChainMessage(msg))
	}

	opts := callOptions(tools, settings)

	resp, err := p.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, &ProviderError{Provider: p.name, Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: p.name, Err: ErrEmptyResponse}
	}

	choice := resp.Choices[0]
	if len(choice.ToolCalls) > 0 {
		calls := make([]ToolCall, 0, len(choice.ToolCalls))
		for _, tc := range choice.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}
			calls = append(calls, ToolCall{
				ID:        tc.ID,
				Name:      tc.FunctionCall.Name,
				Arguments: tc.FunctionCall.Arguments,
			})
		}
		if len(calls) > 0 {
			return &Response{Type: ResponseToolCall, Content: choice.Content, ToolCalls: calls}, nil
		}
	}

	return &Response{Type: ResponseContent, Content: choice.Content}, nil
}

func toLangChainMessage(msg Message) llms.MessageContent {
	switch msg.Role {
	case RoleSystem:
		return llms.TextParts(llms.ChatMessageTypeSystem, msg.Content)
	case RoleAssistant:
		mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if msg.Content != "" {
			mc.Parts = append(mc.Parts, llms.TextContent{Text: msg.Content})
		}
		for _, tc := range msg.ToolCalls {
			mc.Parts = append(mc.Parts, llms.ToolCall{
				ID:   tc.ID,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		return mc
	case RoleTool:
		return llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{
					ToolCallID: msg.ToolCallID,
					Content:    msg.Content,
				},
			},
		}
	default:
		return llms.TextParts(llms.ChatMessageTypeHuman, msg.Content)
	}
}

func callOptions(tools []graph.Tool, settings Settings) []llms.CallOption {
	var opts []llms.CallOption
	if settings.Model != "" {
		opts = append(opts, llms.WithModel(settings.Model))
	}
	if settings.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(settings.Temperature))
	}
	if settings.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(settings.MaxTokens))
	}
	if len(tools) > 0 {
		specs := make([]llms.Tool, 0, len(tools))
		for _, t := range tools {
			specs = append(specs, llms.Tool{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        t.Name(),
					Description: t.Description(),
					Parameters:  toolParameters(),
				},
			})
		}
		opts = append(opts, llms.WithTools(specs))
	}
	return opts
}
