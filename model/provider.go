package model

import (
	"context"
	"fmt"

	"github.com/smallnest/agentgraph/graph"
)

// Role labels a message's author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a model conversation.
type Message struct {
	Role    Role
	Content string

	// ToolCalls carries the calls an assistant message requested.
	ToolCalls []ToolCall

	// ToolCallID links a tool-role message back to the call it answers.
	ToolCallID string
}

// ToolCall is a model's request to invoke a named tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ResponseType distinguishes a content answer from a tool-call request.
type ResponseType int

const (
	// ResponseContent is a plain text completion.
	ResponseContent ResponseType = iota
	// ResponseToolCall asks the caller to run tools and report back.
	ResponseToolCall
)

// Response is a provider's answer to one Invoke.
type Response struct {
	Type      ResponseType
	Content   string
	ToolCalls []ToolCall
}

// Settings are the per-call generation knobs. Zero values mean
// provider defaults.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider is the single surface the engine's model-backed nodes speak to.
// Implementations wrap a concrete LLM client; tool descriptors are passed
// through so the model may request calls, but the provider never executes
// tools itself.
type Provider interface {
	Invoke(ctx context.Context, messages []Message, tools []graph.Tool, settings Settings) (*Response, error)
}

// ProviderError wraps a failure of a named provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("model provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// toolParameters is the JSON schema advertised for engine tools, which all
// take a single free-form string.
func toolParameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": "the tool input",
			},
		},
		"required": []string{"input"},
	}
}
