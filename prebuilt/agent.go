package prebuilt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smallnest/agentgraph/format"
	"github.com/smallnest/agentgraph/graph"
	"github.com/smallnest/agentgraph/model"
)

const defaultMaxToolRounds = 10

// AgentNode is a model-backed node. Its forward phase renders the pulled
// payload into a prompt, runs the model with the tools bound to the node,
// executes requested tool calls up to a bounded number of rounds, and
// parses the final completion into the node's push contract. Conversation
// history flows through the memory bound to the node, if any.
type AgentNode struct {
	graph.BaseNode

	provider      model.Provider
	formatter     *format.Formatter
	settings      model.Settings
	systemPrompt  string
	maxToolRounds int
	memoryWindow  int
}

// AgentOption customizes an AgentNode.
type AgentOption func(*AgentNode)

// WithSystemPrompt sets the leading system message.
func WithSystemPrompt(prompt string) AgentOption {
	return func(a *AgentNode) { a.systemPrompt = prompt }
}

// WithSettings sets the per-call generation knobs.
func WithSettings(s model.Settings) AgentOption {
	return func(a *AgentNode) { a.settings = s }
}

// WithMaxToolRounds bounds the model/tool round-trips per forward.
func WithMaxToolRounds(n int) AgentOption {
	return func(a *AgentNode) { a.maxToolRounds = n }
}

// WithMemoryWindow sets how many recent utterances are replayed into the
// prompt. 0 disables replay even when a memory is bound.
func WithMemoryWindow(n int) AgentOption {
	return func(a *AgentNode) { a.memoryWindow = n }
}

// WithFormatter overrides the payload formatter.
func WithFormatter(f *format.Formatter) AgentOption {
	return func(a *AgentNode) { a.formatter = f }
}

// NewAgent creates a model-backed node.
func NewAgent(name string, pull, push graph.KeySet, provider model.Provider, opts ...AgentOption) *AgentNode {
	a := &AgentNode{
		BaseNode:      graph.NewBaseNode(name, pull, push),
		provider:      provider,
		formatter:     format.New(),
		maxToolRounds: defaultMaxToolRounds,
		memoryWindow:  20,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Forward implements graph.Node.
func (a *AgentNode) Forward(ctx context.Context, ec *graph.ExecContext) (graph.Payload, error) {
	messages, prompt, err := a.buildMessages(ctx, ec)
	if err != nil {
		return nil, err
	}

	var content string
	for round := 0; ; round++ {
		resp, err := a.provider.Invoke(ctx, messages, ec.Tools, a.settings)
		if err != nil {
			return nil, err
		}

		if resp.Type == model.ResponseContent {
			content = resp.Content
			break
		}

		if round >= a.maxToolRounds {
			return nil, fmt.Errorf("agent %s: tool budget of %d rounds exhausted", a.Name(), a.maxToolRounds)
		}

		messages = append(messages, model.Message{
			Role:      model.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			result, err := a.runTool(ctx, ec.Tools, call)
			if err != nil {
				// Tool failures go back to the model as call results, so
				// it can recover or answer without the tool.
				result = "tool error: " + err.Error()
			}
			messages = append(messages, model.Message{
				Role:       model.RoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	out, err := a.formatter.Parse(content, a.PushKeys())
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.Name(), err)
	}

	if ec.Memory != nil {
		if err := ec.Memory.Append(ctx, graph.Utterance{Role: "user", Content: prompt}); err != nil {
			return nil, fmt.Errorf("agent %s: record prompt: %w", a.Name(), err)
		}
		if err := ec.Memory.Append(ctx, graph.Utterance{Role: "assistant", Content: content}); err != nil {
			return nil, fmt.Errorf("agent %s: record reply: %w", a.Name(), err)
		}
	}

	return out, nil
}

func (a *AgentNode) buildMessages(ctx context.Context, ec *graph.ExecContext) ([]model.Message, string, error) {
	var system strings.Builder
	if a.systemPrompt != "" {
		system.WriteString(a.systemPrompt)
		system.WriteString("\n\n")
	}
	system.WriteString(a.formatter.Instructions(a.PushKeys()))

	messages := []model.Message{{Role: model.RoleSystem, Content: system.String()}}

	if ec.Memory != nil && a.memoryWindow > 0 {
		history, err := ec.Memory.Recent(ctx, a.memoryWindow)
		if err != nil {
			return nil, "", fmt.Errorf("agent %s: read memory: %w", a.Name(), err)
		}
		for _, u := range history {
			role := model.RoleUser
			if u.Role == "assistant" {
				role = model.RoleAssistant
			}
			messages = append(messages, model.Message{Role: role, Content: u.Content})
		}
	}

	prompt := a.formatter.Render(ec.Input, a.PullKeys())
	messages = append(messages, model.Message{Role: model.RoleUser, Content: prompt})
	return messages, prompt, nil
}

func (a *AgentNode) runTool(ctx context.Context, tools []graph.Tool, call model.ToolCall) (string, error) {
	var target graph.Tool
	for _, t := range tools {
		if t.Name() == call.Name {
			target = t
			break
		}
	}
	if target == nil {
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}

	input := call.Arguments
	var args struct {
		Input string `json:"input"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err == nil && args.Input != "" {
		input = args.Input
	}

	return target.Call(ctx, input)
}
