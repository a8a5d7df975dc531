package prebuilt

import (
	"fmt"

	"github.com/smallnest/agentgraph/graph"
	"github.com/smallnest/agentgraph/model"
)

// AgentType is the target type name the agent factory registers under.
const AgentType = "agent"

// RegisterAgentFactory binds the agent factory to reg and declares the
// provider implementations shared-scope, so templates reuse one model
// client across every instance while the rest of the configuration is
// cloned per instance.
func RegisterAgentFactory(reg *graph.Registry) error {
	reg.RegisterShared((*model.LangChainProvider)(nil))
	reg.RegisterShared((*model.OpenAIProvider)(nil))
	return reg.RegisterFactory(AgentType, agentFactory)
}

// agentFactory materializes an AgentNode from a template configuration.
//
// Recognized keys: "provider" (model.Provider, required), "system_prompt",
// "model", "temperature", "max_tokens", "max_tool_rounds",
// "memory_window", "pull", "push" (map[string]string key contracts).
func agentFactory(name string, cfg graph.Config) (graph.Node, error) {
	provider, ok := cfg["provider"].(model.Provider)
	if !ok {
		return nil, fmt.Errorf("agent %s: config key %q must hold a model.Provider", name, "provider")
	}

	pull := graph.InheritAll()
	if m, ok := cfg["pull"].(map[string]string); ok {
		pull = graph.Keys(m)
	}
	push := graph.InheritAll()
	if m, ok := cfg["push"].(map[string]string); ok {
		push = graph.Keys(m)
	}

	settings := model.Settings{}
	if s, ok := cfg["model"].(string); ok {
		settings.Model = s
	}
	if f, ok := cfg["temperature"].(float64); ok {
		settings.Temperature = f
	}
	if n, ok := cfg["max_tokens"].(int); ok {
		settings.MaxTokens = n
	}

	opts := []AgentOption{WithSettings(settings)}
	if s, ok := cfg["system_prompt"].(string); ok {
		opts = append(opts, WithSystemPrompt(s))
	}
	if n, ok := cfg["max_tool_rounds"].(int); ok {
		opts = append(opts, WithMaxToolRounds(n))
	}
	if n, ok := cfg["memory_window"].(int); ok {
		opts = append(opts, WithMemoryWindow(n))
	}

	return NewAgent(name, pull, push, provider, opts...), nil
}

// NewAgentTemplate creates a template whose instances share one provider
// by reference; everything else in defaults is cloned per instance. The
// factory is registered on a fresh registry bound to the template.
func NewAgentTemplate(provider model.Provider, defaults graph.Config) (*graph.NodeTemplate, error) {
	reg := graph.NewRegistry()
	if err := RegisterAgentFactory(reg); err != nil {
		return nil, err
	}

	cfg := make(graph.Config, len(defaults)+1)
	for k, v := range defaults {
		cfg[k] = v
	}
	cfg["provider"] = graph.Share(provider)

	return graph.NewTemplate(AgentType, cfg).WithRegistry(reg), nil
}
