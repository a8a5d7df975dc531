package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallnest/agentgraph/graph"
)

const judgeSystemPrompt = "You are a strict classifier. " +
	"Given a message and a condition, decide whether the condition holds for the message. " +
	"Answer with exactly one word: yes or no."

// ProviderJudge answers yes/no condition checks with a model call, for
// predicate-gated switch edges.
type ProviderJudge struct {
	provider Provider
	settings Settings
}

var _ graph.Judge = (*ProviderJudge)(nil)

// NewProviderJudge creates a judge on top of a provider. Settings apply to
// every decision call; a low temperature is forced when none is set.
func NewProviderJudge(provider Provider, settings Settings) *ProviderJudge {
	return &ProviderJudge{provider: provider, settings: settings}
}

// Decide implements graph.Judge.
func (j *ProviderJudge) Decide(ctx context.Context, condition string, input graph.Payload) (bool, error) {
	var sb strings.Builder
	sb.WriteString("Condition: ")
	sb.WriteString(condition)
	sb.WriteString("\n\nMessage:\n")
	for _, k := range input.Keys() {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(input[k].Text())
		sb.WriteString("\n")
	}

	resp, err := j.provider.Invoke(ctx, []Message{
		{Role: RoleSystem, Content: judgeSystemPrompt},
		{Role: RoleUser, Content: sb.String()},
	}, nil, j.settings)
	if err != nil {
		return false, err
	}
	if resp.Type != ResponseContent {
		return false, fmt.Errorf("judge: unexpected tool call from model")
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Content))
	answer = strings.Trim(answer, ".!\"'")
	switch {
	case answer == "yes" || strings.HasPrefix(answer, "yes"):
		return true, nil
	case answer == "no" || strings.HasPrefix(answer, "no"):
		return false, nil
	}
	return false, fmt.Errorf("judge: model answered %q, want yes or no", resp.Content)
}
