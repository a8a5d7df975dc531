// Package model adapts concrete LLM clients to the single Provider surface
// the engine's model-backed components speak to.
//
// Two adapters ship: LangChainProvider wraps any langchaingo llms.Model
// (OpenAI, Anthropic, Ollama and the other langchaingo backends), and
// OpenAIProvider wraps the go-openai client directly. Both pass tool
// descriptors through to the model and surface requested calls as
// ResponseToolCall; executing tools stays with the caller.
//
//	llm, _ := openai.New(openai.WithModel("gpt-4o"))
//	provider := model.NewLangChainProvider(llm)
//
//	resp, err := provider.Invoke(ctx, []model.Message{
//		{Role: model.RoleUser, Content: "Summarize the report."},
//	}, nil, model.Settings{Temperature: 0.2})
//
// ProviderJudge turns a Provider into a graph.Judge for predicate-gated
// switch edges: it asks the model a strict yes/no question and parses the
// one-word answer.
package model
