// Package prebuilt provides ready-made node implementations built on the
// engine's ports.
//
// AgentNode is a model-backed node: it renders its pulled payload into a
// prompt, runs a model.Provider with the tools bound to the node, executes
// requested tool calls for a bounded number of rounds, and parses the
// final completion into its push contract. A bound memory carries
// conversation history across invocations.
//
//	agent := prebuilt.NewAgent("researcher",
//		graph.Keys(map[string]string{"question": "the research question"}),
//		graph.Keys(map[string]string{"answer": "the researched answer"}),
//		provider,
//		prebuilt.WithSystemPrompt("You are a careful researcher."),
//	)
//	g.AddNode(agent)
//	g.BindTools("researcher", search)
//	g.BindMemory("researcher", memory.NewBuffer(100))
//
// NewAgentTemplate stamps out many agents from one blueprint, sharing the
// model client by reference while cloning the rest of the configuration
// per instance.
package prebuilt
