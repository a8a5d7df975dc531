// Package tool provides ready-made implementations of the graph.Tool port
// for model-backed nodes.
//
// Tools take a single free-form string input and return text, so a model
// can call them through function calling without per-tool schemas.
//
// Provided tools:
//
//   - BraveSearch — web search through the Brave Search API
//   - WebReader — fetch a page and extract its readable text
//
// Bind tools to a node through the graph:
//
//	search, _ := tool.NewBraveSearch("")
//	g.BindTools("researcher", search, tool.NewWebReader())
package tool
