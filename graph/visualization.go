package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Exporter renders a graph's structure in diagram formats.
type Exporter struct {
	graph *Graph
}

// NewExporter creates an exporter for the given graph.
func NewExporter(g *Graph) *Exporter {
	return &Exporter{graph: g}
}

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	// Direction of the flowchart, e.g. "TD" or "LR".
	Direction string
}

// DrawMermaid generates a top-down Mermaid flowchart of the graph.
func (ge *Exporter) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid flowchart with custom options.
func (ge *Exporter) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	fmt.Fprintf(&sb, "    %s([\"%s\"])\n", ge.graph.source, ge.graph.source)
	sb.WriteString(fmt.Sprintf("    style %s fill:#90EE90\n", ge.graph.source))
	if ge.graph.sink != ge.graph.source {
		fmt.Fprintf(&sb, "    %s([\"%s\"])\n", ge.graph.sink, ge.graph.sink)
		sb.WriteString(fmt.Sprintf("    style %s fill:#FFB6C1\n", ge.graph.sink))
	}

	names := ge.graph.Nodes()
	sort.Strings(names)
	for _, name := range names {
		if _, ok := ge.graph.nodes[name].(switchValidator); ok {
			fmt.Fprintf(&sb, "    %s{\"%s\"}\n", name, name)
		} else {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", name, name)
		}
	}

	for _, e := range ge.graph.edges {
		keys := e.Keys().Names()
		if len(keys) > 0 {
			fmt.Fprintf(&sb, "    %s -->|%s| %s\n", e.Sender(), strings.Join(keys, ","), e.Receiver())
		} else {
			fmt.Fprintf(&sb, "    %s --> %s\n", e.Sender(), e.Receiver())
		}
	}

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph.
func (ge *Exporter) DrawDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TD;\n")
	sb.WriteString("    node [shape=box];\n")

	fmt.Fprintf(&sb, "    %s [shape=ellipse, style=filled, fillcolor=lightgreen];\n", ge.graph.source)
	if ge.graph.sink != ge.graph.source {
		fmt.Fprintf(&sb, "    %s [shape=ellipse, style=filled, fillcolor=lightpink];\n", ge.graph.sink)
	}

	names := ge.graph.Nodes()
	sort.Strings(names)
	for _, name := range names {
		if _, ok := ge.graph.nodes[name].(switchValidator); ok {
			fmt.Fprintf(&sb, "    %s [shape=diamond];\n", name)
		}
	}

	for _, e := range ge.graph.edges {
		keys := e.Keys().Names()
		if len(keys) > 0 {
			fmt.Fprintf(&sb, "    %s -> %s [label=\"%s\"];\n", e.Sender(), e.Receiver(), strings.Join(keys, ","))
		} else {
			fmt.Fprintf(&sb, "    %s -> %s;\n", e.Sender(), e.Receiver())
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	summaryKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	summaryValStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// Summary renders a styled terminal report of an invocation result.
func (ge *Exporter) Summary(res *Result) string {
	var sb strings.Builder
	sb.WriteString(summaryTitleStyle.Render(fmt.Sprintf("graph %s · run %s", ge.graph.Name(), res.RunID)))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s\n", summaryKeyStyle.Render("passes:"), summaryValStyle.Render(fmt.Sprintf("%d", res.Passes)))
	for _, k := range res.Output.Keys() {
		fmt.Fprintf(&sb, "%s %s\n", summaryKeyStyle.Render(k+":"), summaryValStyle.Render(res.Output[k].Text()))
	}
	return sb.String()
}
