package graph

import (
	"encoding/json"
	"fmt"
)

// NodeSpec declares one node of an externally supplied graph shape.
type NodeSpec struct {
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// EdgeSpec declares one edge of an externally supplied graph shape.
type EdgeSpec struct {
	From string            `json:"from"`
	To   string            `json:"to"`
	Keys map[string]string `json:"keys,omitempty"`
}

// GraphSpec is a declarative node/edge list, as produced for example by an
// external planning step. Template resolution consumes it directly to
// materialize a sub-graph at build time, so a graph's shape can be supplied
// from outside instead of hand-wired.
type GraphSpec struct {
	Name  string            `json:"name"`
	Pull  map[string]string `json:"pull,omitempty"`
	Push  map[string]string `json:"push,omitempty"`
	Nodes []NodeSpec        `json:"nodes"`
	Edges []EdgeSpec        `json:"edges"`
}

// ParseGraphSpec decodes a JSON graph specification.
func ParseGraphSpec(data []byte) (*GraphSpec, error) {
	var spec GraphSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing graph spec: %w", err)
	}
	if len(spec.Nodes) == 0 {
		return nil, fmt.Errorf("graph spec %q declares no nodes", spec.Name)
	}
	return &spec, nil
}

// Template converts the specification into a sub-graph blueprint whose
// children resolve through the given registry.
func (s *GraphSpec) Template(reg *Registry) *NodeTemplate {
	tpl := &NodeTemplate{registry: reg, Pull: InheritAll(), Push: InheritAll()}
	if len(s.Pull) > 0 {
		tpl.Pull = Keys(s.Pull)
	}
	if len(s.Push) > 0 {
		tpl.Push = Keys(s.Push)
	}
	for _, n := range s.Nodes {
		child := &NodeTemplate{Type: n.Type, Defaults: Config(n.Config), registry: reg}
		tpl.AddChild(n.Name, child)
	}
	for _, e := range s.Edges {
		tpl.AddEdge(e.From, e.To, e.Keys)
	}
	return tpl
}

// Materialize resolves the specification into a live node named after the
// spec itself.
func (s *GraphSpec) Materialize(reg *Registry) (Node, error) {
	name := s.Name
	if name == "" {
		name = "spec"
	}
	return s.Template(reg).Instantiate(name, nil)
}
