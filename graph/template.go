package graph

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/mohae/deepcopy"
)

// Config is the declarative configuration of a node template.
type Config map[string]any

// Shared wraps a configuration value that every instantiation of a template
// must receive by reference instead of by copy. The intended use is
// long-lived service clients, such as a model provider shared by many agent
// nodes; such an object must itself be safe for concurrent use.
type Shared struct {
	value any
}

// Share marks v as shared-by-reference across template instantiations.
func Share(v any) Shared { return Shared{value: v} }

// Value returns the shared object.
func (s Shared) Value() any { return s.value }

// Factory materializes a node of one target type from a resolved
// configuration.
type Factory func(name string, cfg Config) (Node, error)

// Registry maps template target types to factories and records which Go
// types are globally shared-scope. Shared-scope types behave as if every
// configuration value of that type were wrapped with Share.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	shared    map[reflect.Type]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		shared:    make(map[reflect.Type]bool),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the package-level registry.
func DefaultRegistry() *Registry { return defaultRegistry }

// RegisterFactory binds a target type name to a factory.
func (r *Registry) RegisterFactory(targetType string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[targetType]; ok {
		return fmt.Errorf("factory %q already registered", targetType)
	}
	r.factories[targetType] = f
	return nil
}

// RegisterShared declares the dynamic type of v as shared-scope.
func (r *Registry) RegisterShared(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shared[reflect.TypeOf(v)] = true
}

func (r *Registry) factory(targetType string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[targetType]
	return f, ok
}

func (r *Registry) isSharedScope(v any) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shared[reflect.TypeOf(v)]
}

// ChildTemplate names a nested template inside a blueprint sub-graph.
type ChildTemplate struct {
	Name     string
	Template *NodeTemplate
}

// EdgeTemplate declares an edge of a blueprint sub-graph.
type EdgeTemplate struct {
	From string
	To   string
	Keys map[string]string
}

// NodeTemplate is a declarative, reusable blueprint: a target type, default
// configuration and an optional nested node/edge list. Instantiating it
// repeatedly yields independent nodes; configuration values are deep-copied
// per instantiation unless marked shared, in which case the same object
// reference is reused by every instance.
//
// A template carrying nested declarations resolves into a fully wired
// sub-graph, which is how reusable sub-pipelines are expressed without
// imperative construction code.
type NodeTemplate struct {
	// Type is the registered target type; ignored when Nodes is non-empty.
	Type string

	// Defaults is the template's default configuration.
	Defaults Config

	// Pull and Push declare the contract of an instantiated sub-graph.
	Pull KeySet
	Push KeySet

	// Nodes and Edges, when present, make the template a sub-graph
	// blueprint.
	Nodes []ChildTemplate
	Edges []EdgeTemplate

	// Retry, when set, wraps every instance with retry behavior. Retry is a
	// template knob, not a scheduler feature.
	Retry *RetryConfig

	registry *Registry
}

// NewTemplate creates a template for a registered target type.
func NewTemplate(targetType string, defaults Config) *NodeTemplate {
	return &NodeTemplate{
		Type:     targetType,
		Defaults: defaults,
		Pull:     InheritAll(),
		Push:     InheritAll(),
		registry: defaultRegistry,
	}
}

// WithRegistry rebinds the template (and resolution of its children) to a
// registry other than the default.
func (t *NodeTemplate) WithRegistry(r *Registry) *NodeTemplate {
	t.registry = r
	return t
}

// AddChild appends a nested template under the given child name.
func (t *NodeTemplate) AddChild(name string, child *NodeTemplate) *NodeTemplate {
	t.Nodes = append(t.Nodes, ChildTemplate{Name: name, Template: child})
	return t
}

// AddEdge appends a nested edge declaration.
func (t *NodeTemplate) AddEdge(from, to string, keys map[string]string) *NodeTemplate {
	t.Edges = append(t.Edges, EdgeTemplate{From: from, To: to, Keys: keys})
	return t
}

// Instantiate resolves the template into a live node: defaults are copied,
// overrides applied, shared values substituted by reference, everything
// else deep-copied, and nested declarations recursively materialized into a
// sub-graph scoped under the instance name.
func (t *NodeTemplate) Instantiate(name string, overrides Config) (Node, error) {
	reg := t.registry
	if reg == nil {
		reg = defaultRegistry
	}

	cfg := make(Config, len(t.Defaults)+len(overrides))
	for k, v := range t.Defaults {
		cfg[k] = resolveValue(reg, v)
	}
	for k, v := range overrides {
		cfg[k] = resolveValue(reg, v)
	}

	var n Node
	if len(t.Nodes) == 0 {
		f, ok := reg.factory(t.Type)
		if !ok {
			return nil, fmt.Errorf("template %s: no factory for type %q", name, t.Type)
		}
		var err error
		n, err = f(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
	} else {
		g := NewGraph(name)
		g.SetContract(t.Pull, t.Push)
		for _, child := range t.Nodes {
			childTpl := child.Template.WithRegistry(reg)
			cn, err := childTpl.Instantiate(child.Name, nil)
			if err != nil {
				return nil, fmt.Errorf("template %s: child %s: %w", name, child.Name, err)
			}
			if err := g.AddNode(cn); err != nil {
				return nil, err
			}
		}
		for _, e := range t.Edges {
			if err := g.AddEdge(e.From, e.To, Keys(e.Keys)); err != nil {
				return nil, err
			}
		}
		n = g
	}

	if t.Retry != nil {
		n = NewRetryNode(n, t.Retry)
	}
	return n, nil
}

// MustInstantiate is Instantiate that panics on error, for wiring done at
// program start.
func (t *NodeTemplate) MustInstantiate(name string, overrides Config) Node {
	n, err := t.Instantiate(name, overrides)
	if err != nil {
		panic(err)
	}
	return n
}

// Build instantiates the template and builds the resulting node, a
// convenience for templates resolved directly into a running graph.
func (t *NodeTemplate) Build(ctx context.Context, name string, overrides Config) (Node, error) {
	n, err := t.Instantiate(name, overrides)
	if err != nil {
		return nil, err
	}
	if err := n.Build(ctx, nil); err != nil {
		return nil, err
	}
	return n, nil
}

// resolveValue applies the per-instantiation lifetime policy: shared values
// keep their identity, everything else is deep-copied so instantiations
// never alias mutable state.
func resolveValue(reg *Registry, v any) any {
	if s, ok := v.(Shared); ok {
		return s.value
	}
	if v == nil || reg.isSharedScope(v) {
		return v
	}
	return deepcopy.Copy(v)
}
