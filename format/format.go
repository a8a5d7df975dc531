// Package format renders payloads into prompt text and parses model output
// back into payloads, following the key contracts nodes declare.
package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/agentgraph/graph"
)

// Formatter converts between payloads and model-facing text. The zero
// value is ready to use.
type Formatter struct{}

// New creates a formatter.
func New() *Formatter { return &Formatter{} }

// Render writes the payload as a markdown section list, one heading per
// key with its contract description, for embedding in a prompt.
func (f *Formatter) Render(p graph.Payload, keys graph.KeySet) string {
	var sb strings.Builder
	for _, k := range p.Keys() {
		if !keys.Has(k) {
			continue
		}
		sb.WriteString("## ")
		sb.WriteString(k)
		sb.WriteString("\n\n")
		if d := keys.Description(k); d != "" {
			sb.WriteString("_")
			sb.WriteString(d)
			sb.WriteString("_\n\n")
		}
		sb.WriteString(p[k].Text())
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Instructions describes the expected output shape for a push contract:
// a JSON object with one property per key.
func (f *Formatter) Instructions(keys graph.KeySet) string {
	names := keys.Names()
	if len(names) == 0 {
		return "Respond with a JSON object."
	}

	var sb strings.Builder
	sb.WriteString("Respond with a JSON object with exactly these properties:\n")
	for _, k := range names {
		sb.WriteString("- ")
		sb.WriteString(k)
		if d := keys.Description(k); d != "" {
			sb.WriteString(": ")
			sb.WriteString(d)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Parse extracts a payload from model output. It tries, in order: the
// whole text as JSON, each fenced code block as JSON, and finally
// "key: value" lines. The result is filtered to the contract; an explicit
// contract with no matched key is an error.
func (f *Formatter) Parse(text string, keys graph.KeySet) (graph.Payload, error) {
	text = strings.TrimSpace(text)

	if p, ok := parseJSONObject(text); ok {
		return filterParsed(p, keys, text)
	}

	for _, block := range codeBlocks(text) {
		if p, ok := parseJSONObject(block); ok {
			return filterParsed(p, keys, text)
		}
	}

	if p := parseKeyValueLines(text); len(p) > 0 {
		return filterParsed(p, keys, text)
	}

	// Single-key contracts accept the raw text as that key's value.
	if names := keys.Names(); len(names) == 1 {
		return graph.Payload{names[0]: graph.String(text)}, nil
	}

	return nil, fmt.Errorf("no parseable payload in model output %q", truncate(text, 120))
}

func filterParsed(p graph.Payload, keys graph.KeySet, text string) (graph.Payload, error) {
	out := keys.Filter(p)
	if !keys.InheritsAll() && len(out) == 0 && keys.Len() > 0 {
		return nil, fmt.Errorf("model output %q has none of the keys %v",
			truncate(text, 120), keys.Names())
	}
	return out, nil
}

func parseJSONObject(text string) (graph.Payload, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, false
	}
	return graph.FromGoMap(m), true
}

// codeBlocks returns the contents of fenced code blocks, parsed from the
// markdown AST rather than by fence counting.
func codeBlocks(text string) []string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(text))

	var blocks []string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if cb, ok := node.(*ast.CodeBlock); ok && entering {
			blocks = append(blocks, strings.TrimSpace(string(cb.Literal)))
		}
		return ast.GoToNext
	})
	return blocks
}

func parseKeyValueLines(text string) graph.Payload {
	p := make(graph.Payload)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.Trim(strings.TrimSpace(key), "*_`"))
		value = strings.TrimSpace(value)
		if key == "" || value == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		p[key] = graph.String(value)
	}
	return p
}

// RenderHTML converts markdown to sanitized HTML, for surfacing model
// output in a web UI.
func RenderHTML(md string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	out := markdown.Render(doc, renderer)

	return string(bluemonday.UGCPolicy().SanitizeBytes(out))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
