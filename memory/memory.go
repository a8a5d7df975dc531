package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/smallnest/agentgraph/graph"
)

// Searcher extends graph.Memory with relevance-ranked read-back. All
// backends in this package implement it.
type Searcher interface {
	graph.Memory

	// Relevant returns up to n utterances ranked by relevance to query,
	// most relevant first.
	Relevant(ctx context.Context, query string, n int) ([]graph.Utterance, error)
}

// Buffer is an in-memory conversational memory holding the most recent
// utterances up to a fixed capacity. The zero capacity means unbounded.
type Buffer struct {
	mu       sync.RWMutex
	capacity int
	entries  []graph.Utterance
}

var _ Searcher = (*Buffer)(nil)

// NewBuffer creates a buffer memory. capacity bounds the number of retained
// utterances; 0 retains everything.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{capacity: capacity}
}

// Append implements graph.Memory.
func (b *Buffer) Append(ctx context.Context, u graph.Utterance) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, u)
	if b.capacity > 0 && len(b.entries) > b.capacity {
		b.entries = b.entries[len(b.entries)-b.capacity:]
	}
	return nil
}

// Recent implements graph.Memory, returning the last n utterances in
// chronological order.
func (b *Buffer) Recent(ctx context.Context, n int) ([]graph.Utterance, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return tail(b.entries, n), nil
}

// Relevant implements Searcher using keyword-overlap scoring.
func (b *Buffer) Relevant(ctx context.Context, query string, n int) ([]graph.Utterance, error) {
	b.mu.RLock()
	entries := make([]graph.Utterance, len(b.entries))
	copy(entries, b.entries)
	b.mu.RUnlock()

	return RankByOverlap(entries, query, n), nil
}

// Len returns the number of retained utterances.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

func tail(entries []graph.Utterance, n int) []graph.Utterance {
	if n <= 0 || len(entries) == 0 {
		return nil
	}
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]graph.Utterance, n)
	copy(out, entries[len(entries)-n:])
	return out
}

// RankByOverlap scores utterances by word overlap with the query and
// returns the top n, most relevant first. Ties keep chronological order.
// It is the shared relevance fallback for backends without native search.
func RankByOverlap(entries []graph.Utterance, query string, n int) []graph.Utterance {
	if n <= 0 || len(entries) == 0 {
		return nil
	}

	queryWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		queryWords[w] = true
	}

	type scored struct {
		u     graph.Utterance
		score int
		pos   int
	}
	ranked := make([]scored, 0, len(entries))
	for i, u := range entries {
		score := 0
		for _, w := range strings.Fields(strings.ToLower(u.Content)) {
			if queryWords[w] {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{u: u, score: score, pos: i})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].pos < ranked[j].pos
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]graph.Utterance, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].u
	}
	return out
}
