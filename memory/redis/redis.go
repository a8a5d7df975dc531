// Package redis implements conversational memory on Redis lists.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/agentgraph/graph"
	"github.com/smallnest/agentgraph/memory"
)

// Options configures the Redis connection and key layout.
type Options struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key, default "agentgraph:".
	Prefix string

	// TTL expires a conversation after inactivity, default 0 (no expiry).
	TTL time.Duration
}

// Memory stores one conversation per Redis list. Utterances are appended
// as JSON entries; Recent reads the list tail.
type Memory struct {
	client       *redis.Client
	prefix       string
	ttl          time.Duration
	conversation string
}

var _ memory.Searcher = (*Memory)(nil)

type entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// New creates a Redis-backed memory for the given conversation ID.
func New(conversation string, opts Options) *Memory {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "agentgraph:"
	}

	return &Memory{
		client:       client,
		prefix:       prefix,
		ttl:          opts.TTL,
		conversation: conversation,
	}
}

// NewWithClient wraps an existing client, for callers sharing one
// connection pool across conversations.
func NewWithClient(client *redis.Client, conversation, prefix string, ttl time.Duration) *Memory {
	if prefix == "" {
		prefix = "agentgraph:"
	}
	return &Memory{client: client, prefix: prefix, ttl: ttl, conversation: conversation}
}

func (m *Memory) key() string {
	return fmt.Sprintf("%sconversation:%s", m.prefix, m.conversation)
}

// Append implements graph.Memory.
func (m *Memory) Append(ctx context.Context, u graph.Utterance) error {
	data, err := json.Marshal(entry{Role: u.Role, Content: u.Content})
	if err != nil {
		return fmt.Errorf("marshal utterance: %w", err)
	}

	pipe := m.client.Pipeline()
	pipe.RPush(ctx, m.key(), data)
	if m.ttl > 0 {
		pipe.Expire(ctx, m.key(), m.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append utterance to redis: %w", err)
	}
	return nil
}

// Recent implements graph.Memory, reading the last n list entries.
func (m *Memory) Recent(ctx context.Context, n int) ([]graph.Utterance, error) {
	if n <= 0 {
		return nil, nil
	}

	raw, err := m.client.LRange(ctx, m.key(), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent utterances from redis: %w", err)
	}
	return decode(raw)
}

// Relevant implements memory.Searcher by loading the conversation and
// ranking with keyword overlap.
func (m *Memory) Relevant(ctx context.Context, query string, n int) ([]graph.Utterance, error) {
	raw, err := m.client.LRange(ctx, m.key(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read utterances from redis: %w", err)
	}
	entries, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return memory.RankByOverlap(entries, query, n), nil
}

// Clear deletes the conversation.
func (m *Memory) Clear(ctx context.Context) error {
	if err := m.client.Del(ctx, m.key()).Err(); err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (m *Memory) Close() error {
	return m.client.Close()
}

func decode(raw []string) ([]graph.Utterance, error) {
	out := make([]graph.Utterance, 0, len(raw))
	for _, s := range raw {
		var e entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("unmarshal utterance: %w", err)
		}
		out = append(out, graph.Utterance{Role: e.Role, Content: e.Content})
	}
	return out, nil
}
