// Package postgres implements conversational memory on PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallnest/agentgraph/graph"
	"github.com/smallnest/agentgraph/memory"
)

// DBPool is the slice of pgxpool.Pool the memory uses, kept as an
// interface so tests can substitute a mock.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Options configures the Postgres connection and table layout.
type Options struct {
	ConnString string

	// TableName defaults to "utterances".
	TableName string
}

// Memory stores utterances in a single table partitioned by conversation
// ID.
type Memory struct {
	pool         DBPool
	tableName    string
	conversation string
}

var _ memory.Searcher = (*Memory)(nil)

// New creates a connection pool and a memory for the given conversation.
func New(ctx context.Context, conversation string, opts Options) (*Memory, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	return NewWithPool(pool, conversation, opts.TableName), nil
}

// NewWithPool wraps an existing pool, for pool sharing and for tests.
func NewWithPool(pool DBPool, conversation, tableName string) *Memory {
	if tableName == "" {
		tableName = "utterances"
	}
	return &Memory{pool: pool, tableName: tableName, conversation: conversation}
}

// InitSchema creates the utterance table if it does not exist.
func (m *Memory) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			conversation TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_%s_conversation ON %s (conversation);
	`, m.tableName, m.tableName, m.tableName)

	if _, err := m.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (m *Memory) Close() {
	m.pool.Close()
}

// Append implements graph.Memory.
func (m *Memory) Append(ctx context.Context, u graph.Utterance) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (conversation, role, content) VALUES ($1, $2, $3)",
		m.tableName,
	)
	if _, err := m.pool.Exec(ctx, query, m.conversation, u.Role, u.Content); err != nil {
		return fmt.Errorf("append utterance: %w", err)
	}
	return nil
}

// Recent implements graph.Memory, returning the last n utterances of the
// conversation in chronological order.
func (m *Memory) Recent(ctx context.Context, n int) ([]graph.Utterance, error) {
	if n <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT role, content FROM (
			SELECT id, role, content FROM %s
			WHERE conversation = $1
			ORDER BY id DESC LIMIT $2
		) tail ORDER BY id ASC
	`, m.tableName)

	rows, err := m.pool.Query(ctx, query, m.conversation, n)
	if err != nil {
		return nil, fmt.Errorf("read recent utterances: %w", err)
	}
	defer rows.Close()

	return scanUtterances(rows)
}

// Relevant implements memory.Searcher by loading the conversation and
// ranking with keyword overlap.
func (m *Memory) Relevant(ctx context.Context, query string, n int) ([]graph.Utterance, error) {
	q := fmt.Sprintf(
		"SELECT role, content FROM %s WHERE conversation = $1 ORDER BY id ASC",
		m.tableName,
	)
	rows, err := m.pool.Query(ctx, q, m.conversation)
	if err != nil {
		return nil, fmt.Errorf("read utterances: %w", err)
	}
	defer rows.Close()

	entries, err := scanUtterances(rows)
	if err != nil {
		return nil, err
	}
	return memory.RankByOverlap(entries, query, n), nil
}

// Clear deletes the conversation's utterances.
func (m *Memory) Clear(ctx context.Context) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE conversation = $1", m.tableName)
	if _, err := m.pool.Exec(ctx, query, m.conversation); err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}
	return nil
}

func scanUtterances(rows pgx.Rows) ([]graph.Utterance, error) {
	var out []graph.Utterance
	for rows.Next() {
		var u graph.Utterance
		if err := rows.Scan(&u.Role, &u.Content); err != nil {
			return nil, fmt.Errorf("scan utterance row: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate utterance rows: %w", err)
	}
	return out, nil
}
