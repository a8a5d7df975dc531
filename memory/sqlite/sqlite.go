// Package sqlite implements conversational memory on an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/agentgraph/graph"
	"github.com/smallnest/agentgraph/memory"
)

// Options configures the SQLite database and table layout.
type Options struct {
	// Path is the database file; ":memory:" keeps it in-process.
	Path string

	// TableName defaults to "utterances".
	TableName string
}

// Memory stores utterances in a single table partitioned by conversation
// ID, so one database file serves many conversations.
type Memory struct {
	db           *sql.DB
	tableName    string
	conversation string
}

var _ memory.Searcher = (*Memory)(nil)

// New opens (or creates) the database and ensures the schema exists.
func New(conversation string, opts Options) (*Memory, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "utterances"
	}

	m := &Memory{db: db, tableName: tableName, conversation: conversation}
	if err := m.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

func (m *Memory) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_%s_conversation ON %s (conversation);
	`, m.tableName, m.tableName, m.tableName)

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (m *Memory) Close() error {
	return m.db.Close()
}

// Append implements graph.Memory.
func (m *Memory) Append(ctx context.Context, u graph.Utterance) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (conversation, role, content) VALUES (?, ?, ?)",
		m.tableName,
	)
	if _, err := m.db.ExecContext(ctx, query, m.conversation, u.Role, u.Content); err != nil {
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
			WHERE conversation = ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`, m.tableName)

	rows, err := m.db.QueryContext(ctx, query, m.conversation, n)
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
		"SELECT role, content FROM %s WHERE conversation = ? ORDER BY id ASC",
		m.tableName,
	)
	rows, err := m.db.QueryContext(ctx, q, m.conversation)
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
	query := fmt.Sprintf("DELETE FROM %s WHERE conversation = ?", m.tableName)
	if _, err := m.db.ExecContext(ctx, query, m.conversation); err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}
	return nil
}

func scanUtterances(rows *sql.Rows) ([]graph.Utterance, error) {
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
