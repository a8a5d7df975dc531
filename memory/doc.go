// Package memory provides conversational memory backends for model-backed
// nodes.
//
// A memory stores labeled utterances and reads them back two ways: the most
// recent n in chronological order (graph.Memory), or the n most relevant to
// a query (Searcher). Appends are additive; a memory never feeds back into
// graph scheduling.
//
// Four backends ship:
//
//   - Buffer — in-memory ring, for tests and single-process runs
//   - redis.Memory — Redis lists (github.com/redis/go-redis/v9)
//   - sqlite.Memory — embedded SQLite (github.com/mattn/go-sqlite3)
//   - postgres.Memory — PostgreSQL (github.com/jackc/pgx/v5)
//
// The persistent backends partition utterances by conversation ID, so one
// database serves many concurrent conversations.
//
//	mem := memory.NewBuffer(100)
//	mem.Append(ctx, graph.Utterance{Role: "user", Content: "hello"})
//	recent, _ := mem.Recent(ctx, 10)
//
// Backends without native search rank with RankByOverlap, a keyword-overlap
// scorer; swap in a vector store behind the Searcher interface when real
// semantic search is needed.
package memory
