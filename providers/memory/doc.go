// Package memory defines the Store interface for conversation history
// management. Implementations are responsible for storing and retrieving
// [ai.Message] values keyed by conversation id. The interface is intentionally
// minimal: it covers the operations required by the prompt memory advisor for
// turn-based conversations. All methods return errors so that database-backed
// implementations can surface failures instead of silently swallowing them.
//
// Bundled implementations live in the sibling packages
// [github.com/advigo/advigo/providers/memory/inmemory] (process-local),
// [github.com/advigo/advigo/providers/memory/pgmemory] (PostgreSQL),
// [github.com/advigo/advigo/providers/memory/redismemory] (Redis), and
// [github.com/advigo/advigo/providers/memory/mysqlmemory] (MySQL).
package memory
