// Package pgmemory provides a PostgreSQL-backed implementation of the
// [memory.Store] interface for persisting conversation history across
// process restarts. A single [PgStore] serves any number of conversations,
// keyed by conversation id, and uses pgx/v5 for efficient, pool-safe queries.
//
// The main entry point is [New], which accepts any pgx-compatible query
// executor (typically *pgxpool.Pool). Use [PgStore.EnsureSchema] during
// development to auto-create the required table; production deployments
// should manage schema migrations with dedicated tooling (goose, migrate,
// etc.).
package pgmemory
