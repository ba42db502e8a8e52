// Package mysqlmemory provides a MySQL-backed implementation of the
// [memory.Store] interface for persisting conversation history across
// process restarts. A single [MySQLStore] serves any number of
// conversations, keyed by conversation id, and uses database/sql with the
// go-sql-driver/mysql driver.
//
// The main entry point is [New], which accepts an existing *sql.DB. Use
// [MySQLStore.EnsureSchema] during development to auto-create the required
// table; production deployments should manage schema migrations with
// dedicated tooling (goose, migrate, etc.).
package mysqlmemory
