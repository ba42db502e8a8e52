package mysqlmemory

import (
	"context"
	"fmt"
)

// createTableSQL is the DDL statement that creates the advigo_messages table.
//
// The seq column (AUTO_INCREMENT) provides monotonic ordering within a
// conversation. The composite index covers the Messages query, which filters
// by conversation_id and orders by seq.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    seq             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    conversation_id VARCHAR(255) NOT NULL,
    role            VARCHAR(32) NOT NULL,
    content         TEXT NOT NULL,
    created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_conversation_seq (conversation_id, seq)
)`

// EnsureSchema creates the advigo_messages table and its index if they do
// not already exist. This is a convenience helper for development and
// prototyping; production deployments should use proper migration tooling
// (goose, golang-migrate, etc.) to manage schema changes.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	tableSQL := fmt.Sprintf(createTableSQL, s.tableName)
	if _, err := s.db.ExecContext(ctx, tableSQL); err != nil {
		return fmt.Errorf("mysqlmemory: create table: %w", err)
	}
	return nil
}
