package pgmemory

import (
	"context"
	"fmt"
)

// createTableSQL is the DDL statement that creates the advigo_messages table.
//
// The seq column (BIGSERIAL) provides monotonic ordering within a
// conversation, avoiding timestamp collisions from rapid-fire messages
// within the same microsecond.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    seq             BIGSERIAL NOT NULL,
    conversation_id TEXT NOT NULL,
    role            TEXT NOT NULL,
    content         TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// createConversationSeqIndexSQL creates the primary lookup index: all
// messages for a conversation ordered by insertion sequence.
const createConversationSeqIndexSQL = `CREATE INDEX IF NOT EXISTS %s
    ON %s (conversation_id, seq)`

// EnsureSchema creates the advigo_messages table and its index if they do
// not already exist. This is a convenience helper for development and
// prototyping; production deployments should use proper migration tooling
// (goose, golang-migrate, etc.) to manage schema changes.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	tableSQL := fmt.Sprintf(createTableSQL, s.tableName)
	if _, err := s.db.Exec(ctx, tableSQL); err != nil {
		return fmt.Errorf("pgmemory: create table: %w", err)
	}

	indexSQL := fmt.Sprintf(createConversationSeqIndexSQL, s.indexName, s.tableName)
	if _, err := s.db.Exec(ctx, indexSQL); err != nil {
		return fmt.Errorf("pgmemory: create conversation_seq index: %w", err)
	}

	return nil
}
