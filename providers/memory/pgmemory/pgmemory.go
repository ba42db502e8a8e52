package pgmemory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/advigo/advigo/providers/ai"
	"github.com/advigo/advigo/providers/memory"
)

// defaultTableName is the PostgreSQL table used when no custom name is provided.
const defaultTableName = "advigo_messages"

// Querier abstracts the pgx query methods needed by PgStore.
// Both *pgxpool.Pool and pgx.Tx satisfy this interface, allowing
// callers to inject either a connection pool or a single transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxQuerier extends Querier with transaction support. *pgxpool.Pool satisfies
// this interface but pgx.Tx does not. Append attempts a type assertion to
// TxQuerier so that multi-message writes land atomically, and falls back to
// sequential inserts when only Querier is available.
type TxQuerier interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgStore implements [memory.Store] with PostgreSQL persistence. Histories
// are scoped by conversation id, so a single PgStore serves any number of
// concurrent conversations. Thread safety is handled by the underlying pgx
// connection pool; no application-level mutex is needed.
type PgStore struct {
	db        Querier
	tableName string
	indexName string
}

// Compile-time check: PgStore must implement memory.Store.
var _ memory.Store = (*PgStore)(nil)

// Option configures optional PgStore behavior.
type Option func(*PgStore)

// WithTableName overrides the default table name ("advigo_messages").
// Table and index names are sanitized via pgx.Identifier to prevent SQL
// injection, since they are interpolated into queries via fmt.Sprintf.
func WithTableName(name string) Option {
	return func(s *PgStore) {
		s.tableName = pgx.Identifier{name}.Sanitize()
		s.indexName = pgx.Identifier{"idx_" + name + "_conversation_seq"}.Sanitize()
	}
}

// New creates a PostgreSQL-backed conversation store. The db parameter must
// be a pgx-compatible query executor (typically *pgxpool.Pool).
func New(db Querier, opts ...Option) *PgStore {
	store := &PgStore{
		db:        db,
		tableName: defaultTableName,
		indexName: "idx_" + defaultTableName + "_conversation_seq",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Messages returns all messages for the conversation in chronological order
// (ordered by the monotonic seq column). Returns an empty non-nil slice when
// the conversation has no history.
func (s *PgStore) Messages(ctx context.Context, conversationID string) ([]ai.Message, error) {
	query := fmt.Sprintf(`SELECT role, content FROM %s WHERE conversation_id = $1 ORDER BY seq ASC`, s.tableName)

	rows, err := s.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("pgmemory: messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Append persists the given messages at the end of the conversation. When
// the underlying db implements TxQuerier (e.g., *pgxpool.Pool), all rows are
// written in a single transaction so a user/assistant pair cannot be split
// by a failure. Otherwise a sequential, non-atomic fallback is used.
// Appending an empty slice is a no-op.
func (s *PgStore) Append(ctx context.Context, conversationID string, messages []ai.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if txDB, ok := s.db.(TxQuerier); ok {
		return s.appendAtomic(ctx, txDB, conversationID, messages)
	}
	return s.appendSequential(ctx, s.db, conversationID, messages)
}

// appendAtomic writes all messages inside one transaction.
func (s *PgStore) appendAtomic(ctx context.Context, txDB TxQuerier, conversationID string, messages []ai.Message) error {
	tx, err := txDB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgmemory: append begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := s.appendSequential(ctx, tx, conversationID, messages); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pgmemory: append commit tx: %w", err)
	}
	return nil
}

// appendSequential inserts messages one by one on the given executor, which
// may be a transaction or a plain connection.
func (s *PgStore) appendSequential(ctx context.Context, db Querier, conversationID string, messages []ai.Message) error {
	query := fmt.Sprintf(`INSERT INTO %s (conversation_id, role, content) VALUES ($1, $2, $3)`, s.tableName)

	for _, message := range messages {
		if _, err := db.Exec(ctx, query, conversationID, string(message.Role), message.Content); err != nil {
			return fmt.Errorf("pgmemory: append message: %w", err)
		}
	}
	return nil
}

// Clear deletes all messages for the conversation.
func (s *PgStore) Clear(ctx context.Context, conversationID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE conversation_id = $1`, s.tableName)
	if _, err := s.db.Exec(ctx, query, conversationID); err != nil {
		return fmt.Errorf("pgmemory: clear: %w", err)
	}
	return nil
}

// Count returns the number of messages stored for the conversation.
func (s *PgStore) Count(ctx context.Context, conversationID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE conversation_id = $1`, s.tableName)

	var count int
	if err := s.db.QueryRow(ctx, query, conversationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgmemory: count: %w", err)
	}
	return count, nil
}

// scanMessages iterates over pgx.Rows and returns a slice of ai.Message.
// Returns an empty non-nil slice when no rows are present.
func scanMessages(rows pgx.Rows) ([]ai.Message, error) {
	var messages []ai.Message

	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("pgmemory: scan row: %w", err)
		}
		messages = append(messages, ai.Message{Role: ai.MessageRole(role), Content: content})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgmemory: iterate rows: %w", err)
	}

	if messages == nil {
		return []ai.Message{}, nil
	}
	return messages, nil
}
