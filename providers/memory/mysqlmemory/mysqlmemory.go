package mysqlmemory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/advigo/advigo/providers/ai"
	"github.com/advigo/advigo/providers/memory"
)

// defaultTableName is the MySQL table used when no custom name is provided.
const defaultTableName = "advigo_messages"

// MySQLStore implements [memory.Store] with MySQL persistence. Histories are
// scoped by conversation id, so a single MySQLStore serves any number of
// concurrent conversations. Thread safety is handled by the *sql.DB
// connection pool; no application-level mutex is needed.
type MySQLStore struct {
	db        *sql.DB
	tableName string
}

// Compile-time check: MySQLStore must implement memory.Store.
var _ memory.Store = (*MySQLStore)(nil)

// Option configures optional MySQLStore behavior.
type Option func(*MySQLStore)

// WithTableName overrides the default table name ("advigo_messages").
// The name is backtick-quoted to prevent SQL injection, since it is
// interpolated into queries via fmt.Sprintf.
func WithTableName(name string) Option {
	return func(s *MySQLStore) {
		s.tableName = quoteIdentifier(name)
	}
}

// New creates a MySQL-backed conversation store on an existing database
// handle (typically opened with sql.Open("mysql", dsn)).
func New(db *sql.DB, opts ...Option) *MySQLStore {
	store := &MySQLStore{
		db:        db,
		tableName: defaultTableName,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Messages returns all messages for the conversation in chronological order
// (ordered by the auto-increment seq column). Returns an empty non-nil slice
// when the conversation has no history.
func (s *MySQLStore) Messages(ctx context.Context, conversationID string) ([]ai.Message, error) {
	query := fmt.Sprintf(`SELECT role, content FROM %s WHERE conversation_id = ? ORDER BY seq ASC`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("mysqlmemory: messages: %w", err)
	}
	defer rows.Close()

	messages := []ai.Message{}
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("mysqlmemory: scan row: %w", err)
		}
		messages = append(messages, ai.Message{Role: ai.MessageRole(role), Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysqlmemory: iterate rows: %w", err)
	}
	return messages, nil
}

// Append persists the given messages at the end of the conversation. All
// rows are written in a single transaction so a user/assistant pair cannot
// be split by a failure. Appending an empty slice is a no-op.
func (s *MySQLStore) Append(ctx context.Context, conversationID string, messages []ai.Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mysqlmemory: append begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := fmt.Sprintf(`INSERT INTO %s (conversation_id, role, content) VALUES (?, ?, ?)`, s.tableName)
	for _, message := range messages {
		if _, err := tx.ExecContext(ctx, query, conversationID, string(message.Role), message.Content); err != nil {
			return fmt.Errorf("mysqlmemory: append message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mysqlmemory: append commit tx: %w", err)
	}
	return nil
}

// Clear deletes all messages for the conversation.
func (s *MySQLStore) Clear(ctx context.Context, conversationID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE conversation_id = ?`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query, conversationID); err != nil {
		return fmt.Errorf("mysqlmemory: clear: %w", err)
	}
	return nil
}

// Count returns the number of messages stored for the conversation.
func (s *MySQLStore) Count(ctx context.Context, conversationID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE conversation_id = ?`, s.tableName)

	var count int
	if err := s.db.QueryRowContext(ctx, query, conversationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("mysqlmemory: count: %w", err)
	}
	return count, nil
}

// quoteIdentifier wraps a MySQL identifier in backticks, doubling any
// embedded backticks.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
