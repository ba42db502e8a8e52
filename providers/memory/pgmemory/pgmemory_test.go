package pgmemory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/advigo/advigo/providers/ai"
)

// TestNew_Defaults verifies that New applies the default table and index names.
func TestNew_Defaults(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)
	if store.tableName != defaultTableName {
		t.Fatalf("expected default table name %q, got %q", defaultTableName, store.tableName)
	}
	if store.indexName != "idx_advigo_messages_conversation_seq" {
		t.Fatalf("expected default index name, got %q", store.indexName)
	}
}

// TestNew_WithTableName verifies that WithTableName overrides the default
// and sanitizes both the table and index names via pgx.Identifier.
func TestNew_WithTableName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock, WithTableName("custom_table"))

	// pgx.Identifier.Sanitize() quotes the name: "custom_table"
	if store.tableName != `"custom_table"` {
		t.Fatalf("expected table name %q, got %q", `"custom_table"`, store.tableName)
	}
	if store.indexName != `"idx_custom_table_conversation_seq"` {
		t.Fatalf("expected sanitized index name, got %q", store.indexName)
	}
}

// TestMessages_ReturnsChronologicalOrder verifies that rows are scanned into
// ai.Message values in seq order.
func TestMessages_ReturnsChronologicalOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectQuery("SELECT role, content FROM advigo_messages").
		WithArgs("conv-1").
		WillReturnRows(
			pgxmock.NewRows([]string{"role", "content"}).
				AddRow("user", "hi").
				AddRow("assistant", "hello"),
		)

	messages, queryErr := store.Messages(context.Background(), "conv-1")
	if queryErr != nil {
		t.Fatalf("Messages returned unexpected error: %v", queryErr)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != ai.RoleUser || messages[0].Content != "hi" {
		t.Fatalf("unexpected first message: %+v", messages[0])
	}
	if messages[1].Role != ai.RoleAssistant || messages[1].Content != "hello" {
		t.Fatalf("unexpected second message: %+v", messages[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestMessages_EmptyResult verifies that an empty result set returns a
// non-nil empty slice.
func TestMessages_EmptyResult(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectQuery("SELECT role, content FROM advigo_messages").
		WithArgs("conv-1").
		WillReturnRows(pgxmock.NewRows([]string{"role", "content"}))

	messages, queryErr := store.Messages(context.Background(), "conv-1")
	if queryErr != nil {
		t.Fatalf("Messages returned unexpected error: %v", queryErr)
	}
	if messages == nil {
		t.Fatalf("expected non-nil slice for empty result")
	}
	if len(messages) != 0 {
		t.Fatalf("expected 0 messages, got %d", len(messages))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestMessages_QueryError verifies that query failures are wrapped and returned.
func TestMessages_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectQuery("SELECT role, content FROM advigo_messages").
		WithArgs("conv-1").
		WillReturnError(fmt.Errorf("connection refused"))

	_, queryErr := store.Messages(context.Background(), "conv-1")
	if queryErr == nil {
		t.Fatalf("expected error from Messages, got nil")
	}
}

// TestMessages_RowsIterationError verifies that an error surfaced by
// rows.Err() after iteration is propagated.
func TestMessages_RowsIterationError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	iterErr := fmt.Errorf("network interrupted during iteration")

	// Add one valid row, then inject a close error so rows.Err() fires after the loop.
	mock.ExpectQuery("SELECT role, content FROM advigo_messages").
		WithArgs("conv-1").
		WillReturnRows(
			pgxmock.NewRows([]string{"role", "content"}).
				AddRow("user", "hi").
				CloseError(iterErr),
		)

	_, queryErr := store.Messages(context.Background(), "conv-1")
	if queryErr == nil {
		t.Fatal("expected error from rows.Err(), got nil")
	}
	if !errors.Is(queryErr, iterErr) {
		t.Errorf("expected wrapped iterErr, got %v", queryErr)
	}
}

// TestAppend_EmptyIsNoOp verifies that appending no messages does not trigger
// any database interaction.
func TestAppend_EmptyIsNoOp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	if appendErr := store.Append(context.Background(), "conv-1", nil); appendErr != nil {
		t.Fatalf("Append returned unexpected error: %v", appendErr)
	}
	if appendErr := store.Append(context.Background(), "conv-1", []ai.Message{}); appendErr != nil {
		t.Fatalf("Append returned unexpected error: %v", appendErr)
	}

	// No expectations set; pgxmock will fail if any query is executed.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database call for empty append: %v", err)
	}
}

// TestAppend_AtomicTransaction verifies the transaction path when the db
// implements TxQuerier (pgxmock.NewPool satisfies this): all inserts happen
// between Begin and Commit.
func TestAppend_AtomicTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO advigo_messages").
		WithArgs("conv-1", "user", "my name is John").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO advigo_messages").
		WithArgs("conv-1", "assistant", "Hello John").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	appendErr := store.Append(context.Background(), "conv-1", []ai.Message{
		{Role: ai.RoleUser, Content: "my name is John"},
		{Role: ai.RoleAssistant, Content: "Hello John"},
	})
	if appendErr != nil {
		t.Fatalf("Append returned unexpected error: %v", appendErr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestAppend_RollsBackOnInsertError verifies that an insert failure inside
// the transaction triggers a rollback and no partial write survives.
func TestAppend_RollsBackOnInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	insertErr := fmt.Errorf("insert failed")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO advigo_messages").
		WithArgs("conv-1", "user", "hi").
		WillReturnError(insertErr)
	mock.ExpectRollback()

	appendErr := store.Append(context.Background(), "conv-1", []ai.Message{
		{Role: ai.RoleUser, Content: "hi"},
		{Role: ai.RoleAssistant, Content: "hello"},
	})
	if appendErr == nil {
		t.Fatal("expected error from Append, got nil")
	}
	if !errors.Is(appendErr, insertErr) {
		t.Errorf("expected wrapped insertErr, got %v", appendErr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestAppend_BeginError verifies that a Begin transaction error is propagated.
func TestAppend_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectBegin().WillReturnError(fmt.Errorf("begin failed"))

	appendErr := store.Append(context.Background(), "conv-1", []ai.Message{
		{Role: ai.RoleUser, Content: "hi"},
	})
	if appendErr == nil {
		t.Fatal("expected error from Begin, got nil")
	}
	if !strings.Contains(appendErr.Error(), "begin failed") {
		t.Errorf("expected 'begin failed' error, got %v", appendErr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestAppend_CommitError verifies that a Commit transaction error is propagated.
func TestAppend_CommitError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO advigo_messages").
		WithArgs("conv-1", "user", "hi").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit().WillReturnError(fmt.Errorf("commit failed"))

	appendErr := store.Append(context.Background(), "conv-1", []ai.Message{
		{Role: ai.RoleUser, Content: "hi"},
	})
	if appendErr == nil {
		t.Fatal("expected error from Commit, got nil")
	}
	if !strings.Contains(appendErr.Error(), "commit failed") {
		t.Errorf("expected 'commit failed' error, got %v", appendErr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// onlyQuerier is a hand-written stub that implements Querier but NOT TxQuerier
// (no Begin method). It is used to exercise the appendSequential fallback
// path, which is taken when the db does not support transactions.
type onlyQuerier struct {
	// execSQL and execArgs record every Exec call in order.
	execSQL  []string
	execArgs [][]any
	// execErr is returned by every Exec call.
	execErr error
}

func (q *onlyQuerier) Exec(_ context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	q.execSQL = append(q.execSQL, sql)
	q.execArgs = append(q.execArgs, arguments)
	return pgconn.CommandTag{}, q.execErr
}

func (q *onlyQuerier) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, nil
}

func (q *onlyQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return nil
}

// TestAppend_SequentialFallback verifies that a Querier without Begin support
// still persists every message, one insert per message.
func TestAppend_SequentialFallback(t *testing.T) {
	querier := &onlyQuerier{}
	store := New(querier)

	appendErr := store.Append(context.Background(), "conv-1", []ai.Message{
		{Role: ai.RoleUser, Content: "hi"},
		{Role: ai.RoleAssistant, Content: "hello"},
	})
	if appendErr != nil {
		t.Fatalf("Append fallback returned unexpected error: %v", appendErr)
	}

	if len(querier.execSQL) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(querier.execSQL))
	}
	for _, sql := range querier.execSQL {
		if !strings.Contains(sql, "INSERT INTO advigo_messages") {
			t.Errorf("unexpected insert statement: %q", sql)
		}
	}
	if querier.execArgs[0][1] != "user" || querier.execArgs[0][2] != "hi" {
		t.Errorf("unexpected first insert args: %v", querier.execArgs[0])
	}
	if querier.execArgs[1][1] != "assistant" || querier.execArgs[1][2] != "hello" {
		t.Errorf("unexpected second insert args: %v", querier.execArgs[1])
	}
}

// TestAppend_SequentialFallback_ExecError verifies that an insert failure in
// the fallback path is propagated as a wrapped error.
func TestAppend_SequentialFallback_ExecError(t *testing.T) {
	insertErr := fmt.Errorf("insert failed")
	querier := &onlyQuerier{execErr: insertErr}
	store := New(querier)

	appendErr := store.Append(context.Background(), "conv-1", []ai.Message{
		{Role: ai.RoleUser, Content: "hi"},
	})
	if appendErr == nil {
		t.Fatal("expected error from fallback insert, got nil")
	}
	if !errors.Is(appendErr, insertErr) {
		t.Errorf("expected wrapped insertErr, got %v", appendErr)
	}
}

// TestClear_ExecutesDelete verifies that Clear issues a DELETE scoped to the
// conversation.
func TestClear_ExecutesDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectExec("DELETE FROM advigo_messages").
		WithArgs("conv-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	if clearErr := store.Clear(context.Background(), "conv-1"); clearErr != nil {
		t.Fatalf("Clear returned unexpected error: %v", clearErr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestClear_PropagatesError verifies that a DELETE failure is wrapped and returned.
func TestClear_PropagatesError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectExec("DELETE FROM advigo_messages").
		WithArgs("conv-1").
		WillReturnError(fmt.Errorf("delete failed"))

	if clearErr := store.Clear(context.Background(), "conv-1"); clearErr == nil {
		t.Fatal("expected error from Clear, got nil")
	}
}

// TestCount_ReturnsCorrectValue verifies Count scans the row correctly.
func TestCount_ReturnsCorrectValue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("conv-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	count, countErr := store.Count(context.Background(), "conv-1")
	if countErr != nil {
		t.Fatalf("Count returned unexpected error: %v", countErr)
	}
	if count != 42 {
		t.Fatalf("expected count 42, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestCount_PropagatesError verifies that database errors are wrapped and returned.
func TestCount_PropagatesError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("conv-1").
		WillReturnError(fmt.Errorf("connection refused"))

	if _, countErr := store.Count(context.Background(), "conv-1"); countErr == nil {
		t.Fatalf("expected error from Count, got nil")
	}
}

// TestEnsureSchema_ExecutesAllStatements verifies that EnsureSchema issues
// the CREATE TABLE and CREATE INDEX statements.
func TestEnsureSchema_ExecutesAllStatements(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS advigo_messages").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS").
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))

	if schemaErr := store.EnsureSchema(context.Background()); schemaErr != nil {
		t.Fatalf("EnsureSchema returned unexpected error: %v", schemaErr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestEnsureSchema_PropagatesTableError verifies that a table creation failure
// is returned without attempting index creation.
func TestEnsureSchema_PropagatesTableError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS advigo_messages").
		WillReturnError(fmt.Errorf("permission denied"))

	if schemaErr := store.EnsureSchema(context.Background()); schemaErr == nil {
		t.Fatalf("expected error from EnsureSchema, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestEnsureSchema_PropagatesIndexError verifies that an index creation
// failure is returned after the table succeeds.
func TestEnsureSchema_PropagatesIndexError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	store := New(mock)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS advigo_messages").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS").
		WillReturnError(fmt.Errorf("index creation failed"))

	if schemaErr := store.EnsureSchema(context.Background()); schemaErr == nil {
		t.Fatal("expected error from EnsureSchema on index, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
