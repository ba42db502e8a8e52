package pgvector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/advigo/advigo/providers/vectorstore"
)

// defaultTableName is the PostgreSQL table used when no custom name is provided.
const defaultTableName = "advigo_documents"

// Embedder turns text into vectors. Implementations typically wrap an
// embeddings API; the store calls it once per Add batch and once per query.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Querier abstracts the pgx query methods needed by Store.
// Both *pgxpool.Pool and pgx.Tx satisfy this interface.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements [vectorstore.Store] on PostgreSQL with the pgvector
// extension. Documents are stored with their embedding and searched by
// cosine distance, so scores land in [0, 1] with 1.0 an exact match.
//
// Store is safe for concurrent use; thread safety is handled by the
// underlying pgx connection pool.
type Store struct {
	db        Querier
	embedder  Embedder
	tableName string
	indexName string
	logger    *slog.Logger
}

// Compile-time check: Store must implement vectorstore.Store.
var _ vectorstore.Store = (*Store)(nil)

// Option configures optional Store behavior.
type Option func(*Store)

// WithTableName overrides the default table name ("advigo_documents").
// Table and index names are sanitized via pgx.Identifier to prevent SQL
// injection, since they are interpolated into queries via fmt.Sprintf.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.tableName = pgx.Identifier{name}.Sanitize()
		s.indexName = pgx.Identifier{"idx_" + name + "_embedding"}.Sanitize()
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a pgvector-backed document store. The db parameter must be a
// pgx-compatible query executor (typically *pgxpool.Pool); the embedder
// supplies vectors for both stored documents and queries.
func New(db Querier, embedder Embedder, opts ...Option) *Store {
	store := &Store{
		db:        db,
		embedder:  embedder,
		tableName: defaultTableName,
		indexName: "idx_" + defaultTableName + "_embedding",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Add embeds and upserts the given documents. Documents without an ID get a
// generated UUID; re-adding a document with the same ID replaces its
// content, metadata, and embedding. Adding an empty slice is a no-op.
func (s *Store) Add(ctx context.Context, documents []vectorstore.Document) error {
	if len(documents) == 0 {
		return nil
	}

	texts := make([]string, 0, len(documents))
	for _, document := range documents {
		texts = append(texts, document.Content)
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("pgvector: embed documents: %w", err)
	}
	if len(vectors) != len(documents) {
		return fmt.Errorf("pgvector: embedder returned %d vectors for %d documents", len(vectors), len(documents))
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, content, metadata, embedding) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding`, s.tableName)

	for i, document := range documents {
		id := document.ID
		if id == "" {
			id = uuid.NewString()
		}

		metadata, err := json.Marshal(document.Metadata)
		if err != nil {
			return fmt.Errorf("pgvector: marshal metadata for document %q: %w", id, err)
		}

		if _, err := s.db.Exec(ctx, query, id, document.Content, metadata, pgvector.NewVector(vectors[i])); err != nil {
			return fmt.Errorf("pgvector: upsert document %q: %w", id, err)
		}
	}
	return nil
}

// SimilaritySearch embeds the query and returns the TopK nearest documents
// by cosine similarity, most similar first. Results scoring below
// request.MinScore are dropped. Returns an empty non-nil slice when nothing
// matches.
func (s *Store) SimilaritySearch(ctx context.Context, request vectorstore.SearchRequest) ([]vectorstore.Document, error) {
	vectors, err := s.embedder.Embed(ctx, []string{request.Query})
	if err != nil {
		return nil, fmt.Errorf("pgvector: embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errors.New("pgvector: embedder returned an empty vector")
	}

	topK := request.TopK
	if topK <= 0 {
		topK = vectorstore.DefaultTopK
	}

	query := fmt.Sprintf(`SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
FROM %s
ORDER BY embedding <=> $1
LIMIT $2`, s.tableName)

	rows, err := s.db.Query(ctx, query, pgvector.NewVector(vectors[0]), topK)
	if err != nil {
		return nil, fmt.Errorf("pgvector: similarity search: %w", err)
	}
	defer rows.Close()

	documents := []vectorstore.Document{}
	for rows.Next() {
		var (
			document vectorstore.Document
			metadata []byte
		)
		if err := rows.Scan(&document.ID, &document.Content, &metadata, &document.Score); err != nil {
			return nil, fmt.Errorf("pgvector: scan row: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &document.Metadata); err != nil {
				s.logger.Warn("failed to parse document metadata", "document_id", document.ID, "error", err)
			}
		}
		if request.MinScore > 0 && document.Score < request.MinScore {
			continue
		}
		documents = append(documents, document)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: iterate rows: %w", err)
	}
	return documents, nil
}

// Delete removes the documents with the given ids. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, s.tableName)
	if _, err := s.db.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("pgvector: delete documents: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.tableName)

	var count int
	if err := s.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgvector: count: %w", err)
	}
	return count, nil
}
