package pgvector

import (
	"context"
	"fmt"
)

// createExtensionSQL enables pgvector. Requires the extension to be
// installed on the server (e.g. the pgvector/pgvector docker images).
const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS vector`

// createTableSQL is the DDL statement that creates the advigo_documents
// table. The embedding column dimension must match the embedder in use.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id         TEXT PRIMARY KEY,
    content    TEXT NOT NULL,
    metadata   JSONB,
    embedding  vector(%d),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// createEmbeddingIndexSQL creates an HNSW index for approximate
// nearest-neighbor search with cosine distance.
const createEmbeddingIndexSQL = `CREATE INDEX IF NOT EXISTS %s
    ON %s USING hnsw (embedding vector_cosine_ops)`

// EnsureSchema enables the vector extension and creates the documents table
// and its index if they do not already exist. The dimensions parameter must
// match the embedder's output width (e.g. 1536 for OpenAI
// text-embedding-3-small). This is a convenience helper for development and
// prototyping; production deployments should use proper migration tooling.
func (s *Store) EnsureSchema(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("pgvector: dimensions must be positive, got %d", dimensions)
	}

	if _, err := s.db.Exec(ctx, createExtensionSQL); err != nil {
		return fmt.Errorf("pgvector: create extension: %w", err)
	}

	tableSQL := fmt.Sprintf(createTableSQL, s.tableName, dimensions)
	if _, err := s.db.Exec(ctx, tableSQL); err != nil {
		return fmt.Errorf("pgvector: create table: %w", err)
	}

	indexSQL := fmt.Sprintf(createEmbeddingIndexSQL, s.indexName, s.tableName)
	if _, err := s.db.Exec(ctx, indexSQL); err != nil {
		return fmt.Errorf("pgvector: create embedding index: %w", err)
	}

	return nil
}
