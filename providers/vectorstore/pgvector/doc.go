// Package pgvector provides a PostgreSQL-backed implementation of the
// [vectorstore.Store] interface using the pgvector extension for cosine
// similarity search.
//
// The main entry point is [New], which pairs a pgx-compatible query executor
// with an [Embedder]. Use [Store.EnsureSchema] during development to enable
// the extension and auto-create the documents table.
package pgvector
