// Package vectorstore defines the document retrieval contract used by
// retrieval-augmented generation. A [Store] answers a [SearchRequest] with
// ranked [Document] values; where they come from is an implementation
// detail.
//
// Backend implementations live in subpackages:
//   - pgvector: PostgreSQL with the pgvector extension
//   - tavily: the Tavily web search API
//
// The webloader subpackage converts web pages into [Document] values for
// ingestion into a Store.
package vectorstore
