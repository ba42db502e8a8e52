package vectorstore

import "context"

// DefaultTopK is the number of documents a search returns when the request
// does not specify one.
const DefaultTopK = 4

// Document is a unit of retrievable content. Score is only populated on
// documents returned from a search: higher means more relevant, with 1.0 a
// perfect match.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score,omitempty"`
}

// SearchRequest describes a similarity search. TopK bounds the number of
// results (DefaultTopK when <= 0). MinScore, when positive, drops results
// scoring below it.
type SearchRequest struct {
	Query    string
	TopK     int
	MinScore float64
}

// Store retrieves documents relevant to a query. Implementations range from
// vector databases to plain web search APIs; callers only depend on the
// ranked results.
type Store interface {
	SimilaritySearch(ctx context.Context, request SearchRequest) ([]Document, error)
}
