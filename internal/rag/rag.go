// Package rag provides semantic retrieval over the medical reference
// collection. The lookup agent is its only consumer in the pipeline.
package rag

import "context"

// SearchResult is one retrieved reference chunk.
type SearchResult struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// Retriever is the retrieval gateway consumed by the lookup agent.
type Retriever interface {
	SearchSimilar(ctx context.Context, query string, topK int, threshold float64) ([]SearchResult, error)
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}
