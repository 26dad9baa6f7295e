package rag

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	fieldText      = "text"
	fieldEmbedding = "text_embedding"
	fieldSource    = "source"
	fieldPage      = "page"
)

// MilvusConfig configures the Milvus-backed retriever.
type MilvusConfig struct {
	Address    string
	Collection string
	Username   string
	Password   string
}

// MilvusRetriever implements Retriever over a Milvus collection that holds
// reference document chunks with their embeddings.
type MilvusRetriever struct {
	client     client.Client
	embedder   Embedder
	collection string
}

// NewMilvusRetriever connects to Milvus and loads the collection.
func NewMilvusRetriever(ctx context.Context, cfg MilvusConfig, embedder Embedder) (*MilvusRetriever, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	c, err := client.NewClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	exists, err := c.HasCollection(ctx, cfg.Collection)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		c.Close()
		return nil, fmt.Errorf("collection %q does not exist", cfg.Collection)
	}
	if err := c.LoadCollection(ctx, cfg.Collection, false); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	return &MilvusRetriever{
		client:     c,
		embedder:   embedder,
		collection: cfg.Collection,
	}, nil
}

// SearchSimilar embeds the query and runs a cosine-similarity vector
// search, dropping hits below threshold.
func (m *MilvusRetriever) SearchSimilar(ctx context.Context, query string, topK int, threshold float64) ([]SearchResult, error) {
	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	vector := make([]float32, len(embedding))
	for i, v := range embedding {
		vector[i] = float32(v)
	}

	sp, err := entity.NewIndexFlatSearchParam()
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	searchResults, err := m.client.Search(
		ctx,
		m.collection,
		nil,
		"",
		[]string{fieldText, fieldSource, fieldPage},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldEmbedding,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	var results []SearchResult
	for _, sr := range searchResults {
		texts := stringColumn(sr.Fields.GetColumn(fieldText))
		sources := stringColumn(sr.Fields.GetColumn(fieldSource))
		pages := int64Column(sr.Fields.GetColumn(fieldPage))

		for i := 0; i < sr.ResultCount; i++ {
			score := float64(sr.Scores[i])
			if score < threshold {
				continue
			}
			results = append(results, SearchResult{
				Content: valueAt(texts, i),
				Metadata: map[string]any{
					"source": valueAt(sources, i),
					"page":   valueAt(pages, i),
				},
				Score: score,
			})
		}
	}
	return results, nil
}

// Close releases the Milvus connection.
func (m *MilvusRetriever) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

func stringColumn(col entity.Column) []string {
	if c, ok := col.(*entity.ColumnVarChar); ok {
		return c.Data()
	}
	return nil
}

func int64Column(col entity.Column) []int64 {
	if c, ok := col.(*entity.ColumnInt64); ok {
		return c.Data()
	}
	return nil
}

func valueAt[T any](data []T, i int) T {
	var zero T
	if i < 0 || i >= len(data) {
		return zero
	}
	return data[i]
}
