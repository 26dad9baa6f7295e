package subagents

import (
	"context"
	"fmt"
	"time"

	"github.com/TejasNaik24/GUARDIAN/internal/agentlog"
	"github.com/TejasNaik24/GUARDIAN/internal/agents"
	"github.com/TejasNaik24/GUARDIAN/internal/rag"
)

const snippetLen = 200

// RagLookupConfig tunes retrieval for the lookup agent.
type RagLookupConfig struct {
	TopK                int
	SimilarityThreshold float64
}

// RagLookupAgent fetches reference chunks from the vector store. Its
// chunks are flattened into the shared context after stage 1 so later
// agents can ground their advice on them.
type RagLookupAgent struct {
	retriever rag.Retriever
	cfg       RagLookupConfig
	log       *agentlog.Logger
}

// NewRagLookupAgent creates a lookup agent. Zero config values get
// replaced with the defaults (top 5, threshold 0.6).
func NewRagLookupAgent(retriever rag.Retriever, cfg RagLookupConfig, log *agentlog.Logger) *RagLookupAgent {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 0.6
	}
	return &RagLookupAgent{retriever: retriever, cfg: cfg, log: log}
}

// Name implements agents.Agent.
func (a *RagLookupAgent) Name() string { return agents.RagLookupAgentName }

// Handle implements agents.Agent.
func (a *RagLookupAgent) Handle(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	start := time.Now()

	results, err := a.retriever.SearchSimilar(ctx, req.Message, a.cfg.TopK, a.cfg.SimilarityThreshold)
	if err != nil {
		a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), false, map[string]any{"error": err.Error()})
		return &agents.Response{
			AgentName:   a.Name(),
			OK:          false,
			ResultText:  fmt.Sprintf("Error retrieving documents: %v", err),
			Diagnostics: map[string]any{"error": err.Error()},
		}, nil
	}

	chunks := make([]string, 0, len(results))
	citations := make([]agents.Citation, 0, len(results))
	for _, doc := range results {
		chunks = append(chunks, doc.Content)
		citations = append(citations, agents.Citation{
			Source:  metadataString(doc.Metadata, "source", "Unknown"),
			Page:    metadataInt64(doc.Metadata, "page"),
			Snippet: snippet(doc.Content),
			Score:   doc.Score,
		})
	}

	score := 0.0
	if len(chunks) > 0 {
		score = 1.0
	}

	a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), true, map[string]any{"chunks_found": len(chunks)})

	return &agents.Response{
		AgentName:      a.Name(),
		OK:             true,
		ResultText:     fmt.Sprintf("Found %d relevant documents.", len(chunks)),
		StructuredData: map[string]any{"chunks": chunks},
		Citations:      citations,
		Score:          score,
	}, nil
}

// snippet truncates on rune boundaries so multi-byte characters are
// never split mid-sequence.
func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetLen {
		return content
	}
	return string(runes[:snippetLen]) + "..."
}

func metadataString(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func metadataInt64(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
