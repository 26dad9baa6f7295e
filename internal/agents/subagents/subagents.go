// Package subagents implements the specialized agent variants. Each one
// builds a capability prompt, best-effort parses the model's output, and
// falls back to an explicit safe default when parsing fails. None of
// them mutate the request's context or metadata.
package subagents

import (
	"github.com/TejasNaik24/GUARDIAN/internal/agents"
)

// contextChunks reads the retrieved reference chunks the orchestrator
// flattened into the request context after stage 1. Both []string and
// []any are accepted since the context may have crossed a JSON boundary.
func contextChunks(req *agents.Request) []string {
	if req.Context == nil {
		return nil
	}
	switch v := req.Context[agents.RagChunksKey].(type) {
	case []string:
		return v
	case []any:
		chunks := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				chunks = append(chunks, s)
			}
		}
		return chunks
	default:
		return nil
	}
}
