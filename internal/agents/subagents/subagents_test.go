package subagents

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TejasNaik24/GUARDIAN/internal/agents"
	"github.com/TejasNaik24/GUARDIAN/internal/llm/llmtest"
	"github.com/TejasNaik24/GUARDIAN/internal/rag"
)

func TestSymptoms_Extraction(t *testing.T) {
	fake := llmtest.NewFakeClient(`{"symptoms": ["fever", "lethargy"], "duration": "2 days", "severity_indicators": ["high fever"], "red_flags": true, "urgency_score": 0.8}`)
	a := NewSymptomsAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "My child has a 104F fever and is lethargic"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "Identified symptoms: fever, lethargy", resp.ResultText)
	assert.Equal(t, 0.8, resp.Score)
	assert.Equal(t, true, resp.StructuredData["red_flags"])
}

func TestSymptoms_FallbackOnMalformedOutput(t *testing.T) {
	fake := llmtest.NewFakeClient("sounds like a cold to me")
	a := NewSymptomsAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "I sneeze a lot"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, []string{}, resp.StructuredData["symptoms"])
	assert.Equal(t, 0.0, resp.Score)
}

func TestFirstAid_OrderedSteps(t *testing.T) {
	fake := llmtest.NewFakeClient(`{"title": "First Aid for Minor Burns", "steps": ["1. Cool the burn under running water", "2. Cover with a sterile dressing"], "warnings": ["Do not apply ice"]}`)
	a := NewFirstAidAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "How do I treat a minor burn?"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "First Aid: First Aid for Minor Burns", resp.ResultText)
	steps, ok := resp.StructuredData["steps"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, steps)
	assert.Equal(t, "1. Cool the burn under running water", steps[0])
}

func TestFirstAid_UsesRetrievedChunks(t *testing.T) {
	fake := llmtest.NewFakeClient(`{"title": "t", "steps": ["1."], "warnings": []}`)
	a := NewFirstAidAgent(fake, nil)

	req := &agents.Request{
		Message: "burn",
		Context: map[string]any{agents.RagChunksKey: []string{"Cool burns for 20 minutes."}},
	}
	_, err := a.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, fake.LastPrompt(), "Cool burns for 20 minutes.")
}

func TestFirstAid_RawTextFallback(t *testing.T) {
	raw := "Cool the burn.\n\nCover it loosely."
	fake := llmtest.NewFakeClient(raw)
	a := NewFirstAidAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "burn"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	steps := resp.StructuredData["steps"].([]string)
	assert.Equal(t, []string{"Cool the burn.", "Cover it loosely."}, steps)
}

func TestPediatric_AsksForAgeOnFallback(t *testing.T) {
	fake := llmtest.NewFakeClient("could be teething")
	a := NewPediatricAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "my baby is fussy"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, true, resp.StructuredData["needs_age_clarification"])
	assert.Contains(t, resp.ResultText, "age of the child")
}

func TestPediatric_AgeDetected(t *testing.T) {
	fake := llmtest.NewFakeClient(`{"age_detected": "3 years", "needs_age_clarification": false, "advice": "Keep the child hydrated.", "special_considerations": ["watch for dehydration"]}`)
	a := NewPediatricAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "my 3 year old has a fever"})
	require.NoError(t, err)
	assert.Equal(t, "Keep the child hydrated.", resp.ResultText)
	assert.Equal(t, "3 years", resp.StructuredData["age_detected"])
}

func TestImageAnalysis_RequiresImage(t *testing.T) {
	fake := llmtest.NewFakeClient("should never be called")
	a := NewImageAnalysisAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "what is this?"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "No image provided.", resp.ResultText)
	assert.Equal(t, 0, fake.CallCount(), "no capability call without image data")
}

func TestImageAnalysis_StructuredFindings(t *testing.T) {
	fake := llmtest.NewFakeClient(`{"type": "wound", "is_medical": true, "description": "small laceration on forearm", "severity_hint": "low", "detected_text": "", "recommended_next_steps": ["clean the wound"]}`)
	a := NewImageAnalysisAgent(fake, nil)

	image := base64.StdEncoding.EncodeToString([]byte("fake-image-bytes"))
	resp, err := a.Handle(context.Background(), &agents.Request{Message: "is this bad?", ImageBase64: image})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "wound", resp.StructuredData["type"])
	assert.Equal(t, "small laceration on forearm", resp.ResultText)
}

func TestImageAnalysis_FallbackAssumesMedical(t *testing.T) {
	fake := llmtest.NewFakeClient("This looks like a bandaged arm.")
	a := NewImageAnalysisAgent(fake, nil)

	image := base64.StdEncoding.EncodeToString([]byte("fake"))
	resp, err := a.Handle(context.Background(), &agents.Request{Message: "?", ImageBase64: image})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, true, resp.StructuredData["is_medical"])
	assert.Equal(t, "unknown", resp.StructuredData["type"])
	assert.Equal(t, "This looks like a bandaged arm.", resp.StructuredData["description"])
}

func TestImageAnalysis_RejectsBadBase64(t *testing.T) {
	fake := llmtest.NewFakeClient("unused")
	a := NewImageAnalysisAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "?", ImageBase64: "not!!base64"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, 0, fake.CallCount())
}

type fakeRetriever struct {
	results []rag.SearchResult
	err     error
	query   string
}

func (f *fakeRetriever) SearchSimilar(_ context.Context, query string, _ int, _ float64) ([]rag.SearchResult, error) {
	f.query = query
	return f.results, f.err
}

func TestRagLookup_ChunksAndCitations(t *testing.T) {
	long := strings.Repeat("x", 250)
	retriever := &fakeRetriever{results: []rag.SearchResult{
		{Content: long, Metadata: map[string]any{"source": "burns.pdf", "page": int64(12)}, Score: 0.91},
		{Content: "short chunk", Metadata: map[string]any{}, Score: 0.75},
	}}
	a := NewRagLookupAgent(retriever, RagLookupConfig{}, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "burn treatment"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, 1.0, resp.Score)
	assert.Equal(t, "Found 2 relevant documents.", resp.ResultText)

	chunks := resp.StructuredData["chunks"].([]string)
	assert.Len(t, chunks, 2)

	require.Len(t, resp.Citations, 2)
	assert.Equal(t, "burns.pdf", resp.Citations[0].Source)
	assert.Equal(t, int64(12), resp.Citations[0].Page)
	assert.Equal(t, long[:200]+"...", resp.Citations[0].Snippet)
	assert.Equal(t, "Unknown", resp.Citations[1].Source)
	assert.Equal(t, "short chunk", resp.Citations[1].Snippet)
}

func TestRagLookup_SnippetKeepsRuneBoundaries(t *testing.T) {
	content := strings.Repeat("é", 210)
	retriever := &fakeRetriever{results: []rag.SearchResult{
		{Content: content, Metadata: map[string]any{"source": "notes.pdf"}, Score: 0.8},
	}}
	a := NewRagLookupAgent(retriever, RagLookupConfig{}, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "q"})
	require.NoError(t, err)
	require.Len(t, resp.Citations, 1)

	got := resp.Citations[0].Snippet
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 200)+"...", got)
}

func TestRagLookup_EmptyResultScoresZero(t *testing.T) {
	a := NewRagLookupAgent(&fakeRetriever{}, RagLookupConfig{}, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "obscure topic"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, 0.0, resp.Score)
	assert.Empty(t, resp.Citations)
}

func TestRagLookup_RetrieverErrorIsNotOK(t *testing.T) {
	a := NewRagLookupAgent(&fakeRetriever{err: assert.AnError}, RagLookupConfig{}, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "anything"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.ResultText, "Error retrieving documents")
}

func TestContextChunks_AcceptsJSONDecodedSlices(t *testing.T) {
	req := &agents.Request{Context: map[string]any{agents.RagChunksKey: []any{"A", 7, "B"}}}
	assert.Equal(t, []string{"A", "B"}, contextChunks(req))

	req = &agents.Request{Context: map[string]any{agents.RagChunksKey: []string{"C"}}}
	assert.Equal(t, []string{"C"}, contextChunks(req))

	assert.Nil(t, contextChunks(&agents.Request{}))
}
