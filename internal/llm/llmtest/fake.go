// Package llmtest provides a canned llm.Client for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"
)

type rule struct {
	match string
	text  string
	err   error
}

// FakeClient implements llm.Client with substring-matched canned
// responses. Rules are checked in registration order; the first rule
// whose match is contained in the prompt wins.
type FakeClient struct {
	mu          sync.Mutex
	rules       []rule
	fallback    string
	fallbackErr error
	calls       int
	prompts     []string
}

// NewFakeClient returns a fake that answers every prompt with fallback.
func NewFakeClient(fallback string) *FakeClient {
	return &FakeClient{fallback: fallback}
}

// Respond registers a canned response for prompts containing match.
func (f *FakeClient) Respond(match, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{match: match, text: text})
}

// FailWith registers an error for prompts containing match.
func (f *FakeClient) FailWith(match string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{match: match, err: err})
}

// FailAll makes every unmatched prompt return err.
func (f *FakeClient) FailAll(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallbackErr = err
}

// CallCount reports how many capability calls were made.
func (f *FakeClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastPrompt returns the most recent prompt, or "" when none were made.
func (f *FakeClient) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// Prompts returns a copy of every prompt seen so far.
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

// GenerateText implements llm.Client.
func (f *FakeClient) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	return f.answer(prompt)
}

// AnalyzeImage implements llm.Client. Matching runs against the prompt.
func (f *FakeClient) AnalyzeImage(_ context.Context, _ []byte, prompt string) (string, error) {
	return f.answer(prompt)
}

func (f *FakeClient) answer(prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)

	for _, r := range f.rules {
		if strings.Contains(prompt, r.match) {
			return r.text, r.err
		}
	}
	return f.fallback, f.fallbackErr
}
