// Package llm defines the text and vision generation boundary consumed by
// the agent pipeline. Implementations may fail or return malformed output;
// callers are expected to tolerate both.
package llm

import "context"

// Client is the capability gateway every agent talks to.
type Client interface {
	// GenerateText produces a completion for the given prompt.
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	// AnalyzeImage produces a description of the image guided by prompt.
	AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error)
}
