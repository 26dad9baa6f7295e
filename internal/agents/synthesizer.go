package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/TejasNaik24/GUARDIAN/internal/llm"
)

const emergencyDirective = "EMERGENCY: Please call emergency services immediately."

const synthesisPromptTemplate = `You are Guardian AI, a medical assistant.
Synthesize a final response for the user based on the expert outputs below.

User Message: %q

Expert Outputs:
%s

Instructions:
1. Combine the advice into a coherent, empathetic response.
%s2. Use the first aid steps if provided.
3. Use the reference context to support your answer.
4. Do NOT mention internal expert names to the user. Just speak naturally.
5. Be concise.

Response:`

// Synthesizer merges the ordered trace into one final answer with an
// urgency classification. It makes exactly one generation call; if that
// call fails the answer degrades to a deterministic conservative text.
type Synthesizer struct {
	llm llm.Client
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(client llm.Client) *Synthesizer {
	return &Synthesizer{llm: client}
}

// Synthesize walks the trace in insertion order, derives the urgency
// level from the triage entry, and produces the final user-facing text.
// Citations collected from reference lookup are attached to the result.
func (s *Synthesizer) Synthesize(ctx context.Context, req *Request, trace []TraceEntry, citations []Citation) *Result {
	var combined strings.Builder
	urgency := UrgencyGreen

	for _, entry := range trace {
		fmt.Fprintf(&combined, "\n--- %s OUTPUT ---\n%s\n", strings.ToUpper(entry.Agent), entry.Result)

		if entry.Agent == TriageAgentName && entry.Data != nil {
			level, _ := entry.Data["level"].(string)
			urgency = escalate(urgency, level)
		}
	}

	directive := ""
	if urgency == UrgencyRed {
		directive = fmt.Sprintf("Start your response with %q\n", emergencyDirective)
	}

	prompt := fmt.Sprintf(synthesisPromptTemplate, req.Message, combined.String(), directive)

	finalText, err := s.llm.GenerateText(ctx, prompt, 0.7)
	if err != nil || strings.TrimSpace(finalText) == "" {
		finalText = s.fallbackText(urgency)
	}

	if citations == nil {
		citations = []Citation{}
	}

	return &Result{
		FinalText:    finalText,
		AgentTrace:   trace,
		Citations:    citations,
		UrgencyLevel: urgency,
	}
}

// escalate applies the monotonic urgency ordering: once RED, always RED.
func escalate(current, level string) string {
	switch level {
	case UrgencyRed:
		return UrgencyRed
	case UrgencyYellow:
		if current != UrgencyRed {
			return UrgencyYellow
		}
	}
	return current
}

// fallbackText is the deterministic answer used when the synthesis call
// itself fails. It stays deliberately cautious.
func (s *Synthesizer) fallbackText(urgency string) string {
	base := "I could not fully process your question right now. Please consult a healthcare professional for advice about your situation."
	if urgency == UrgencyRed {
		return emergencyDirective + " " + base
	}
	return base
}
