package subagents

import (
	"context"
	"fmt"
	"time"

	"github.com/TejasNaik24/GUARDIAN/internal/agentlog"
	"github.com/TejasNaik24/GUARDIAN/internal/agents"
	"github.com/TejasNaik24/GUARDIAN/internal/extract"
	"github.com/TejasNaik24/GUARDIAN/internal/llm"
)

const safetyPromptTemplate = `Analyze this message for safety violations.
Message: %q

Violations to check:
1. Self-harm or suicide.
2. Violence or illegal acts.
3. Request for specific prescription dosages (without context).
4. Non-medical topics (strict refusal).

Output JSON ONLY:
{
    "is_safe": true/false,
    "violation_type": "self_harm|violence|non_medical|none",
    "reason": "explanation",
    "suggested_response": "response if unsafe"
}`

type safetyResult struct {
	IsSafe            bool   `json:"is_safe"`
	ViolationType     string `json:"violation_type"`
	Reason            string `json:"reason"`
	SuggestedResponse string `json:"suggested_response"`
}

// SafetyAgent screens the user message before anything else runs.
// It fails closed: a capability failure or unparseable verdict is
// treated as unsafe.
type SafetyAgent struct {
	llm llm.Client
	log *agentlog.Logger
}

// NewSafetyAgent creates a safety agent.
func NewSafetyAgent(client llm.Client, log *agentlog.Logger) *SafetyAgent {
	return &SafetyAgent{llm: client, log: log}
}

// Name implements agents.Agent.
func (a *SafetyAgent) Name() string { return agents.SafetyAgentName }

// Handle implements agents.Agent.
func (a *SafetyAgent) Handle(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	start := time.Now()

	raw, err := a.llm.GenerateText(ctx, fmt.Sprintf(safetyPromptTemplate, req.Message), 0)
	if err != nil {
		a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), false, map[string]any{"error": err.Error()})
		return &agents.Response{
			AgentName:   a.Name(),
			OK:          false,
			ResultText:  "Safety check failed. Cannot proceed.",
			Diagnostics: map[string]any{"error": err.Error()},
		}, nil
	}

	var result safetyResult
	if perr := extract.JSON(raw, &result); perr != nil {
		result = safetyResult{
			IsSafe:            false,
			ViolationType:     "error",
			Reason:            "Could not validate safety",
			SuggestedResponse: "I cannot process this request at the moment.",
		}
	}

	resultText := "Safe"
	score := 1.0
	if !result.IsSafe {
		resultText = result.SuggestedResponse
		score = 0.0
	}

	a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), true, map[string]any{"is_safe": result.IsSafe})

	return &agents.Response{
		AgentName:  a.Name(),
		OK:         result.IsSafe,
		ResultText: resultText,
		StructuredData: map[string]any{
			"is_safe":            result.IsSafe,
			"violation_type":     result.ViolationType,
			"reason":             result.Reason,
			"suggested_response": result.SuggestedResponse,
		},
		Score: score,
	}, nil
}
