package subagents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TejasNaik24/GUARDIAN/internal/agentlog"
	"github.com/TejasNaik24/GUARDIAN/internal/agents"
	"github.com/TejasNaik24/GUARDIAN/internal/extract"
	"github.com/TejasNaik24/GUARDIAN/internal/llm"
)

const symptomsPromptTemplate = `Extract symptoms from the user message.
User Message: %q

Output JSON ONLY:
{
    "symptoms": ["list", "of", "symptoms"],
    "duration": "duration string or null",
    "severity_indicators": ["severe pain", "high fever"],
    "red_flags": true/false (if any emergency keywords present like chest pain, difficulty breathing),
    "urgency_score": 0.0 to 1.0 (1.0 is immediate emergency)
}`

type symptomsResult struct {
	Symptoms           []string `json:"symptoms"`
	Duration           string   `json:"duration"`
	SeverityIndicators []string `json:"severity_indicators"`
	RedFlags           bool     `json:"red_flags"`
	UrgencyScore       float64  `json:"urgency_score"`
}

// SymptomsAgent extracts structured symptoms and a coarse urgency score
// from the user message. Parse failure degrades to an empty extraction.
type SymptomsAgent struct {
	llm llm.Client
	log *agentlog.Logger
}

// NewSymptomsAgent creates a symptoms agent.
func NewSymptomsAgent(client llm.Client, log *agentlog.Logger) *SymptomsAgent {
	return &SymptomsAgent{llm: client, log: log}
}

// Name implements agents.Agent.
func (a *SymptomsAgent) Name() string { return agents.SymptomsAgentName }

// Handle implements agents.Agent.
func (a *SymptomsAgent) Handle(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	start := time.Now()

	raw, err := a.llm.GenerateText(ctx, fmt.Sprintf(symptomsPromptTemplate, req.Message), 0)
	if err != nil {
		a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), false, map[string]any{"error": err.Error()})
		return &agents.Response{
			AgentName:   a.Name(),
			OK:          false,
			ResultText:  fmt.Sprintf("Error analyzing symptoms: %v", err),
			Diagnostics: map[string]any{"error": err.Error()},
		}, nil
	}

	var result symptomsResult
	if perr := extract.JSON(raw, &result); perr != nil {
		result = symptomsResult{
			Symptoms:           []string{},
			SeverityIndicators: []string{},
		}
	}

	a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), true, map[string]any{"urgency": result.UrgencyScore})

	return &agents.Response{
		AgentName:  a.Name(),
		OK:         true,
		ResultText: "Identified symptoms: " + strings.Join(result.Symptoms, ", "),
		StructuredData: map[string]any{
			"symptoms":            result.Symptoms,
			"duration":            result.Duration,
			"severity_indicators": result.SeverityIndicators,
			"red_flags":           result.RedFlags,
			"urgency_score":       result.UrgencyScore,
		},
		Score: result.UrgencyScore,
	}, nil
}
