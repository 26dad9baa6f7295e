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

const pediatricPromptTemplate = `You are a pediatric medical assistant.
User Message: %q

1. Check if the age of the child is mentioned.
2. If NOT mentioned, your primary action is to ASK FOR THE AGE.
3. If mentioned, provide age-appropriate advice.

Output JSON ONLY:
{
    "age_detected": "age string or null",
    "needs_age_clarification": true/false,
    "advice": "advice string",
    "special_considerations": ["list of considerations"]
}`

type pediatricResult struct {
	AgeDetected           string   `json:"age_detected"`
	NeedsAgeClarification bool     `json:"needs_age_clarification"`
	Advice                string   `json:"advice"`
	SpecialConsiderations []string `json:"special_considerations"`
}

// PediatricAgent adds child-specific caveats. Without a parseable
// verdict it asks for the child's age rather than guessing.
type PediatricAgent struct {
	llm llm.Client
	log *agentlog.Logger
}

// NewPediatricAgent creates a pediatric agent.
func NewPediatricAgent(client llm.Client, log *agentlog.Logger) *PediatricAgent {
	return &PediatricAgent{llm: client, log: log}
}

// Name implements agents.Agent.
func (a *PediatricAgent) Name() string { return agents.PediatricAgentName }

// Handle implements agents.Agent.
func (a *PediatricAgent) Handle(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	start := time.Now()

	raw, err := a.llm.GenerateText(ctx, fmt.Sprintf(pediatricPromptTemplate, req.Message), 0.2)
	if err != nil {
		a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), false, map[string]any{"error": err.Error()})
		return &agents.Response{
			AgentName:   a.Name(),
			OK:          false,
			ResultText:  fmt.Sprintf("Error in pediatric agent: %v", err),
			Diagnostics: map[string]any{"error": err.Error()},
		}, nil
	}

	var result pediatricResult
	if perr := extract.JSON(raw, &result); perr != nil {
		result = pediatricResult{
			NeedsAgeClarification: true,
			Advice:                "Please specify the age of the child so I can provide accurate advice.",
			SpecialConsiderations: []string{},
		}
	}

	a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), true, map[string]any{"needs_clarification": result.NeedsAgeClarification})

	return &agents.Response{
		AgentName:  a.Name(),
		OK:         true,
		ResultText: result.Advice,
		StructuredData: map[string]any{
			"age_detected":            result.AgeDetected,
			"needs_age_clarification": result.NeedsAgeClarification,
			"advice":                  result.Advice,
			"special_considerations":  result.SpecialConsiderations,
		},
		Score: 1.0,
	}, nil
}
