package subagents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TejasNaik24/GUARDIAN/internal/agentlog"
	"github.com/TejasNaik24/GUARDIAN/internal/agents"
	"github.com/TejasNaik24/GUARDIAN/internal/extract"
	"github.com/TejasNaik24/GUARDIAN/internal/llm"
)

const triagePromptTemplate = `Determine the triage level and next steps for this medical situation.
User Message: %q
%s

Levels:
- RED: Life-threatening emergency (Call 911/Emergency)
- YELLOW: Urgent (Seek medical attention today/Urgent Care)
- GREEN: Non-urgent (Home care/Routine appointment)

Output JSON ONLY:
{
    "level": "RED|YELLOW|GREEN",
    "reasoning": "short explanation",
    "action": "Call 911 | Go to ER | Call Doctor | Home Care",
    "steps": ["step 1", "step 2"]
}`

type triageResult struct {
	Level     string   `json:"level"`
	Reasoning string   `json:"reasoning"`
	Action    string   `json:"action"`
	Steps     []string `json:"steps"`
}

// Score per triage level. Unrecognized levels score 0.5, which sits
// between YELLOW and GREEN and differs from the parse-failure fallback
// path (YELLOW, hence 0.6). Both values are kept as-is.
var triageScores = map[string]float64{
	agents.UrgencyRed:    1.0,
	agents.UrgencyYellow: 0.6,
	agents.UrgencyGreen:  0.2,
}

// TriageAgent classifies the situation into RED/YELLOW/GREEN using the
// message plus whatever structured context stage 1 accumulated. Parse
// failure falls back to YELLOW, the cautious middle.
type TriageAgent struct {
	llm llm.Client
	log *agentlog.Logger
}

// NewTriageAgent creates a triage agent.
func NewTriageAgent(client llm.Client, log *agentlog.Logger) *TriageAgent {
	return &TriageAgent{llm: client, log: log}
}

// Name implements agents.Agent.
func (a *TriageAgent) Name() string { return agents.TriageAgentName }

// Handle implements agents.Agent.
func (a *TriageAgent) Handle(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	start := time.Now()

	contextLine := ""
	if len(req.Context) > 0 {
		if encoded, err := json.Marshal(req.Context); err == nil {
			contextLine = "Context: " + string(encoded)
		}
	}

	raw, err := a.llm.GenerateText(ctx, fmt.Sprintf(triagePromptTemplate, req.Message, contextLine), 0)
	if err != nil {
		a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), false, map[string]any{"error": err.Error()})
		return &agents.Response{
			AgentName:   a.Name(),
			OK:          false,
			ResultText:  fmt.Sprintf("Error in triage: %v", err),
			Diagnostics: map[string]any{"error": err.Error()},
		}, nil
	}

	var result triageResult
	if perr := extract.JSON(raw, &result); perr != nil {
		result = triageResult{
			Level:     agents.UrgencyYellow,
			Reasoning: "Could not parse triage result, defaulting to caution.",
			Action:    "Consult a healthcare professional",
			Steps:     []string{},
		}
	}

	score, ok := triageScores[result.Level]
	if !ok {
		score = 0.5
	}

	a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), true, map[string]any{"level": result.Level})

	return &agents.Response{
		AgentName:  a.Name(),
		OK:         true,
		ResultText: fmt.Sprintf("Triage Level: %s. %s", result.Level, result.Action),
		StructuredData: map[string]any{
			"level":     result.Level,
			"reasoning": result.Reasoning,
			"action":    result.Action,
			"steps":     result.Steps,
		},
		Score: score,
	}, nil
}
