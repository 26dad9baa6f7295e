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

const firstAidPromptTemplate = `Provide step-by-step first aid instructions for: %q

Use this authoritative context if relevant:
%s

Rules:
1. Be concise and clear.
2. Number the steps.
3. Do NOT diagnose.
4. If emergency, start with "Call Emergency Services".

Output JSON ONLY:
{
    "title": "First Aid for ...",
    "steps": ["1. ...", "2. ..."],
    "warnings": ["warning 1", "warning 2"]
}`

type firstAidResult struct {
	Title    string   `json:"title"`
	Steps    []string `json:"steps"`
	Warnings []string `json:"warnings"`
}

// FirstAidAgent produces ordered first aid steps, grounded on reference
// chunks retrieved in stage 1 when available. If the model ignores the
// JSON instruction the raw lines become the steps.
type FirstAidAgent struct {
	llm llm.Client
	log *agentlog.Logger
}

// NewFirstAidAgent creates a first aid agent.
func NewFirstAidAgent(client llm.Client, log *agentlog.Logger) *FirstAidAgent {
	return &FirstAidAgent{llm: client, log: log}
}

// Name implements agents.Agent.
func (a *FirstAidAgent) Name() string { return agents.FirstAidAgentName }

// Handle implements agents.Agent.
func (a *FirstAidAgent) Handle(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	start := time.Now()

	ragContext := strings.Join(contextChunks(req), "\n")
	raw, err := a.llm.GenerateText(ctx, fmt.Sprintf(firstAidPromptTemplate, req.Message, ragContext), 0.2)
	if err != nil {
		a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), false, map[string]any{"error": err.Error()})
		return &agents.Response{
			AgentName:   a.Name(),
			OK:          false,
			ResultText:  fmt.Sprintf("Error generating first aid: %v", err),
			Diagnostics: map[string]any{"error": err.Error()},
		}, nil
	}

	var result firstAidResult
	if perr := extract.JSON(raw, &result); perr != nil {
		result = firstAidResult{
			Title:    "First Aid Instructions",
			Steps:    nonEmptyLines(raw),
			Warnings: []string{},
		}
	}

	a.log.LogAgentExecution(a.Name(), req.RequestID(), time.Since(start), true, map[string]any{"steps_count": len(result.Steps)})

	return &agents.Response{
		AgentName:  a.Name(),
		OK:         true,
		ResultText: "First Aid: " + result.Title,
		StructuredData: map[string]any{
			"title":    result.Title,
			"steps":    result.Steps,
			"warnings": result.Warnings,
		},
		Score: 1.0,
	}, nil
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
