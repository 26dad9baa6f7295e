package agents

import (
	"context"
	"fmt"

	"github.com/TejasNaik24/GUARDIAN/internal/agentlog"
	"github.com/TejasNaik24/GUARDIAN/internal/extract"
	"github.com/TejasNaik24/GUARDIAN/internal/llm"
)

const routingPromptTemplate = `Classify this medical query to select the best experts.
Query: %q

Experts:
- symptoms_agent: User describes symptoms or feeling unwell.
- first_aid_agent: User asks how to treat an injury, burn, choking, etc.
- pediatric_agent: Query involves a child, baby, or toddler.
- rag_lookup_agent: General medical questions, definitions, or research.

Output JSON ONLY:
{
    "experts": ["list", "of", "expert_names"]
}`

// The classification menu. Names outside this set are silently dropped.
var routableExperts = map[string]bool{
	SymptomsAgentName:  true,
	FirstAidAgentName:  true,
	PediatricAgentName: true,
	RagLookupAgentName: true,
}

// routerFallback returns the selection used when classification fails
// entirely. Safety still gates the run and the lookup agent gives the
// synthesizer something to work with. Always a fresh slice: the
// orchestrator mutates selections, and runs must not share one.
func routerFallback() []string {
	return []string{SafetyAgentName, RagLookupAgentName}
}

// Router classifies a request into the ordered set of agent names that
// should execute. Route never returns an empty selection and never
// fails outward; classification errors degrade to a fixed fallback.
type Router struct {
	llm llm.Client
	log *agentlog.Logger
}

// NewRouter creates a router.
func NewRouter(client llm.Client, log *agentlog.Logger) *Router {
	return &Router{llm: client, log: log}
}

// Route selects agents for the request. Safety is always first; image
// data always adds image analysis; one classification call picks the
// remaining experts, then deterministic expansions apply
// (symptoms adds triage, first aid adds reference lookup).
func (r *Router) Route(ctx context.Context, req *Request) []string {
	selected := []string{SafetyAgentName}
	if req.ImageBase64 != "" {
		selected = append(selected, ImageAnalysisAgentName)
	}

	raw, err := r.llm.GenerateText(ctx, fmt.Sprintf(routingPromptTemplate, req.Message), 0)
	if err != nil {
		return routerFallback()
	}

	var classification struct {
		Experts []string `json:"experts"`
	}
	if perr := extract.JSON(raw, &classification); perr != nil {
		selected = appendMissing(selected, RagLookupAgentName)
	} else {
		for _, expert := range classification.Experts {
			if routableExperts[expert] {
				selected = appendMissing(selected, expert)
			}
		}
		if contains(selected, SymptomsAgentName) {
			selected = appendMissing(selected, TriageAgentName)
		}
		if contains(selected, FirstAidAgentName) {
			selected = appendMissing(selected, RagLookupAgentName)
		}
	}

	r.log.LogRoutingDecision(req.RequestID(), req.Message, selected, nil)
	return selected
}

func appendMissing(selection []string, name string) []string {
	if contains(selection, name) {
		return selection
	}
	return append(selection, name)
}

func contains(selection []string, name string) bool {
	for _, n := range selection {
		if n == name {
			return true
		}
	}
	return false
}

// routeSafe guards against a panicking capability client; routing must
// degrade, never abort.
func (r *Router) routeSafe(ctx context.Context, req *Request) (selection []string) {
	defer func() {
		if rec := recover(); rec != nil {
			selection = routerFallback()
		}
	}()
	selection = r.Route(ctx, req)
	if len(selection) == 0 {
		selection = routerFallback()
	}
	return selection
}
