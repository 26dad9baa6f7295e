package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TejasNaik24/GUARDIAN/internal/agentlog"
)

// Stage-1 membership. Everything else in the selection runs in stage 2,
// after stage-1 structured outputs have been merged into the context.
var stage1Agents = map[string]bool{
	ImageAnalysisAgentName: true,
	SymptomsAgentName:      true,
	RagLookupAgentName:     true,
}

const refusalText = "I cannot process this request due to safety guidelines."

// Orchestrator drives one request through the full pipeline:
// routing, the safety gate, two concurrent stages with a single context
// merge between them, and final synthesis. All dependencies are
// injected; the orchestrator holds no per-run state and is safe for
// concurrent use.
type Orchestrator struct {
	router   *Router
	registry *Registry
	synth    *Synthesizer
	log      *agentlog.Logger
}

// NewOrchestrator wires the pipeline together.
func NewOrchestrator(router *Router, registry *Registry, synth *Synthesizer, log *agentlog.Logger) *Orchestrator {
	return &Orchestrator{
		router:   router,
		registry: registry,
		synth:    synth,
		log:      log,
	}
}

// Handle runs one orchestration. It never fails outward: the worst
// outcome is a degraded, conservative answer.
func (o *Orchestrator) Handle(ctx context.Context, req *Request) *Result {
	start := time.Now()

	if req.Metadata == nil {
		req.Metadata = make(map[string]any)
	}
	requestID := uuid.NewString()
	req.Metadata[RequestIDKey] = requestID

	selection := o.router.routeSafe(ctx, req)

	var trace []TraceEntry

	// Safety gate. Exactly one safety evaluation per run, before any
	// other agent; failure short-circuits everything.
	if contains(selection, SafetyAgentName) {
		safetyAgent, ok := o.registry.Get(SafetyAgentName)
		safety := &Response{AgentName: SafetyAgentName, OK: false, ResultText: refusalText}
		if ok {
			if resp, err := o.runAgent(ctx, safetyAgent, req); err == nil {
				safety = resp
			}
		}
		trace = append(trace, TraceEntry{Agent: SafetyAgentName, OK: safety.OK, Result: safety.ResultText})

		if !safety.OK {
			finalText := safety.ResultText
			if finalText == "" {
				finalText = refusalText
			}
			return &Result{
				FinalText:    finalText,
				AgentTrace:   trace,
				Citations:    []Citation{},
				UrgencyLevel: UrgencyRed,
			}
		}
		selection = remove(selection, SafetyAgentName)
	}

	var stage1, stage2 []string
	for _, name := range selection {
		if stage1Agents[name] {
			stage1 = append(stage1, name)
		} else {
			stage2 = append(stage2, name)
		}
	}

	// Stage 1: independent extractors run concurrently.
	stage1Responses := o.runStage(ctx, stage1, req)

	// Merge: stage-1 structured outputs become shared context for
	// stage 2. This is the only point where context is written.
	contextUpdate := make(map[string]any)
	var ragChunks []string
	var citations []Citation
	for i, resp := range stage1Responses {
		if resp == nil {
			continue
		}
		name := stage1[i]
		trace = append(trace, TraceEntry{Agent: name, OK: resp.OK, Result: resp.ResultText, Data: resp.StructuredData})
		if resp.StructuredData != nil {
			contextUpdate[name] = resp.StructuredData
		}
		if name == RagLookupAgentName && resp.StructuredData != nil {
			if chunks, ok := resp.StructuredData["chunks"].([]string); ok {
				ragChunks = append(ragChunks, chunks...)
			}
			citations = append(citations, resp.Citations...)
		}
	}

	if req.Context == nil {
		req.Context = make(map[string]any)
	}
	for k, v := range contextUpdate {
		req.Context[k] = v
	}
	if len(ragChunks) > 0 {
		req.Context[RagChunksKey] = ragChunks
	}

	// Stage 2: context-enriched agents, same isolation policy.
	stage2Responses := o.runStage(ctx, stage2, req)
	for i, resp := range stage2Responses {
		if resp == nil {
			continue
		}
		trace = append(trace, TraceEntry{Agent: stage2[i], OK: resp.OK, Result: resp.ResultText, Data: resp.StructuredData})
	}

	result := o.synth.Synthesize(ctx, req, trace, citations)

	o.log.LogAgentExecution("main_agent", requestID, time.Since(start), true, map[string]any{"agents_count": len(trace)})
	return result
}

// runStage executes the named agents concurrently and waits for all of
// them. The returned slice is positionally aligned with names; a nil
// entry marks an agent that failed (or was unregistered) and is
// therefore excluded from the trace. One agent's failure never reaches
// its siblings.
func (o *Orchestrator) runStage(ctx context.Context, names []string, req *Request) []*Response {
	responses := make([]*Response, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		agent, ok := o.registry.Get(name)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, name string, agent Agent) {
			defer wg.Done()
			resp, err := o.runAgent(ctx, agent, req)
			if err != nil {
				o.log.LogAgentExecution(name, req.RequestID(), 0, false, map[string]any{"error": err.Error()})
				return
			}
			responses[i] = resp
		}(i, name, agent)
	}
	wg.Wait()

	return responses
}

// runAgent invokes one agent, converting panics into errors so a broken
// agent degrades to "missing from trace" instead of taking down the run.
func (o *Orchestrator) runAgent(ctx context.Context, agent Agent, req *Request) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = fmt.Errorf("agent %s panicked: %v", agent.Name(), rec)
		}
	}()
	return agent.Handle(ctx, req)
}

// remove returns a new slice; it must not reuse selection's backing
// array, which the router may have handed to more than one run.
func remove(selection []string, name string) []string {
	out := make([]string, 0, len(selection))
	for _, n := range selection {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
