// Package agents contains the agent contract, the routing decision, the
// staged orchestration pipeline, and the final synthesis step.
//
// Every agent obeys one uniform contract: it receives a Request and
// produces a Response, recovering capability and parse failures
// internally. A Response with OK=false is the agent's own judgment
// (unsafe content, missing precondition); a returned error is an
// execution failure and is isolated by the orchestrator.
package agents

import "context"

// Agent names, as they appear in routing selections and traces.
const (
	SafetyAgentName        = "safety_agent"
	RagLookupAgentName     = "rag_lookup_agent"
	ImageAnalysisAgentName = "image_analysis_agent"
	SymptomsAgentName      = "symptoms_agent"
	TriageAgentName        = "triage_agent"
	FirstAidAgentName      = "first_aid_agent"
	PediatricAgentName     = "pediatric_agent"
)

// Urgency levels derived from triage.
const (
	UrgencyRed    = "RED"
	UrgencyYellow = "YELLOW"
	UrgencyGreen  = "GREEN"
)

// RagChunksKey is the context key under which stage-1 retrieval results
// are flattened for stage-2 consumption.
const RagChunksKey = "rag_chunks"

// RequestIDKey is the metadata key carrying the per-run request ID.
const RequestIDKey = "request_id"

// Request is the uniform input every agent accepts. Context accumulates
// structured outputs from earlier stages within one orchestration run;
// it is mutated only by the orchestrator between stages, never by an
// agent. Metadata carries the request ID and is never mutated by agents.
type Request struct {
	UserID         string         `json:"user_id,omitempty"`
	Message        string         `json:"message"`
	ImageBase64    string         `json:"image_base64,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
}

// RequestID returns the run's request ID, or "unknown" before routing.
func (r *Request) RequestID() string {
	if r.Metadata != nil {
		if id, ok := r.Metadata[RequestIDKey].(string); ok {
			return id
		}
	}
	return "unknown"
}

// Citation points at a retrieved reference chunk backing an answer.
type Citation struct {
	Source  string  `json:"source"`
	Page    int64   `json:"page"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Response is the uniform output every agent returns. For the safety
// agent specifically, OK=false means "unsafe", not "execution error";
// both cause the run to stop and return early.
type Response struct {
	AgentName      string         `json:"agent_name"`
	OK             bool           `json:"ok"`
	ResultText     string         `json:"result_text,omitempty"`
	StructuredData map[string]any `json:"structured_data,omitempty"`
	Citations      []Citation     `json:"citations,omitempty"`
	Score          float64        `json:"score,omitempty"`
	Diagnostics    map[string]any `json:"diagnostics,omitempty"`
}

// TraceEntry records one executed agent's outcome. The trace is
// append-only and insertion-ordered; it is the synthesizer's input.
type TraceEntry struct {
	Agent  string         `json:"agent"`
	OK     bool           `json:"ok"`
	Result string         `json:"result"`
	Data   map[string]any `json:"data,omitempty"`
}

// Result is the orchestrator's final output for one run.
type Result struct {
	FinalText    string       `json:"final_text"`
	AgentTrace   []TraceEntry `json:"agent_trace"`
	Citations    []Citation   `json:"citations"`
	UrgencyLevel string       `json:"urgency_level"`
}

// Agent maps one request to one structured judgment. Handle must recover
// capability failures and malformed output internally and express them
// as an OK=false response; a returned error is reserved for unexpected
// execution failures and excludes the agent from the trace.
type Agent interface {
	Name() string
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// Registry maps agent names to instances. Agents are stateless between
// invocations, so one registry is safely shared across concurrent runs.
type Registry struct {
	agents map[string]Agent
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds an agent under its own name.
func (r *Registry) Register(agent Agent) {
	r.agents[agent.Name()] = agent
}

// Get returns the named agent, or false when unknown.
func (r *Registry) Get(name string) (Agent, bool) {
	agent, ok := r.agents[name]
	return agent, ok
}

// Names lists registered agent names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	return names
}
