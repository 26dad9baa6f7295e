package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type namedAgent struct{ name string }

func (a *namedAgent) Name() string { return a.name }
func (a *namedAgent) Handle(context.Context, *Request) (*Response, error) {
	return &Response{AgentName: a.name, OK: true}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&namedAgent{name: SafetyAgentName})
	r.Register(&namedAgent{name: TriageAgentName})

	agent, ok := r.Get(SafetyAgentName)
	assert.True(t, ok)
	assert.Equal(t, SafetyAgentName, agent.Name())

	_, ok = r.Get("billing_agent")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{SafetyAgentName, TriageAgentName}, r.Names())
}

func TestRequestID(t *testing.T) {
	req := &Request{Message: "hi"}
	assert.Equal(t, "unknown", req.RequestID())

	req.Metadata = map[string]any{RequestIDKey: "abc-123"}
	assert.Equal(t, "abc-123", req.RequestID())
}
