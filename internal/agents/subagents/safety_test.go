package subagents

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TejasNaik24/GUARDIAN/internal/agents"
	"github.com/TejasNaik24/GUARDIAN/internal/llm/llmtest"
)

func TestSafety_SafeMessage(t *testing.T) {
	fake := llmtest.NewFakeClient(`{"is_safe": true, "violation_type": "none", "reason": "medical question", "suggested_response": ""}`)
	a := NewSafetyAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "I have a headache"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, agents.SafetyAgentName, resp.AgentName)
	assert.Equal(t, "Safe", resp.ResultText)
	assert.Equal(t, 1.0, resp.Score)
	assert.Equal(t, true, resp.StructuredData["is_safe"])
}

func TestSafety_UnsafeMessage(t *testing.T) {
	fake := llmtest.NewFakeClient(`{"is_safe": false, "violation_type": "self_harm", "reason": "self harm intent", "suggested_response": "Please reach out to a crisis line."}`)
	a := NewSafetyAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "unsafe content"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "Please reach out to a crisis line.", resp.ResultText)
	assert.Equal(t, 0.0, resp.Score)
	assert.Equal(t, "self_harm", resp.StructuredData["violation_type"])
}

func TestSafety_FailsClosedOnMalformedOutput(t *testing.T) {
	fake := llmtest.NewFakeClient("I think it's probably fine?")
	a := NewSafetyAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "hello"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "error", resp.StructuredData["violation_type"])
	assert.Equal(t, "I cannot process this request at the moment.", resp.ResultText)
}

func TestSafety_FailsClosedOnCapabilityError(t *testing.T) {
	fake := llmtest.NewFakeClient("")
	fake.FailAll(fmt.Errorf("provider down"))
	a := NewSafetyAgent(fake, nil)

	resp, err := a.Handle(context.Background(), &agents.Request{Message: "hello"})
	require.NoError(t, err, "capability failure must not escape the agent boundary")
	assert.False(t, resp.OK)
	assert.Equal(t, "Safety check failed. Cannot proceed.", resp.ResultText)
}
