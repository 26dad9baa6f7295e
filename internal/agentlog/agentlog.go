// Package agentlog emits structured observability events for agent runs.
// Logging is fire-and-forget; a nil logger is valid and drops everything,
// so an unavailable sink can never change an orchestration outcome.
package agentlog

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

const previewLen = 50

// Logger writes agent execution and routing events as structured JSON.
type Logger struct {
	log zerolog.Logger
}

// New creates a Logger writing to w at the given level.
func New(w io.Writer, level string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return &Logger{log: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}
}

// FromZerolog wraps an existing zerolog logger.
func FromZerolog(log zerolog.Logger) *Logger {
	return &Logger{log: log}
}

// LogAgentExecution records one agent invocation.
func (l *Logger) LogAgentExecution(agent, requestID string, duration time.Duration, success bool, metadata map[string]any) {
	if l == nil {
		return
	}
	l.log.Info().
		Str("event", "agent_execution").
		Str("agent", agent).
		Str("request_id", requestID).
		Float64("duration_ms", float64(duration.Microseconds())/1000).
		Bool("success", success).
		Fields(metadata).
		Send()
}

// LogRoutingDecision records which agents were selected for a request.
// Only a short preview of the user message is logged.
func (l *Logger) LogRoutingDecision(requestID, message string, selected []string, scores map[string]float64) {
	if l == nil {
		return
	}
	preview := message
	if len(preview) > previewLen {
		preview = preview[:previewLen]
	}
	ev := l.log.Info().
		Str("event", "routing_decision").
		Str("request_id", requestID).
		Str("message_preview", preview).
		Strs("selected_agents", selected)
	if len(scores) > 0 {
		fields := make(map[string]any, len(scores))
		for k, v := range scores {
			fields[k] = v
		}
		ev = ev.Dict("scores", zerolog.Dict().Fields(fields))
	}
	ev.Send()
}
