// Package shared holds the execution metadata passed between the model
// clients, the planner and the metrics store.
package shared

import "time"

// TokenUsage is what the provider reported for one request.
type TokenUsage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Total prefers the provider's own total and falls back to the sum.
func (u TokenUsage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// Outcome classifies how a generation ended.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// AgentMeta describes one model execution. It never carries the prompt or
// the reply.
type AgentMeta struct {
	AgentName string
	Outcome   Outcome
	Usage     TokenUsage
	Latency   time.Duration
}
