package domain

import (
	"time"
)

// DecisionTrace is the immutable audit record of one full generation run.
// It embeds snapshots, not references: the signals and assignment stored here
// are the values that were current when the run executed, regardless of what
// later runs compute.
type DecisionTrace struct {
	TraceID     string              `json:"trace_id"`
	UserID      string              `json:"user_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Signals     SignalSet           `json:"signals"`
	Assignment  PersonaAssignment   `json:"assignment"`
	Reviewed    []ReviewedCandidate `json:"reviewed"`
	Duration    time.Duration       `json:"duration"`
}

// ApprovedCount returns how many reviewed candidates passed all guardrails.
func (t *DecisionTrace) ApprovedCount() int {
	n := 0
	for _, rc := range t.Reviewed {
		if rc.Result.Verdict == VerdictApproved {
			n++
		}
	}
	return n
}
