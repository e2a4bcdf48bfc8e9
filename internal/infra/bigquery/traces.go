package bigquery

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// DecisionTraceRow is one row of the decision_traces table. The full trace
// is stored as a JSON payload next to a few queryable columns; traces are
// immutable once written.
type DecisionTraceRow struct {
	TraceID      string    `bigquery:"trace_id"`        // REQUIRED
	UserID       string    `bigquery:"user_id"`         // REQUIRED
	GeneratedTS  time.Time `bigquery:"generated_ts"`    // REQUIRED
	PersonaID    int64     `bigquery:"persona_id"`      // REQUIRED
	PersonaName  string    `bigquery:"persona_name"`    // REQUIRED
	CandidateCnt int64     `bigquery:"candidate_count"` // REQUIRED
	ApprovedCnt  int64     `bigquery:"approved_count"`  // REQUIRED
	DurationMs   int64     `bigquery:"duration_ms"`     // REQUIRED
	Payload      string    `bigquery:"payload"`         // REQUIRED, full trace JSON
}

func traceToRow(t *domain.DecisionTrace) (*DecisionTraceRow, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("traceToRow: marshaling trace %s: %w", t.TraceID, err)
	}
	return &DecisionTraceRow{
		TraceID:      t.TraceID,
		UserID:       t.UserID,
		GeneratedTS:  t.GeneratedAt,
		PersonaID:    int64(t.Assignment.PersonaID),
		PersonaName:  t.Assignment.PersonaName,
		CandidateCnt: int64(len(t.Reviewed)),
		ApprovedCnt:  int64(t.ApprovedCount()),
		DurationMs:   t.Duration.Milliseconds(),
		Payload:      string(payload),
	}, nil
}

func (r *DecisionTraceRow) toDomain() (*domain.DecisionTrace, error) {
	var t domain.DecisionTrace
	if err := json.Unmarshal([]byte(r.Payload), &t); err != nil {
		return nil, fmt.Errorf("DecisionTraceRow: unmarshaling trace %s: %w", r.TraceID, err)
	}
	return &t, nil
}
