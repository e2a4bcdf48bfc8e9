package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// InsertDecisionTraceWithClient appends one decision trace using the
// provided BigQuery client. Traces are never updated after insert.
func InsertDecisionTraceWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, t *domain.DecisionTrace) error {
	row, err := traceToRow(t)
	if err != nil {
		return fmt.Errorf("InsertDecisionTraceWithClient: %w", err)
	}

	inserter := client.DatasetInProject(projectID, datasetID).Table("decision_traces").Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertDecisionTraceWithClient: inserting row: %w", err)
	}
	return nil
}

// GetDecisionTraceWithClient retrieves one trace by ID using the provided
// BigQuery client. Returns nil if no trace with that ID exists.
func GetDecisionTraceWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, traceID string) (*domain.DecisionTrace, error) {
	query := fmt.Sprintf(`
		SELECT
			trace_id,
			user_id,
			generated_ts,
			persona_id,
			persona_name,
			candidate_count,
			approved_count,
			duration_ms,
			payload
		FROM `+"`%s.%s.decision_traces`"+`
		WHERE trace_id = @trace_id
		LIMIT 1
	`, projectID, datasetID)

	q := client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "trace_id", Value: traceID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetDecisionTraceWithClient: reading query: %w", err)
	}

	var row DecisionTraceRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetDecisionTraceWithClient: iterating: %w", err)
	}

	return row.toDomain()
}

// ListTracesByUserWithClient retrieves a user's traces, newest first, using
// the provided BigQuery client.
func ListTracesByUserWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, userID string, limit int) ([]*domain.DecisionTrace, error) {
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT
			trace_id,
			user_id,
			generated_ts,
			persona_id,
			persona_name,
			candidate_count,
			approved_count,
			duration_ms,
			payload
		FROM `+"`%s.%s.decision_traces`"+`
		WHERE user_id = @user_id
		ORDER BY generated_ts DESC
		LIMIT @limit
	`, projectID, datasetID)

	q := client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTracesByUserWithClient: reading query: %w", err)
	}

	var traces []*domain.DecisionTrace
	for {
		var row DecisionTraceRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTracesByUserWithClient: iterating: %w", err)
		}
		t, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("ListTracesByUserWithClient: %w", err)
		}
		traces = append(traces, t)
	}

	return traces, nil
}
