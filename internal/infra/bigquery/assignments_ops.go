package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// InsertPersonaAssignmentWithClient appends one persona assignment row using
// the provided BigQuery client. The table is append-only.
func InsertPersonaAssignmentWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, a domain.PersonaAssignment) error {
	inserter := client.DatasetInProject(projectID, datasetID).Table("persona_assignments").Inserter()

	if err := inserter.Put(ctx, assignmentToRow(a)); err != nil {
		return fmt.Errorf("InsertPersonaAssignmentWithClient: inserting row: %w", err)
	}
	return nil
}

// ListAssignmentsByUserWithClient retrieves a user's persona assignment
// history, newest first, using the provided BigQuery client.
func ListAssignmentsByUserWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, userID string, limit int) ([]domain.PersonaAssignment, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT
			assignment_id,
			user_id,
			persona_id,
			persona_name,
			matched_criteria,
			rationale,
			assigned_ts
		FROM `+"`%s.%s.persona_assignments`"+`
		WHERE user_id = @user_id
		ORDER BY assigned_ts DESC
		LIMIT @limit
	`, projectID, datasetID)

	q := client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAssignmentsByUserWithClient: reading query: %w", err)
	}

	var assignments []domain.PersonaAssignment
	for {
		var row PersonaAssignmentRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAssignmentsByUserWithClient: iterating: %w", err)
		}
		assignments = append(assignments, row.toDomain())
	}

	return assignments, nil
}
