package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// ConsentRow is one row of the user_consents table. The latest row per user
// wins; revoking consent inserts a new row with granted=false.
type ConsentRow struct {
	UserID     string    `bigquery:"user_id"`     // REQUIRED
	Granted    bool      `bigquery:"granted"`     // REQUIRED
	RecordedTS time.Time `bigquery:"recorded_ts"` // REQUIRED
}

// FetchConsentWithClient reads the user's latest consent state using the
// provided BigQuery client. A user with no consent row has not consented.
func FetchConsentWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, userID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT
			user_id,
			granted,
			recorded_ts
		FROM `+"`%s.%s.user_consents`"+`
		WHERE user_id = @user_id
		ORDER BY recorded_ts DESC
		LIMIT 1
	`, projectID, datasetID)

	q := client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("FetchConsentWithClient: reading query: %w", err)
	}

	var row ConsentRow
	err = it.Next(&row)
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("FetchConsentWithClient: iterating: %w", err)
	}

	return row.Granted, nil
}
