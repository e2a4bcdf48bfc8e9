package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// FetchTransactionsWithClient retrieves a user's non-deleted transactions,
// oldest first, using the provided BigQuery client.
func FetchTransactionsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, userID string) ([]domain.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT
			transaction_id,
			user_id,
			account_id,
			transaction_date,
			amount,
			currency,
			merchant_id,
			merchant_name,
			category_name,
			is_pending,
			channel,
			created_ts
		FROM `+"`%s.%s.transactions`"+`
		WHERE user_id = @user_id
		ORDER BY transaction_date ASC
	`, projectID, datasetID)

	q := client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchTransactionsWithClient: reading query: %w", err)
	}

	var txs []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("FetchTransactionsWithClient: iterating: %w", err)
		}
		txs = append(txs, row.toDomain())
	}

	return txs, nil
}

// FetchAccountsWithClient retrieves a user's account snapshots using the
// provided BigQuery client.
func FetchAccountsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, userID string) ([]domain.Account, error) {
	query := fmt.Sprintf(`
		SELECT
			account_id,
			user_id,
			account_type,
			subtype,
			balance,
			credit_limit,
			created_ts,
			updated_ts
		FROM `+"`%s.%s.accounts`"+`
		WHERE user_id = @user_id
		ORDER BY account_id ASC
	`, projectID, datasetID)

	q := client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchAccountsWithClient: reading query: %w", err)
	}

	var accounts []domain.Account
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("FetchAccountsWithClient: iterating: %w", err)
		}
		accounts = append(accounts, row.toDomain())
	}

	return accounts, nil
}

// FetchLiabilitiesWithClient retrieves the liability detail for a user's
// credit accounts using the provided BigQuery client.
func FetchLiabilitiesWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, userID string) ([]domain.Liability, error) {
	query := fmt.Sprintf(`
		SELECT
			account_id,
			user_id,
			apr,
			minimum_payment,
			last_payment,
			recent_payments,
			is_overdue,
			next_due_date
		FROM `+"`%s.%s.liabilities`"+`
		WHERE user_id = @user_id
		ORDER BY account_id ASC
	`, projectID, datasetID)

	q := client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchLiabilitiesWithClient: reading query: %w", err)
	}

	var liabilities []domain.Liability
	for {
		var row LiabilityRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("FetchLiabilitiesWithClient: iterating: %w", err)
		}
		liabilities = append(liabilities, row.toDomain())
	}

	return liabilities, nil
}

// FetchProfileWithClient retrieves a user's profile row using the provided
// BigQuery client. A user with no profile row gets a zero-value profile;
// eligibility checks then reject offers with minimums.
func FetchProfileWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, userID string) (domain.UserProfile, error) {
	query := fmt.Sprintf(`
		SELECT
			user_id,
			annual_income,
			credit_score,
			held_products,
			updated_ts
		FROM `+"`%s.%s.user_profiles`"+`
		WHERE user_id = @user_id
		ORDER BY updated_ts DESC
		LIMIT 1
	`, projectID, datasetID)

	q := client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("FetchProfileWithClient: reading query: %w", err)
	}

	var row ProfileRow
	err = it.Next(&row)
	if err == iterator.Done {
		return domain.UserProfile{UserID: userID}, nil
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("FetchProfileWithClient: iterating: %w", err)
	}

	return row.toDomain(), nil
}
