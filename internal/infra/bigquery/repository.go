// Package bigquery is the storage layer. Normalized records land here via
// the ingestion service; this package reads them and persists the outputs
// of insights runs (persona assignments and decision traces).
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Repository holds a shared BigQuery client to avoid creating a new
// connection for each operation. It serves as the record source, consent
// provider and trace store for the insights pipeline.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewRepository creates a Repository with a shared BigQuery client.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// FetchRecords loads the user's transactions, accounts and liabilities.
func (r *Repository) FetchRecords(ctx context.Context, userID string) (domain.RecordSet, error) {
	txs, err := FetchTransactionsWithClient(ctx, r.client, r.projectID, r.datasetID, userID)
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("FetchRecords: %w", err)
	}
	accounts, err := FetchAccountsWithClient(ctx, r.client, r.projectID, r.datasetID, userID)
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("FetchRecords: %w", err)
	}
	liabilities, err := FetchLiabilitiesWithClient(ctx, r.client, r.projectID, r.datasetID, userID)
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("FetchRecords: %w", err)
	}
	return domain.RecordSet{
		UserID:       userID,
		Transactions: txs,
		Accounts:     accounts,
		Liabilities:  liabilities,
	}, nil
}

// FetchProfile loads the user's eligibility profile.
func (r *Repository) FetchProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	return FetchProfileWithClient(ctx, r.client, r.projectID, r.datasetID, userID)
}

// HasConsent reads the user's current consent state. Callers re-read this
// at review time rather than caching it for the run.
func (r *Repository) HasConsent(ctx context.Context, userID string) (bool, error) {
	return FetchConsentWithClient(ctx, r.client, r.projectID, r.datasetID, userID)
}

// SaveAssignment appends a persona assignment to the append-only history.
func (r *Repository) SaveAssignment(ctx context.Context, a domain.PersonaAssignment) error {
	return InsertPersonaAssignmentWithClient(ctx, r.client, r.projectID, r.datasetID, a)
}

// SaveTrace writes an immutable decision trace.
func (r *Repository) SaveTrace(ctx context.Context, t *domain.DecisionTrace) error {
	return InsertDecisionTraceWithClient(ctx, r.client, r.projectID, r.datasetID, t)
}

// GetTrace retrieves one trace by ID. Returns nil if not found.
func (r *Repository) GetTrace(ctx context.Context, traceID string) (*domain.DecisionTrace, error) {
	return GetDecisionTraceWithClient(ctx, r.client, r.projectID, r.datasetID, traceID)
}

// ListTracesByUser retrieves a user's traces, newest first.
func (r *Repository) ListTracesByUser(ctx context.Context, userID string, limit int) ([]*domain.DecisionTrace, error) {
	return ListTracesByUserWithClient(ctx, r.client, r.projectID, r.datasetID, userID, limit)
}

// ListAssignmentsByUser retrieves a user's persona history, newest first.
func (r *Repository) ListAssignmentsByUser(ctx context.Context, userID string, limit int) ([]domain.PersonaAssignment, error) {
	return ListAssignmentsByUserWithClient(ctx, r.client, r.projectID, r.datasetID, userID, limit)
}
