package insights

import (
	"context"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// RecordSource fetches a user's normalized financial records and profile.
type RecordSource interface {
	FetchRecords(ctx context.Context, userID string) (domain.RecordSet, error)
	FetchProfile(ctx context.Context, userID string) (domain.UserProfile, error)
}

// SignalCache caches extracted window signals per (user, window). Concurrent
// requests for the same key share one computation.
type SignalCache interface {
	GetOrCompute(ctx context.Context, userID string, window domain.Window, compute func(context.Context) (*domain.WindowSignals, error)) (*domain.WindowSignals, error)
}

// ContentEnricher rewrites candidate bodies with persona-aware framing.
// Enrichment is best effort; an error leaves the original body in place.
type ContentEnricher interface {
	EnrichBody(ctx context.Context, personaName, title, body string) (string, error)
}

// TraceStore persists the outputs of a completed run.
type TraceStore interface {
	SaveAssignment(ctx context.Context, assignment domain.PersonaAssignment) error
	SaveTrace(ctx context.Context, trace *domain.DecisionTrace) error
}
