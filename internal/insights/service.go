// Package insights composes the full behavioral insights run: records in,
// decision trace out. Each run extracts signals, classifies a persona,
// selects and optionally enriches recommendations, reviews them through the
// guardrail pipeline, and records an immutable trace of the decision.
package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insights/internal/catalog"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/guardrails"
	"github.com/dvloznov/finance-insights/internal/persona"
	"github.com/dvloznov/finance-insights/internal/recommend"
	"github.com/dvloznov/finance-insights/internal/signals"
	"github.com/dvloznov/finance-insights/internal/trace"
)

// Deps bundles the collaborators a Service needs. Source, Catalog and
// Consent are required; Cache, Enricher, Tone and Store may be nil.
type Deps struct {
	Source     RecordSource
	Cache      SignalCache
	Catalog    *catalog.Catalog
	Consent    guardrails.ConsentProvider
	Tone       guardrails.ToneScorer
	Enricher   ContentEnricher
	Store      TraceStore
	Blocklist  []string
	Thresholds signals.Thresholds
	Log        zerolog.Logger
}

// Service runs the insights pipeline for one user at a time. A Service is
// safe for concurrent use; concurrent runs for the same user share signal
// extraction through the cache.
type Service struct {
	deps       Deps
	extractor  *signals.Extractor
	classifier *persona.Classifier
	selector   *recommend.Selector
	guards     *guardrails.Pipeline
	builder    *trace.Builder
	now        func() time.Time
}

// NewService wires the pipeline components around the given collaborators.
func NewService(deps Deps) *Service {
	return &Service{
		deps:       deps,
		extractor:  signals.NewExtractor(deps.Thresholds),
		classifier: persona.NewClassifier(),
		selector:   recommend.NewSelector(deps.Catalog),
		guards:     guardrails.NewPipeline(deps.Consent, deps.Tone, deps.Catalog, deps.Blocklist, deps.Log),
		builder:    trace.NewBuilder(),
		now:        time.Now,
	}
}

// GenerateInsights executes one full run for the user and returns the
// decision trace. Candidates blocked by guardrails stay in the trace with
// their block reasons; only infrastructure failures return an error.
func (s *Service) GenerateInsights(ctx context.Context, userID string) (*domain.DecisionTrace, error) {
	state := &State{
		UserID:    userID,
		StartedAt: s.now(),
	}

	pipeline := NewPipeline(
		&LoadRecordsStep{source: s.deps.Source},
		&ExtractSignalsStep{extractor: s.extractor, cache: s.deps.Cache},
		&ClassifyPersonaStep{classifier: s.classifier},
		&SelectRecommendationsStep{selector: s.selector},
		&EnrichContentStep{enricher: s.deps.Enricher, log: s.deps.Log},
		&ApplyGuardrailsStep{guards: s.guards},
		&BuildTraceStep{builder: s.builder, now: s.now},
		&PersistStep{store: s.deps.Store},
	)

	if err := pipeline.Execute(ctx, state); err != nil {
		s.deps.Log.Error().Err(err).Str("user_id", userID).Msg("Insights run failed")
		return nil, fmt.Errorf("GenerateInsights: %w", err)
	}

	s.deps.Log.Info().
		Str("user_id", userID).
		Str("trace_id", state.Trace.TraceID).
		Str("persona", state.Assignment.PersonaName).
		Int("candidates", len(state.Candidates)).
		Int("approved", state.Trace.ApprovedCount()).
		Dur("duration", state.Trace.Duration).
		Msg("Insights run complete")

	return state.Trace, nil
}
