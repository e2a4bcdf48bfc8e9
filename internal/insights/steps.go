package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/guardrails"
	"github.com/dvloznov/finance-insights/internal/persona"
	"github.com/dvloznov/finance-insights/internal/recommend"
	"github.com/dvloznov/finance-insights/internal/signals"
	"github.com/dvloznov/finance-insights/internal/trace"
)

// Step represents a single step in the insights pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State holds the shared state across all pipeline steps.
type State struct {
	UserID    string
	StartedAt time.Time

	Records    domain.RecordSet
	Profile    domain.UserProfile
	Signals    *domain.SignalSet
	Assignment domain.PersonaAssignment
	Candidates []domain.RecommendationCandidate
	Reviewed   []domain.ReviewedCandidate
	Trace      *domain.DecisionTrace
}

// Step 1: LoadRecordsStep fetches the user's records and profile.
type LoadRecordsStep struct {
	source RecordSource
}

func (s *LoadRecordsStep) Execute(ctx context.Context, state *State) error {
	records, err := s.source.FetchRecords(ctx, state.UserID)
	if err != nil {
		return fmt.Errorf("LoadRecordsStep: fetching records: %w", err)
	}
	profile, err := s.source.FetchProfile(ctx, state.UserID)
	if err != nil {
		return fmt.Errorf("LoadRecordsStep: fetching profile: %w", err)
	}
	state.Records = records
	state.Profile = profile
	return nil
}

// Step 2: ExtractSignalsStep derives window signals, going through the cache
// when one is configured.
type ExtractSignalsStep struct {
	extractor *signals.Extractor
	cache     SignalCache // nil disables caching
}

func (s *ExtractSignalsStep) Execute(ctx context.Context, state *State) error {
	set := &domain.SignalSet{
		UserID:  state.UserID,
		Windows: make(map[domain.Window]*domain.WindowSignals, 2),
	}
	for _, w := range []domain.Window{domain.Window30, domain.Window180} {
		window := w
		compute := func(context.Context) (*domain.WindowSignals, error) {
			return s.extractor.Extract(state.Records, window, state.StartedAt), nil
		}
		var (
			sig *domain.WindowSignals
			err error
		)
		if s.cache != nil {
			sig, err = s.cache.GetOrCompute(ctx, state.UserID, window, compute)
		} else {
			sig, err = compute(ctx)
		}
		if err != nil {
			return fmt.Errorf("ExtractSignalsStep: window %dd: %w", window, err)
		}
		set.Windows[window] = sig
	}
	state.Signals = set
	return nil
}

// Step 3: ClassifyPersonaStep assigns the user a persona from the signals.
type ClassifyPersonaStep struct {
	classifier *persona.Classifier
}

func (s *ClassifyPersonaStep) Execute(ctx context.Context, state *State) error {
	state.Assignment = s.classifier.Classify(state.UserID, state.Signals, state.StartedAt)
	return nil
}

// Step 4: SelectRecommendationsStep picks catalog candidates for the persona.
type SelectRecommendationsStep struct {
	selector *recommend.Selector
}

func (s *SelectRecommendationsStep) Execute(ctx context.Context, state *State) error {
	state.Candidates = s.selector.Select(state.Assignment, state.Signals)
	return nil
}

// Step 5: EnrichContentStep rewrites candidate bodies with persona framing.
// Enrichment failures keep the original body; they never fail the run.
type EnrichContentStep struct {
	enricher ContentEnricher // nil disables enrichment
	log      zerolog.Logger
}

func (s *EnrichContentStep) Execute(ctx context.Context, state *State) error {
	if s.enricher == nil {
		return nil
	}
	for i := range state.Candidates {
		c := &state.Candidates[i]
		body, err := s.enricher.EnrichBody(ctx, state.Assignment.PersonaName, c.Title, c.Body)
		if err != nil {
			s.log.Warn().Err(err).
				Str("user_id", state.UserID).
				Str("candidate_id", c.CandidateID).
				Msg("Content enrichment failed; keeping original body")
			continue
		}
		c.Body = body
	}
	return nil
}

// Step 6: ApplyGuardrailsStep reviews every candidate. Consent is re-read
// inside the guardrail pipeline at this point, not earlier in the run.
type ApplyGuardrailsStep struct {
	guards *guardrails.Pipeline
}

func (s *ApplyGuardrailsStep) Execute(ctx context.Context, state *State) error {
	elig := guardrails.EligibilityContext{
		Income:           state.Profile.AnnualIncome,
		CreditScore:      state.Profile.CreditScore,
		ExistingProducts: state.Profile.HeldProducts,
	}
	state.Reviewed = s.guards.Review(ctx, state.UserID, state.Candidates, elig)
	return nil
}

// Step 7: BuildTraceStep snapshots the run into an immutable decision trace.
type BuildTraceStep struct {
	builder *trace.Builder
	now     func() time.Time
}

func (s *BuildTraceStep) Execute(ctx context.Context, state *State) error {
	state.Trace = s.builder.Build(state.UserID, state.Signals, state.Assignment, state.Reviewed, state.StartedAt, s.now())
	return nil
}

// Step 8: PersistStep writes the assignment and trace to storage.
type PersistStep struct {
	store TraceStore // nil disables persistence
}

func (s *PersistStep) Execute(ctx context.Context, state *State) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveAssignment(ctx, state.Assignment); err != nil {
		return fmt.Errorf("PersistStep: saving assignment: %w", err)
	}
	if err := s.store.SaveTrace(ctx, state.Trace); err != nil {
		return fmt.Errorf("PersistStep: saving trace: %w", err)
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
