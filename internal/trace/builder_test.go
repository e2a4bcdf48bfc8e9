package trace

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func fixtureRun() (*domain.SignalSet, domain.PersonaAssignment, []domain.ReviewedCandidate) {
	signals := &domain.SignalSet{
		UserID: "u1",
		Windows: map[domain.Window]*domain.WindowSignals{
			domain.Window30: {
				Window: domain.Window30,
				Credit: domain.CreditSignals{
					Cards: []domain.CardUtilization{{AccountID: "card-1", UtilizationPct: ptr(68), Above30: true, Above50: true}},
				},
			},
		},
	}
	assignment := domain.PersonaAssignment{
		AssignmentID:    "a1",
		UserID:          "u1",
		PersonaID:       domain.PersonaHighUtilization,
		PersonaName:     "High Utilization",
		MatchedCriteria: []string{"card card-1 is at 68% utilization"},
		Rationale:       "Classified as High Utilization because card card-1 is at 68% utilization.",
		AssignedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	reviewed := []domain.ReviewedCandidate{
		{
			Candidate: domain.RecommendationCandidate{CandidateID: "c1", CatalogID: "edu-1", Type: domain.CandidateEducation},
			Result:    domain.GuardrailResult{CandidateID: "c1", ConsentPass: true, EligibilityPass: true, ToneScore: 8, DisclaimerPresent: true, Verdict: domain.VerdictApproved},
		},
		{
			Candidate: domain.RecommendationCandidate{CandidateID: "c2", CatalogID: "offer-1", Type: domain.CandidatePartnerOffer},
			Result:    domain.GuardrailResult{CandidateID: "c2", ConsentPass: true, Verdict: domain.VerdictBlocked, BlockReason: domain.BlockIncomeBelowMin, EligibilityReasons: []string{"income $0 below required $40000"}},
		},
	}
	return signals, assignment, reviewed
}

func TestBuild_SnapshotsInputs(t *testing.T) {
	b := NewBuilder()
	signals, assignment, reviewed := fixtureRun()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(750 * time.Millisecond)

	tr := b.Build("u1", signals, assignment, reviewed, start, end)

	if tr.TraceID == "" {
		t.Error("expected a trace ID")
	}
	if tr.Duration != 750*time.Millisecond {
		t.Errorf("duration = %v, want 750ms", tr.Duration)
	}
	if len(tr.Reviewed) != 2 {
		t.Fatalf("reviewed = %d, want 2", len(tr.Reviewed))
	}
	if tr.ApprovedCount() != 1 {
		t.Errorf("approved = %d, want 1", tr.ApprovedCount())
	}

	// Mutating the originals must not leak into the stored trace.
	*signals.Windows[domain.Window30].Credit.Cards[0].UtilizationPct = 99
	assignment.MatchedCriteria[0] = "tampered"
	reviewed[1].Result.EligibilityReasons[0] = "tampered"

	stored := tr.Signals.Windows[domain.Window30].Credit.Cards[0]
	if *stored.UtilizationPct != 68 {
		t.Errorf("trace utilization mutated to %v", *stored.UtilizationPct)
	}
	if tr.Assignment.MatchedCriteria[0] != "card card-1 is at 68% utilization" {
		t.Error("trace criteria mutated through shared slice")
	}
	if tr.Reviewed[1].Result.EligibilityReasons[0] == "tampered" {
		t.Error("trace eligibility reasons mutated through shared slice")
	}
}

func TestBuild_ContentIdempotent(t *testing.T) {
	b := NewBuilder()
	signals, assignment, reviewed := fixtureRun()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Second)

	first := b.Build("u1", signals, assignment, reviewed, start, end)
	second := b.Build("u1", signals, assignment, reviewed, start, end)

	// Trace IDs differ per run; everything else must serialize identically.
	first.TraceID = ""
	second.TraceID = ""

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	bjson, err := json.Marshal(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(bjson) {
		t.Error("trace content differs across identical runs")
	}
}
