package insights

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insights/internal/catalog"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/enrich"
	"github.com/dvloznov/finance-insights/internal/guardrails"
	"github.com/dvloznov/finance-insights/internal/signals"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type mockSource struct {
	records domain.RecordSet
	profile domain.UserProfile
	recErr  error
	profErr error
}

func (m *mockSource) FetchRecords(_ context.Context, userID string) (domain.RecordSet, error) {
	if m.recErr != nil {
		return domain.RecordSet{}, m.recErr
	}
	return m.records, nil
}

func (m *mockSource) FetchProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	if m.profErr != nil {
		return domain.UserProfile{}, m.profErr
	}
	return m.profile, nil
}

type mockConsent struct {
	consent bool
	err     error
	calls   int
}

func (m *mockConsent) HasConsent(_ context.Context, _ string) (bool, error) {
	m.calls++
	return m.consent, m.err
}

type mockStore struct {
	assignments []domain.PersonaAssignment
	traces      []*domain.DecisionTrace
}

func (m *mockStore) SaveAssignment(_ context.Context, a domain.PersonaAssignment) error {
	m.assignments = append(m.assignments, a)
	return nil
}

func (m *mockStore) SaveTrace(_ context.Context, t *domain.DecisionTrace) error {
	m.traces = append(m.traces, t)
	return nil
}

type mockEnricher struct {
	err   error
	calls int
}

func (m *mockEnricher) EnrichBody(_ context.Context, personaName, title, body string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "For your " + personaName + " profile: " + body, nil
}

type countingCache struct {
	calls int
}

func (c *countingCache) GetOrCompute(ctx context.Context, userID string, window domain.Window, compute func(context.Context) (*domain.WindowSignals, error)) (*domain.WindowSignals, error) {
	c.calls++
	return compute(ctx)
}

// highUtilizationRecords builds a record set whose credit card sits at 68%
// utilization, which classifies as the high utilization persona.
func highUtilizationRecords() domain.RecordSet {
	limit := 1000.0
	return domain.RecordSet{
		UserID: "user-1",
		Accounts: []domain.Account{
			{AccountID: "card-1", Type: domain.AccountTypeCredit, Balance: -680, CreditLimit: &limit},
			{AccountID: "chk-1", Type: domain.AccountTypeChecking, Balance: 2400},
		},
		Transactions: []domain.Transaction{
			{AccountID: "chk-1", Date: testNow.AddDate(0, 0, -10), Amount: -120, MerchantID: "m-grocer", MerchantName: "Grocer", Category: "GROCERIES", Channel: domain.ChannelCard},
			{AccountID: "chk-1", Date: testNow.AddDate(0, 0, -20), Amount: -95, MerchantID: "m-grocer", MerchantName: "Grocer", Category: "GROCERIES", Channel: domain.ChannelCard},
		},
	}
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Item{
		{ID: "edu-apr", Type: domain.CandidateEducation, Title: "Understanding APR", Body: "How interest accrues on revolving balances.", Personas: []domain.PersonaID{domain.PersonaHighUtilization}},
		{ID: "edu-snowball", Type: domain.CandidateEducation, Title: "Paying Down Balances", Body: "Two common approaches to paying down cards.", Personas: []domain.PersonaID{domain.PersonaHighUtilization}},
		{ID: "edu-util", Type: domain.CandidateEducation, Title: "Credit Utilization", Body: "Why utilization affects your credit score.", Personas: []domain.PersonaID{domain.PersonaHighUtilization}},
		{ID: "offer-balance", Type: domain.CandidatePartnerOffer, Title: "Balance Transfer Card", Body: "Move a balance to a lower rate.", Personas: []domain.PersonaID{domain.PersonaHighUtilization}, ProductCategory: "balance_transfer", Eligibility: catalog.Eligibility{MinIncome: 30000, MinCreditScore: 600}},
		{ID: "offer-strict", Type: domain.CandidatePartnerOffer, Title: "Premium Loan", Body: "A consolidation loan for larger balances.", Personas: []domain.PersonaID{domain.PersonaHighUtilization}, ProductCategory: "personal_loan", Eligibility: catalog.Eligibility{MinIncome: 90000}},
		{ID: "offer-payday", Type: domain.CandidatePartnerOffer, Title: "Fast Cash Advance", Body: "Same day cash.", Personas: []domain.PersonaID{domain.PersonaHighUtilization}, ProductCategory: "payday_loan"},
	})
}

func newTestService(src *mockSource, consent *mockConsent, store *mockStore, enricher ContentEnricher, cache SignalCache) *Service {
	svc := NewService(Deps{
		Source:     src,
		Cache:      cache,
		Catalog:    testCatalog(),
		Consent:    consent,
		Enricher:   enricher,
		Store:      store,
		Blocklist:  []string{"payday_loan"},
		Thresholds: signals.DefaultThresholds(),
		Log:        zerolog.Nop(),
	})
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestGenerateInsights_EndToEnd(t *testing.T) {
	src := &mockSource{
		records: highUtilizationRecords(),
		profile: domain.UserProfile{UserID: "user-1", AnnualIncome: 50000, CreditScore: 700},
	}
	consent := &mockConsent{consent: true}
	store := &mockStore{}
	svc := newTestService(src, consent, store, nil, nil)

	tr, err := svc.GenerateInsights(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}

	if tr.UserID != "user-1" {
		t.Errorf("trace UserID = %q, want user-1", tr.UserID)
	}
	if tr.Assignment.PersonaID != domain.PersonaHighUtilization {
		t.Fatalf("persona = %v, want high utilization", tr.Assignment.PersonaID)
	}
	if consent.calls != 1 {
		t.Errorf("consent read %d times, want 1", consent.calls)
	}

	// 3 education items plus 3 partner offers survive selection.
	if len(tr.Reviewed) != 6 {
		t.Fatalf("reviewed %d candidates, want 6", len(tr.Reviewed))
	}

	byCatalogID := map[string]domain.ReviewedCandidate{}
	for _, rc := range tr.Reviewed {
		byCatalogID[rc.Candidate.CatalogID] = rc
	}

	if rc := byCatalogID["offer-payday"]; rc.Result.Verdict != domain.VerdictBlocked || rc.Result.BlockReason != domain.BlockHarmfulCategory {
		t.Errorf("payday offer verdict = %v/%v, want blocked/blocklisted_category", rc.Result.Verdict, rc.Result.BlockReason)
	}
	if rc := byCatalogID["offer-strict"]; rc.Result.Verdict != domain.VerdictBlocked || rc.Result.BlockReason != domain.BlockIncomeBelowMin {
		t.Errorf("strict offer verdict = %v/%v, want blocked/income_below_minimum", rc.Result.Verdict, rc.Result.BlockReason)
	}
	if rc := byCatalogID["offer-balance"]; rc.Result.Verdict != domain.VerdictApproved {
		t.Errorf("balance offer verdict = %v (%v), want approved", rc.Result.Verdict, rc.Result.BlockReason)
	}

	for _, rc := range tr.Reviewed {
		if rc.Result.Verdict == domain.VerdictApproved && !strings.Contains(rc.Candidate.Body, guardrails.Disclaimer) {
			t.Errorf("approved candidate %s missing disclaimer", rc.Candidate.CatalogID)
		}
	}

	if len(store.assignments) != 1 || len(store.traces) != 1 {
		t.Fatalf("store got %d assignments and %d traces, want 1 and 1", len(store.assignments), len(store.traces))
	}
	if store.traces[0].TraceID != tr.TraceID {
		t.Error("stored trace is not the returned trace")
	}
}

func TestGenerateInsights_ConsentMissingBlocksAll(t *testing.T) {
	src := &mockSource{
		records: highUtilizationRecords(),
		profile: domain.UserProfile{UserID: "user-1", AnnualIncome: 50000, CreditScore: 700},
	}
	svc := newTestService(src, &mockConsent{consent: false}, &mockStore{}, nil, nil)

	tr, err := svc.GenerateInsights(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(tr.Reviewed) == 0 {
		t.Fatal("expected reviewed candidates in trace")
	}
	for _, rc := range tr.Reviewed {
		if rc.Result.Verdict != domain.VerdictBlocked || rc.Result.BlockReason != domain.BlockConsentMissing {
			t.Errorf("candidate %s verdict = %v/%v, want blocked/consent_missing", rc.Candidate.CatalogID, rc.Result.Verdict, rc.Result.BlockReason)
		}
	}
	if tr.ApprovedCount() != 0 {
		t.Errorf("approved count = %d, want 0", tr.ApprovedCount())
	}
}

func TestGenerateInsights_SourceErrorAborts(t *testing.T) {
	src := &mockSource{recErr: errors.New("ingestion unavailable")}
	store := &mockStore{}
	svc := newTestService(src, &mockConsent{consent: true}, store, nil, nil)

	if _, err := svc.GenerateInsights(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error when record fetch fails")
	}
	if len(store.traces) != 0 {
		t.Error("no trace should be stored on an aborted run")
	}
}

func TestGenerateInsights_EnricherFailureKeepsBody(t *testing.T) {
	src := &mockSource{
		records: highUtilizationRecords(),
		profile: domain.UserProfile{UserID: "user-1", AnnualIncome: 50000, CreditScore: 700},
	}
	enricher := &mockEnricher{err: errors.New("model timeout")}
	svc := newTestService(src, &mockConsent{consent: true}, &mockStore{}, enricher, nil)

	tr, err := svc.GenerateInsights(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if enricher.calls == 0 {
		t.Fatal("enricher was never called")
	}
	for _, rc := range tr.Reviewed {
		if strings.Contains(rc.Candidate.Body, "For your") {
			t.Errorf("candidate %s body was enriched despite enricher failure", rc.Candidate.CatalogID)
		}
	}
}

func TestGenerateInsights_EnrichmentApplied(t *testing.T) {
	src := &mockSource{
		records: highUtilizationRecords(),
		profile: domain.UserProfile{UserID: "user-1", AnnualIncome: 50000, CreditScore: 700},
	}
	enricher := &mockEnricher{}
	svc := newTestService(src, &mockConsent{consent: true}, &mockStore{}, enricher, nil)

	tr, err := svc.GenerateInsights(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	for _, rc := range tr.Reviewed {
		if !strings.HasPrefix(rc.Candidate.Body, "For your High Utilization profile:") {
			t.Errorf("candidate %s body not enriched: %q", rc.Candidate.CatalogID, rc.Candidate.Body)
		}
	}
}

func TestGenerateInsights_TemplateEnricherApplied(t *testing.T) {
	src := &mockSource{
		records: highUtilizationRecords(),
		profile: domain.UserProfile{UserID: "user-1", AnnualIncome: 50000, CreditScore: 700},
	}
	svc := newTestService(src, &mockConsent{consent: true}, &mockStore{}, enrich.NewTemplate(), nil)

	tr, err := svc.GenerateInsights(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	for _, rc := range tr.Reviewed {
		if !strings.HasPrefix(rc.Candidate.Body, "Based on your High Utilization profile:") {
			t.Errorf("candidate %s body not framed by the template enricher: %q", rc.Candidate.CatalogID, rc.Candidate.Body)
		}
	}
}

func TestGenerateInsights_UsesCachePerWindow(t *testing.T) {
	src := &mockSource{
		records: highUtilizationRecords(),
		profile: domain.UserProfile{UserID: "user-1", AnnualIncome: 50000, CreditScore: 700},
	}
	cache := &countingCache{}
	svc := newTestService(src, &mockConsent{consent: true}, &mockStore{}, nil, cache)

	if _, err := svc.GenerateInsights(context.Background(), "user-1"); err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if cache.calls != 2 {
		t.Errorf("cache consulted %d times, want 2 (one per window)", cache.calls)
	}
}

// normalizeTrace blanks the per-run identifiers and timestamps so two runs
// over the same records can be compared for content equality.
func normalizeTrace(tr *domain.DecisionTrace) *domain.DecisionTrace {
	cp := *tr
	cp.TraceID = ""
	cp.GeneratedAt = time.Time{}
	cp.Assignment.AssignmentID = ""
	cp.Assignment.AssignedAt = time.Time{}
	cp.Reviewed = append([]domain.ReviewedCandidate(nil), tr.Reviewed...)
	for i := range cp.Reviewed {
		cp.Reviewed[i].Candidate.CandidateID = ""
		cp.Reviewed[i].Result.CandidateID = ""
	}
	return &cp
}

func TestGenerateInsights_ContentIdempotent(t *testing.T) {
	newSvc := func() *Service {
		src := &mockSource{
			records: highUtilizationRecords(),
			profile: domain.UserProfile{UserID: "user-1", AnnualIncome: 50000, CreditScore: 700},
		}
		return newTestService(src, &mockConsent{consent: true}, &mockStore{}, nil, nil)
	}

	first, err := newSvc().GenerateInsights(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := newSvc().GenerateInsights(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.TraceID == second.TraceID {
		t.Error("trace IDs should be unique per run")
	}
	if !reflect.DeepEqual(normalizeTrace(first), normalizeTrace(second)) {
		t.Error("two runs over identical records should produce identical trace content")
	}
}
