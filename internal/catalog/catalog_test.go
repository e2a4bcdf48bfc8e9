package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/finance-insights/internal/domain"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	payload := `{
		"items": [
			{"id": "edu-1", "type": "EDUCATION", "title": "Paying down balances", "body": "...", "personas": [1]},
			{"id": "edu-2", "type": "EDUCATION", "title": "Subscription audits", "body": "...", "personas": [3]},
			{"id": "offer-1", "type": "PARTNER_OFFER", "title": "Balance transfer card", "body": "...", "personas": [1],
			 "product_category": "credit_card", "eligibility": {"min_income": 25000, "min_credit_score": 640}}
		]
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cat.Len() != 3 {
		t.Errorf("Len() = %d, want 3", cat.Len())
	}

	edu := cat.ForPersona(domain.PersonaHighUtilization, domain.CandidateEducation)
	if len(edu) != 1 || edu[0].ID != "edu-1" {
		t.Errorf("education for persona 1 = %+v, want [edu-1]", edu)
	}

	offers := cat.ForPersona(domain.PersonaHighUtilization, domain.CandidatePartnerOffer)
	if len(offers) != 1 || offers[0].Eligibility.MinCreditScore != 640 {
		t.Errorf("offers for persona 1 = %+v", offers)
	}

	if got := cat.ForPersona(domain.PersonaSavingsBuilder, domain.CandidateEducation); len(got) != 0 {
		t.Errorf("expected no items for persona 4, got %d", len(got))
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParse_EmptyCatalog(t *testing.T) {
	if _, err := parse([]byte(`{"items": []}`)); err == nil {
		t.Error("expected error for empty catalog")
	}
}
