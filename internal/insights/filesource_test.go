package insights

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const fixtureJSON = `{
  "records": {
    "user_id": "user-1",
    "transactions": [
      {"account_id": "chk-1", "date": "2025-05-20T00:00:00Z", "amount": -12.99, "merchant_id": "m-stream", "merchant_name": "Streamly", "category": "ENTERTAINMENT", "channel": "CARD"}
    ],
    "accounts": [
      {"account_id": "chk-1", "type": "CHECKING", "balance": 1500}
    ]
  },
  "profile": {"user_id": "user-1", "annual_income": 48000, "credit_score": 690},
  "consent": true
}`

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(fixtureJSON), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}

	records, err := src.FetchRecords(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if len(records.Transactions) != 1 || len(records.Accounts) != 1 {
		t.Errorf("got %d transactions and %d accounts, want 1 and 1", len(records.Transactions), len(records.Accounts))
	}

	if _, err := src.FetchRecords(context.Background(), "other-user"); err == nil {
		t.Error("expected error for mismatched user")
	}

	profile, err := src.FetchProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if profile.AnnualIncome != 48000 {
		t.Errorf("annual income = %v, want 48000", profile.AnnualIncome)
	}

	consent, err := src.HasConsent(context.Background(), "user-1")
	if err != nil || !consent {
		t.Errorf("HasConsent = %v, %v; want true, nil", consent, err)
	}
}

func TestNewFileSource_MissingFile(t *testing.T) {
	if _, err := NewFileSource("/does/not/exist.json"); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}
