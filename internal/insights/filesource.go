package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// FileSource reads one user's records, profile and consent from a local JSON
// fixture. It backs the CLI's offline mode and local development without a
// BigQuery dataset.
type FileSource struct {
	fixture fileFixture
}

type fileFixture struct {
	Records domain.RecordSet   `json:"records"`
	Profile domain.UserProfile `json:"profile"`
	Consent bool               `json:"consent"`
}

// NewFileSource loads the fixture at path.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("NewFileSource: reading %s: %w", path, err)
	}
	var fx fileFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("NewFileSource: parsing %s: %w", path, err)
	}
	return &FileSource{fixture: fx}, nil
}

// FetchRecords returns the fixture's record set.
func (s *FileSource) FetchRecords(_ context.Context, userID string) (domain.RecordSet, error) {
	if s.fixture.Records.UserID != "" && s.fixture.Records.UserID != userID {
		return domain.RecordSet{}, fmt.Errorf("FetchRecords: fixture holds records for %s, not %s", s.fixture.Records.UserID, userID)
	}
	return s.fixture.Records, nil
}

// FetchProfile returns the fixture's profile.
func (s *FileSource) FetchProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	return s.fixture.Profile, nil
}

// HasConsent returns the fixture's consent flag.
func (s *FileSource) HasConsent(_ context.Context, userID string) (bool, error) {
	return s.fixture.Consent, nil
}
