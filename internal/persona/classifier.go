// Package persona assigns exactly one behavioral persona to a signal set.
// Classification walks an ordered rule list and stops at the first match, so
// adding or reordering personas is a data change, not a control-flow change.
package persona

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Rule pairs a persona with its match predicate. Evaluate returns the
// criteria that fired, each citing the observed value; an empty slice means
// no match.
type Rule struct {
	PersonaID domain.PersonaID
	Evaluate  func(s *domain.SignalSet) []string
}

// Classifier evaluates the rule chain against a SignalSet.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the standard five-persona chain.
func NewClassifier() *Classifier {
	return &Classifier{rules: standardRules()}
}

// Classify returns the assignment for the first matching rule. The default
// persona always matches, so classification never fails.
func (c *Classifier) Classify(userID string, signals *domain.SignalSet, now time.Time) domain.PersonaAssignment {
	for _, rule := range c.rules {
		criteria := rule.Evaluate(signals)
		if len(criteria) == 0 {
			continue
		}
		return domain.PersonaAssignment{
			AssignmentID:    uuid.NewString(),
			UserID:          userID,
			PersonaID:       rule.PersonaID,
			PersonaName:     domain.PersonaName(rule.PersonaID),
			MatchedCriteria: criteria,
			Rationale:       buildRationale(rule.PersonaID, criteria),
			AssignedAt:      now,
		}
	}

	// Unreachable with the standard chain; kept so a custom rule list without
	// a fallback still terminates.
	return domain.PersonaAssignment{
		AssignmentID:    uuid.NewString(),
		UserID:          userID,
		PersonaID:       domain.PersonaDefault,
		PersonaName:     domain.PersonaName(domain.PersonaDefault),
		MatchedCriteria: []string{"no persona criteria matched"},
		Rationale:       buildRationale(domain.PersonaDefault, nil),
		AssignedAt:      now,
	}
}

// buildRationale turns matched criteria into the human-readable explanation
// stored on the assignment.
func buildRationale(id domain.PersonaID, criteria []string) string {
	if len(criteria) == 0 || id == domain.PersonaDefault {
		return "No specific behavioral pattern stood out this period, so general financial guidance applies."
	}
	return fmt.Sprintf("Classified as %s because %s.",
		domain.PersonaName(id), strings.Join(criteria, "; "))
}
