package domain

import (
	"time"
)

// PersonaID identifies one of the five fixed behavioral personas.
// Lower numbers have higher classification priority.
type PersonaID int

const (
	PersonaHighUtilization   PersonaID = 1
	PersonaVariableIncome    PersonaID = 2
	PersonaSubscriptionHeavy PersonaID = 3
	PersonaSavingsBuilder    PersonaID = 4
	PersonaDefault           PersonaID = 5
)

// PersonaName returns the display name for a persona ID.
func PersonaName(id PersonaID) string {
	switch id {
	case PersonaHighUtilization:
		return "High Utilization"
	case PersonaVariableIncome:
		return "Variable Income Budgeter"
	case PersonaSubscriptionHeavy:
		return "Subscription-Heavy"
	case PersonaSavingsBuilder:
		return "Savings Builder"
	case PersonaDefault:
		return "Custom"
	}
	return "Unknown"
}

// PersonaAssignment records the outcome of one classification run.
// Assignments are append-only; a new assignment supersedes the previous one
// but history is never rewritten.
type PersonaAssignment struct {
	AssignmentID string    `json:"assignment_id"`
	UserID       string    `json:"user_id"`
	PersonaID    PersonaID `json:"persona_id"`
	PersonaName  string    `json:"persona_name"`
	// MatchedCriteria lists the specific criteria that fired, in evaluation
	// order, each citing the observed value.
	MatchedCriteria []string  `json:"matched_criteria"`
	Rationale       string    `json:"rationale"`
	AssignedAt      time.Time `json:"assigned_at"`
}
