package bigquery

import (
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// PersonaAssignmentRow is one row of the append-only persona_assignments
// table. Reassignments insert a new row; history is never rewritten.
type PersonaAssignmentRow struct {
	AssignmentID    string    `bigquery:"assignment_id"`    // REQUIRED
	UserID          string    `bigquery:"user_id"`          // REQUIRED
	PersonaID       int64     `bigquery:"persona_id"`       // REQUIRED
	PersonaName     string    `bigquery:"persona_name"`     // REQUIRED
	MatchedCriteria []string  `bigquery:"matched_criteria"` // REPEATED
	Rationale       string    `bigquery:"rationale"`        // REQUIRED
	AssignedTS      time.Time `bigquery:"assigned_ts"`      // REQUIRED
}

func assignmentToRow(a domain.PersonaAssignment) *PersonaAssignmentRow {
	return &PersonaAssignmentRow{
		AssignmentID:    a.AssignmentID,
		UserID:          a.UserID,
		PersonaID:       int64(a.PersonaID),
		PersonaName:     a.PersonaName,
		MatchedCriteria: a.MatchedCriteria,
		Rationale:       a.Rationale,
		AssignedTS:      a.AssignedAt,
	}
}

func (r *PersonaAssignmentRow) toDomain() domain.PersonaAssignment {
	return domain.PersonaAssignment{
		AssignmentID:    r.AssignmentID,
		UserID:          r.UserID,
		PersonaID:       domain.PersonaID(r.PersonaID),
		PersonaName:     r.PersonaName,
		MatchedCriteria: r.MatchedCriteria,
		Rationale:       r.Rationale,
		AssignedAt:      r.AssignedTS,
	}
}
