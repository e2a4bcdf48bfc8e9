package domain

// CandidateType distinguishes the two catalog item kinds.
type CandidateType string

const (
	CandidateEducation    CandidateType = "EDUCATION"
	CandidatePartnerOffer CandidateType = "PARTNER_OFFER"
)

// RecommendationCandidate is a catalog item selected for a user, with a
// data-cited rationale, before guardrail review.
type RecommendationCandidate struct {
	CandidateID string        `json:"candidate_id"`
	Type        CandidateType `json:"type"`
	CatalogID   string        `json:"catalog_id"`
	PersonaID   PersonaID     `json:"persona_id"`
	Title       string        `json:"title"`
	Body        string        `json:"body"`
	// Rationale cites live signal values; it is built from the SignalSet only,
	// never from enriched body text.
	Rationale string `json:"rationale"`
}
