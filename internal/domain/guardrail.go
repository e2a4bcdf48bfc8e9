package domain

// Verdict is the final guardrail outcome for one candidate.
type Verdict string

const (
	VerdictApproved Verdict = "APPROVED"
	VerdictBlocked  Verdict = "BLOCKED"
)

// BlockReason is a machine-readable reason code for a blocked candidate.
type BlockReason string

const (
	BlockConsentMissing     BlockReason = "consent_missing"
	BlockIncomeBelowMin     BlockReason = "income_below_minimum"
	BlockCreditBelowMin     BlockReason = "credit_score_below_minimum"
	BlockProductAlreadyHeld BlockReason = "product_already_held"
	BlockHarmfulCategory    BlockReason = "blocklisted_category"
	BlockToneBelowThreshold BlockReason = "tone_below_threshold"
	BlockInternalError      BlockReason = "internal_error"
)

// GuardrailResult records every check outcome for one candidate. Checks run
// in fixed order: consent, eligibility, tone, disclaimer. A false consent
// short-circuits the rest.
type GuardrailResult struct {
	CandidateID        string      `json:"candidate_id"`
	ConsentPass        bool        `json:"consent_pass"`
	EligibilityPass    bool        `json:"eligibility_pass"`
	EligibilityReasons []string    `json:"eligibility_reasons,omitempty"`
	ToneScore          int         `json:"tone_score"`
	DisclaimerPresent  bool        `json:"disclaimer_present"`
	Verdict            Verdict     `json:"verdict"`
	BlockReason        BlockReason `json:"block_reason,omitempty"`
}

// ReviewedCandidate pairs a candidate with its guardrail result. The Body on
// the candidate is the final content, including any appended disclaimer.
type ReviewedCandidate struct {
	Candidate RecommendationCandidate `json:"candidate"`
	Result    GuardrailResult         `json:"result"`
}
