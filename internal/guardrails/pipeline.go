// Package guardrails runs the compliance checks every candidate must pass
// before it reaches a user: consent, eligibility, tone, disclaimer, in that
// fixed order.
package guardrails

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insights/internal/catalog"
	"github.com/dvloznov/finance-insights/internal/domain"
)

// ConsentProvider reports whether a user currently consents to receiving
// recommendations. The pipeline re-reads consent at review time; consent
// captured earlier in a run may be stale.
type ConsentProvider interface {
	HasConsent(ctx context.Context, userID string) (bool, error)
}

// ToneScorer is the optional external tone collaborator. Implementations
// must bound their own latency; an error falls back to the keyword scan.
type ToneScorer interface {
	ScoreTone(ctx context.Context, text string) (int, error)
}

// EligibilityContext is what we know about the user when screening partner
// offers.
type EligibilityContext struct {
	Income           float64
	CreditScore      int
	ExistingProducts []string
}

// Pipeline applies the four checks to each candidate in a batch.
type Pipeline struct {
	consent   ConsentProvider
	tone      ToneScorer // nil means keyword scan only
	cat       *catalog.Catalog
	blocklist map[string]bool
	log       zerolog.Logger
}

// NewPipeline creates a guardrail pipeline. blockedCategories lists harmful
// product categories that are always rejected. tone may be nil.
func NewPipeline(consent ConsentProvider, tone ToneScorer, cat *catalog.Catalog, blockedCategories []string, log zerolog.Logger) *Pipeline {
	blocklist := make(map[string]bool, len(blockedCategories))
	for _, c := range blockedCategories {
		blocklist[c] = true
	}
	return &Pipeline{
		consent:   consent,
		tone:      tone,
		cat:       cat,
		blocklist: blocklist,
		log:       log,
	}
}

// Review evaluates every candidate and returns one ReviewedCandidate per
// input, in order. A failure while reviewing one candidate blocks only that
// candidate.
func (p *Pipeline) Review(ctx context.Context, userID string, candidates []domain.RecommendationCandidate, elig EligibilityContext) []domain.ReviewedCandidate {
	consented, err := p.consent.HasConsent(ctx, userID)
	if err != nil {
		p.log.Error().Err(err).Str("user_id", userID).Msg("Consent lookup failed; withholding batch")
		consented = false
	}

	if !consented {
		// Logged once per batch, not per item.
		p.log.Info().Str("user_id", userID).Int("candidates", len(candidates)).
			Msg("Consent absent; blocking all candidates")
		out := make([]domain.ReviewedCandidate, 0, len(candidates))
		for _, c := range candidates {
			out = append(out, domain.ReviewedCandidate{
				Candidate: c,
				Result: domain.GuardrailResult{
					CandidateID: c.CandidateID,
					ConsentPass: false,
					Verdict:     domain.VerdictBlocked,
					BlockReason: domain.BlockConsentMissing,
				},
			})
		}
		return out
	}

	out := make([]domain.ReviewedCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, p.reviewOne(ctx, c, elig))
	}
	return out
}

// reviewOne runs eligibility, tone and disclaimer for a single candidate.
// Consent has already passed for the batch.
func (p *Pipeline) reviewOne(ctx context.Context, c domain.RecommendationCandidate, elig EligibilityContext) (rc domain.ReviewedCandidate) {
	result := domain.GuardrailResult{
		CandidateID: c.CandidateID,
		ConsentPass: true,
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Str("candidate_id", c.CandidateID).
				Interface("panic", r).Msg("Guardrail evaluation panicked")
			result.Verdict = domain.VerdictBlocked
			result.BlockReason = domain.BlockInternalError
			rc = domain.ReviewedCandidate{Candidate: c, Result: result}
		}
	}()

	pass, reasons, blockReason := p.checkEligibility(c, elig)
	result.EligibilityPass = pass
	result.EligibilityReasons = reasons
	if !pass {
		result.Verdict = domain.VerdictBlocked
		result.BlockReason = blockReason
		return domain.ReviewedCandidate{Candidate: c, Result: result}
	}

	result.ToneScore = p.scoreTone(ctx, c)
	if result.ToneScore < toneThreshold {
		result.Verdict = domain.VerdictBlocked
		result.BlockReason = domain.BlockToneBelowThreshold
		return domain.ReviewedCandidate{Candidate: c, Result: result}
	}

	// Disclaimer is corrective: a missing disclaimer is appended, never a
	// block reason.
	c.Body = ensureDisclaimer(c.Body)
	result.DisclaimerPresent = true

	result.Verdict = domain.VerdictApproved
	return domain.ReviewedCandidate{Candidate: c, Result: result}
}

// checkEligibility screens partner offers against the user context and the
// harmful-category blocklist. Education items are always eligible.
func (p *Pipeline) checkEligibility(c domain.RecommendationCandidate, elig EligibilityContext) (bool, []string, domain.BlockReason) {
	if c.Type != domain.CandidatePartnerOffer {
		return true, nil, ""
	}

	item, ok := p.cat.Get(c.CatalogID)
	if !ok {
		return false, []string{fmt.Sprintf("catalog item %s not found", c.CatalogID)}, domain.BlockInternalError
	}

	// Blocklist wins over everything else.
	if p.blocklist[item.ProductCategory] {
		return false, []string{fmt.Sprintf("category %q is blocklisted", item.ProductCategory)}, domain.BlockHarmfulCategory
	}

	if item.Eligibility.MinIncome > 0 && elig.Income < item.Eligibility.MinIncome {
		return false, []string{fmt.Sprintf("income $%.0f below required $%.0f", elig.Income, item.Eligibility.MinIncome)}, domain.BlockIncomeBelowMin
	}
	if item.Eligibility.MinCreditScore > 0 && elig.CreditScore < item.Eligibility.MinCreditScore {
		return false, []string{fmt.Sprintf("credit score %d below required %d", elig.CreditScore, item.Eligibility.MinCreditScore)}, domain.BlockCreditBelowMin
	}

	for _, held := range elig.ExistingProducts {
		if held == item.ProductCategory {
			return false, []string{fmt.Sprintf("user already holds a %s product", item.ProductCategory)}, domain.BlockProductAlreadyHeld
		}
	}

	return true, nil, ""
}

// scoreTone prefers the external scorer and falls back to the keyword scan.
// The approval threshold is the same either way.
func (p *Pipeline) scoreTone(ctx context.Context, c domain.RecommendationCandidate) int {
	text := c.Rationale + " " + c.Body

	if p.tone != nil {
		score, err := p.tone.ScoreTone(ctx, text)
		if err == nil {
			return clampScore(score)
		}
		p.log.Warn().Err(err).Str("candidate_id", c.CandidateID).
			Msg("Tone collaborator unavailable; using keyword scan")
	}

	return keywordToneScore(text)
}
