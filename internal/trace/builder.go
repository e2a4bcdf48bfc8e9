// Package trace assembles the immutable audit record for one generation run.
package trace

import (
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Builder produces DecisionTraces. It performs no computation of its own:
// everything in the trace is a snapshot of values already decided upstream.
type Builder struct{}

// NewBuilder creates a trace builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build assembles the trace for one run. The signal set and assignment are
// deep-copied so later pipeline runs cannot reach back into a stored trace.
func (b *Builder) Build(userID string, signals *domain.SignalSet, assignment domain.PersonaAssignment, reviewed []domain.ReviewedCandidate, startedAt, finishedAt time.Time) *domain.DecisionTrace {
	return &domain.DecisionTrace{
		TraceID:     uuid.NewString(),
		UserID:      userID,
		GeneratedAt: finishedAt,
		Signals:     copySignals(signals),
		Assignment:  copyAssignment(assignment),
		Reviewed:    copyReviewed(reviewed),
		Duration:    finishedAt.Sub(startedAt),
	}
}

func copySignals(s *domain.SignalSet) domain.SignalSet {
	out := domain.SignalSet{UserID: s.UserID}
	if s.Windows == nil {
		return out
	}
	out.Windows = make(map[domain.Window]*domain.WindowSignals, len(s.Windows))
	for w, sig := range s.Windows {
		if sig == nil {
			continue
		}
		copied := *sig
		copied.Subscriptions.Recurring = append([]domain.RecurringMerchant(nil), sig.Subscriptions.Recurring...)
		copied.Subscriptions.SpendSharePct = copyFloat(sig.Subscriptions.SpendSharePct)
		copied.Savings.GrowthRatePct = copyFloat(sig.Savings.GrowthRatePct)
		copied.Savings.EmergencyFundMonths = copyFloat(sig.Savings.EmergencyFundMonths)
		copied.Credit.Cards = copyCards(sig.Credit.Cards)
		copied.Income.Deposits = append([]domain.PayrollDeposit(nil), sig.Income.Deposits...)
		copied.Income.MedianGapDays = copyFloat(sig.Income.MedianGapDays)
		copied.Income.VariationCoeff = copyFloat(sig.Income.VariationCoeff)
		copied.Income.CashBufferMonths = copyFloat(sig.Income.CashBufferMonths)
		out.Windows[w] = &copied
	}
	return out
}

func copyCards(cards []domain.CardUtilization) []domain.CardUtilization {
	if cards == nil {
		return nil
	}
	out := make([]domain.CardUtilization, len(cards))
	for i, c := range cards {
		out[i] = c
		out[i].UtilizationPct = copyFloat(c.UtilizationPct)
	}
	return out
}

func copyAssignment(a domain.PersonaAssignment) domain.PersonaAssignment {
	a.MatchedCriteria = append([]string(nil), a.MatchedCriteria...)
	return a
}

func copyReviewed(reviewed []domain.ReviewedCandidate) []domain.ReviewedCandidate {
	out := make([]domain.ReviewedCandidate, len(reviewed))
	for i, rc := range reviewed {
		out[i] = rc
		out[i].Result.EligibilityReasons = append([]string(nil), rc.Result.EligibilityReasons...)
	}
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
