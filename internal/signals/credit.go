package signals

import (
	"math"
	"sort"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Utilization flag thresholds, in percent.
const (
	utilizationWarn     = 30.0
	utilizationHigh     = 50.0
	utilizationCritical = 80.0
)

// minPaymentStreak is how many consecutive payments must sit at the minimum
// before the minimum-payment-only flag fires.
const minPaymentStreak = 3

// extractCredit computes per-card utilization, payment behavior and interest
// charges.
func (e *Extractor) extractCredit(inWindow []domain.Transaction, accounts []domain.Account, liabilities []domain.Liability) domain.CreditSignals {
	var cards []domain.CardUtilization
	creditIDs := make(map[string]bool)

	sorted := make([]domain.Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AccountID < sorted[j].AccountID })

	for _, a := range sorted {
		if a.Type != domain.AccountTypeCredit {
			continue
		}
		creditIDs[a.AccountID] = true

		card := domain.CardUtilization{AccountID: a.AccountID}
		if a.CreditLimit != nil && *a.CreditLimit > 0 {
			// Credit balances arrive as positive amounts owed.
			util := round2(math.Abs(a.Balance) / *a.CreditLimit * 100)
			card.UtilizationPct = &util
			card.Above30 = util >= utilizationWarn
			card.Above50 = util >= utilizationHigh
			card.Above80 = util >= utilizationCritical
		}
		cards = append(cards, card)
	}

	var interest float64
	for _, tx := range inWindow {
		if tx.Category == CategoryInterestCharge {
			interest += math.Abs(tx.Amount)
		}
	}

	minOnly := false
	overdue := false
	for _, l := range liabilities {
		if l.IsOverdue {
			overdue = true
		}
		if e.isMinimumPaymentOnly(l) {
			minOnly = true
		}
	}

	return domain.CreditSignals{
		Cards:              cards,
		MinimumPaymentOnly: minOnly,
		InterestCharges:    round2(interest),
		HasInterestCharge:  interest > 0,
		HasOverdue:         overdue,
	}
}

// isMinimumPaymentOnly reports whether the last three payments each landed
// within tolerance of the stated minimum. Fewer than three observed payments
// never sets the flag.
func (e *Extractor) isMinimumPaymentOnly(l domain.Liability) bool {
	if l.MinimumPayment <= 0 || len(l.RecentPayments) < minPaymentStreak {
		return false
	}
	for _, p := range l.RecentPayments[:minPaymentStreak] {
		diff := math.Abs(p - l.MinimumPayment)
		if diff > e.thresholds.MinPaymentToleranceAbs &&
			diff > l.MinimumPayment*e.thresholds.MinPaymentTolerancePct/100 {
			return false
		}
	}
	return true
}
