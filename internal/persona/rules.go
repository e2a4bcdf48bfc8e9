package persona

import (
	"fmt"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Classification thresholds. Primary signals come from the 30-day window;
// the 180-day window corroborates income patterns.
const (
	highUtilizationPct    = 50.0
	lowUtilizationPct     = 30.0
	variableIncomeGapDays = 45.0
	lowCashBufferMonths   = 1.0
	minRecurringMerchants = 3
	recurringSpendFloor   = 50.0
	subscriptionSharePct  = 10.0
	savingsGrowthFloorPct = 2.0
	savingsInflowFloor    = 200.0
)

// standardRules returns the five-persona chain in priority order.
func standardRules() []Rule {
	return []Rule{
		{PersonaID: domain.PersonaHighUtilization, Evaluate: matchHighUtilization},
		{PersonaID: domain.PersonaVariableIncome, Evaluate: matchVariableIncome},
		{PersonaID: domain.PersonaSubscriptionHeavy, Evaluate: matchSubscriptionHeavy},
		{PersonaID: domain.PersonaSavingsBuilder, Evaluate: matchSavingsBuilder},
		{PersonaID: domain.PersonaDefault, Evaluate: matchDefault},
	}
}

func matchHighUtilization(s *domain.SignalSet) []string {
	w := s.ForWindow(domain.Window30)
	if w == nil {
		return nil
	}

	var criteria []string
	for _, card := range w.Credit.Cards {
		if card.UtilizationPct != nil && *card.UtilizationPct >= highUtilizationPct {
			criteria = append(criteria, fmt.Sprintf("card %s is at %.0f%% utilization", card.AccountID, *card.UtilizationPct))
		}
	}
	if w.Credit.HasInterestCharge {
		criteria = append(criteria, fmt.Sprintf("$%.2f in interest charges this period", w.Credit.InterestCharges))
	}
	if w.Credit.MinimumPaymentOnly {
		criteria = append(criteria, "recent card payments stayed at the minimum")
	}
	if w.Credit.HasOverdue {
		criteria = append(criteria, "an account is past due")
	}
	return criteria
}

func matchVariableIncome(s *domain.SignalSet) []string {
	// Income cadence needs more history than 30 days; use the long window and
	// corroborate the buffer with the short one.
	long := s.ForWindow(domain.Window180)
	short := s.ForWindow(domain.Window30)
	if long == nil {
		return nil
	}

	gap := long.Income.MedianGapDays
	if gap == nil || *gap <= variableIncomeGapDays {
		return nil
	}

	buffer := long.Income.CashBufferMonths
	if short != nil && short.Income.CashBufferMonths != nil {
		buffer = short.Income.CashBufferMonths
	}
	if buffer == nil || *buffer >= lowCashBufferMonths {
		return nil
	}

	return []string{
		fmt.Sprintf("paychecks arrive %.0f days apart on median", *gap),
		fmt.Sprintf("cash-flow buffer covers %.1f months of expenses", *buffer),
	}
}

func matchSubscriptionHeavy(s *domain.SignalSet) []string {
	w := s.ForWindow(domain.Window30)
	if w == nil {
		return nil
	}

	count := len(w.Subscriptions.Recurring)
	if count < minRecurringMerchants {
		return nil
	}

	spend := w.Subscriptions.MonthlySpend
	share := w.Subscriptions.SpendSharePct

	criteria := []string{fmt.Sprintf("%d recurring subscriptions detected", count)}
	switch {
	case spend >= recurringSpendFloor:
		criteria = append(criteria, fmt.Sprintf("$%.2f/month in recurring charges", spend))
	case share != nil && *share >= subscriptionSharePct:
		criteria = append(criteria, fmt.Sprintf("subscriptions make up %.1f%% of spending", *share))
	default:
		return nil
	}
	return criteria
}

func matchSavingsBuilder(s *domain.SignalSet) []string {
	w := s.ForWindow(domain.Window30)
	if w == nil {
		return nil
	}

	for _, card := range w.Credit.Cards {
		if card.UtilizationPct != nil && *card.UtilizationPct >= lowUtilizationPct {
			return nil
		}
	}

	growth := w.Savings.GrowthRatePct
	inflow := w.Savings.NetInflow

	var criteria []string
	switch {
	case growth != nil && *growth >= savingsGrowthFloorPct:
		criteria = append(criteria, fmt.Sprintf("savings grew %.1f%% this period", *growth))
	case inflow >= savingsInflowFloor:
		criteria = append(criteria, fmt.Sprintf("$%.2f net savings inflow this month", inflow))
	default:
		return nil
	}
	criteria = append(criteria, "all card utilizations are under 30%")
	return criteria
}

func matchDefault(s *domain.SignalSet) []string {
	return []string{"no higher-priority persona criteria matched"}
}
