package recommend

import (
	"fmt"
	"strings"

	"github.com/dvloznov/finance-insights/internal/catalog"
	"github.com/dvloznov/finance-insights/internal/domain"
)

// buildRationale produces the per-item explanation. Every number cited here
// comes straight from the SignalSet; enriched body text never feeds back into
// rationales.
func buildRationale(assignment domain.PersonaAssignment, signals *domain.SignalSet, item catalog.Item) string {
	w := signals.ForWindow(domain.Window30)
	long := signals.ForWindow(domain.Window180)

	var facts []string
	switch assignment.PersonaID {
	case domain.PersonaHighUtilization:
		facts = utilizationFacts(w)
	case domain.PersonaVariableIncome:
		facts = incomeFacts(w, long)
	case domain.PersonaSubscriptionHeavy:
		facts = subscriptionFacts(w)
	case domain.PersonaSavingsBuilder:
		facts = savingsFacts(w)
	}

	lead := fmt.Sprintf("Suggested \"%s\" for your %s profile", item.Title, assignment.PersonaName)
	if len(facts) == 0 {
		return lead + "."
	}
	return fmt.Sprintf("%s: %s.", lead, strings.Join(facts, "; "))
}

func utilizationFacts(w *domain.WindowSignals) []string {
	if w == nil {
		return nil
	}
	var facts []string
	for _, card := range w.Credit.Cards {
		if card.UtilizationPct != nil && card.Above50 {
			facts = append(facts, fmt.Sprintf("card %s sits at %.0f%% of its limit", card.AccountID, *card.UtilizationPct))
		}
	}
	if w.Credit.HasInterestCharge {
		facts = append(facts, fmt.Sprintf("you paid $%.2f in interest over the last %d days", w.Credit.InterestCharges, int(w.Window)))
	}
	if w.Credit.MinimumPaymentOnly {
		facts = append(facts, "recent payments have stayed at the minimum")
	}
	return facts
}

func incomeFacts(w, long *domain.WindowSignals) []string {
	src := long
	if src == nil {
		src = w
	}
	if src == nil {
		return nil
	}
	var facts []string
	if src.Income.MedianGapDays != nil {
		facts = append(facts, fmt.Sprintf("deposits arrive about %.0f days apart", *src.Income.MedianGapDays))
	}
	if w != nil && w.Income.CashBufferMonths != nil {
		facts = append(facts, fmt.Sprintf("your cash buffer covers %.1f months", *w.Income.CashBufferMonths))
	}
	return facts
}

func subscriptionFacts(w *domain.WindowSignals) []string {
	if w == nil {
		return nil
	}
	var facts []string
	if n := len(w.Subscriptions.Recurring); n > 0 {
		facts = append(facts, fmt.Sprintf("%d active subscriptions totaling $%.2f/month", n, w.Subscriptions.MonthlySpend))
	}
	if w.Subscriptions.SpendSharePct != nil {
		facts = append(facts, fmt.Sprintf("%.1f%% of your spending is recurring", *w.Subscriptions.SpendSharePct))
	}
	return facts
}

func savingsFacts(w *domain.WindowSignals) []string {
	if w == nil {
		return nil
	}
	var facts []string
	if w.Savings.GrowthRatePct != nil {
		facts = append(facts, fmt.Sprintf("savings grew %.1f%% this period", *w.Savings.GrowthRatePct))
	}
	if w.Savings.NetInflow != 0 {
		facts = append(facts, fmt.Sprintf("net inflow was $%.2f", w.Savings.NetInflow))
	}
	if w.Savings.EmergencyFundMonths != nil {
		facts = append(facts, fmt.Sprintf("your emergency fund covers %.1f months", *w.Savings.EmergencyFundMonths))
	}
	return facts
}
