package signals

import (
	"github.com/dvloznov/finance-insights/internal/domain"
)

// extractSavings computes net inflow, growth rate and emergency-fund coverage
// across savings-type accounts.
//
// Balance history is not part of the normalized data, so the start-of-window
// balance is reconstructed as current balance minus the window's net inflow.
func (e *Extractor) extractSavings(inWindow []domain.Transaction, accounts []domain.Account, window domain.Window, avgMonthlyExpense float64) domain.SavingsSignals {
	savings := savingsAccountIDs(accounts)

	var inflow, outflow float64
	for _, tx := range inWindow {
		if !savings[tx.AccountID] {
			continue
		}
		if tx.Amount > 0 {
			inflow += tx.Amount
		} else {
			outflow += -tx.Amount
		}
	}
	netInflow := round2(inflow - outflow)

	var endBalance float64
	for _, a := range accounts {
		if savings[a.AccountID] {
			endBalance += a.Balance
		}
	}

	var growth *float64
	startBalance := endBalance - netInflow
	if startBalance != 0 {
		growth = ptr(round2((endBalance - startBalance) / startBalance * 100))
	}

	var coverage *float64
	if avgMonthlyExpense > 0 {
		coverage = ptr(round2(endBalance / avgMonthlyExpense))
	}

	return domain.SavingsSignals{
		NetInflow:           netInflow,
		GrowthRatePct:       growth,
		EmergencyFundMonths: coverage,
	}
}
