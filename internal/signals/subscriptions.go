package signals

import (
	"math"
	"sort"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Cadence targets for recurring-merchant detection, in days.
const (
	weeklyCadence  = 7.0
	monthlyCadence = 30.0
)

// minRecurringOccurrences is the hard floor: fewer than 3 charges from a
// merchant never counts as a subscription, no partial credit.
const minRecurringOccurrences = 3

// extractSubscriptions detects recurring merchants over the trailing 90 days
// and reports recurring spend relative to the requested window.
func (e *Extractor) extractSubscriptions(all []domain.Transaction, inWindow []domain.Transaction, asOf time.Time) domain.SubscriptionSignals {
	lookbackStart := asOf.AddDate(0, 0, -subscriptionLookbackDays)
	lookback := filterWindow(all, lookbackStart, asOf)

	byMerchant := make(map[string][]domain.Transaction)
	names := make(map[string]string)
	for _, tx := range lookback {
		if tx.Amount >= 0 || tx.MerchantID == "" {
			continue
		}
		byMerchant[tx.MerchantID] = append(byMerchant[tx.MerchantID], tx)
		names[tx.MerchantID] = tx.MerchantName
	}

	merchantIDs := make([]string, 0, len(byMerchant))
	for id := range byMerchant {
		merchantIDs = append(merchantIDs, id)
	}
	sort.Strings(merchantIDs)

	var recurring []domain.RecurringMerchant
	recurringIDs := make(map[string]bool)
	var monthlySpend float64

	for _, id := range merchantIDs {
		txs := byMerchant[id]
		if len(txs) < minRecurringOccurrences {
			continue
		}
		cadence, ok := e.matchCadence(txs)
		if !ok {
			continue
		}

		var total float64
		for _, tx := range txs {
			total += -tx.Amount
		}
		avgCharge := total / float64(len(txs))
		monthlyCost := round2(avgCharge * daysPerMonth / cadence)

		recurring = append(recurring, domain.RecurringMerchant{
			MerchantID:   id,
			MerchantName: names[id],
			Occurrences:  len(txs),
			CadenceDays:  cadence,
			MonthlyCost:  monthlyCost,
		})
		recurringIDs[id] = true
		monthlySpend += monthlyCost
	}

	// Spend share compares recurring outflow to total outflow inside the
	// requested window, not the 90-day lookback.
	var recurringOutflow, totalOutflow float64
	for _, tx := range inWindow {
		if tx.Amount >= 0 {
			continue
		}
		totalOutflow += -tx.Amount
		if recurringIDs[tx.MerchantID] {
			recurringOutflow += -tx.Amount
		}
	}

	var share *float64
	if totalOutflow > 0 {
		share = ptr(round2(recurringOutflow / totalOutflow * 100))
	}

	return domain.SubscriptionSignals{
		Recurring:     recurring,
		MonthlySpend:  round2(monthlySpend),
		SpendSharePct: share,
	}
}

// matchCadence decides whether a merchant's charges cluster around a weekly
// or monthly cadence. The median inter-transaction gap must land within the
// configured tolerance of one of the two targets.
func (e *Extractor) matchCadence(txs []domain.Transaction) (float64, bool) {
	if len(txs) < minRecurringOccurrences {
		return 0, false
	}
	dates := make([]time.Time, len(txs))
	for i, tx := range txs {
		dates[i] = tx.Date
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	gaps := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		gaps = append(gaps, dates[i].Sub(dates[i-1]).Hours()/24)
	}

	gap := median(gaps)
	tol := e.thresholds.CadenceToleranceDays
	for _, target := range []float64{weeklyCadence, monthlyCadence} {
		if math.Abs(gap-target) <= tol {
			return target, true
		}
	}
	return 0, false
}
