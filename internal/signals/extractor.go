// Package signals computes behavioral signals from normalized bank records.
// Extraction is deterministic: identical inputs always produce identical
// output, so results can be cached and replayed.
package signals

import (
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Transaction categories the extractor keys on. The ingestion service
// normalizes categories to this vocabulary.
const (
	CategoryInterestCharge = "INTEREST_CHARGE"
	CategoryPayroll        = "PAYROLL"
)

// daysPerMonth is the normalization factor for monthly rates.
const daysPerMonth = 30.0

// subscriptionLookbackDays is the trailing period used for recurring-merchant
// detection, independent of the requested signal window.
const subscriptionLookbackDays = 90

// Thresholds are the tunable extraction constants. The exact values were not
// pinned down upstream; they are configurable and the defaults are recorded
// in DESIGN.md.
type Thresholds struct {
	// CadenceToleranceDays is the +/- band around the 7-day and 30-day
	// cadence targets, and around payroll frequency buckets.
	CadenceToleranceDays float64

	// IncomeVariationThreshold is the coefficient-of-variation cutoff for
	// the variable-income flag.
	IncomeVariationThreshold float64

	// MinPaymentToleranceAbs and MinPaymentTolerancePct bound how close a
	// payment must be to the stated minimum to count as minimum-only.
	MinPaymentToleranceAbs float64
	MinPaymentTolerancePct float64
}

// DefaultThresholds returns the documented default constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CadenceToleranceDays:     3,
		IncomeVariationThreshold: 0.25,
		MinPaymentToleranceAbs:   1.00,
		MinPaymentTolerancePct:   2.0,
	}
}

// Extractor computes WindowSignals from a RecordSet.
type Extractor struct {
	thresholds Thresholds
}

// NewExtractor creates an extractor with the given thresholds.
func NewExtractor(t Thresholds) *Extractor {
	return &Extractor{thresholds: t}
}

// Extract computes all four signal groups for one window ending at asOf.
// Degenerate input (no transactions, zero balances) yields zero/nil signal
// values, never an error.
func (e *Extractor) Extract(records domain.RecordSet, window domain.Window, asOf time.Time) *domain.WindowSignals {
	start := asOf.AddDate(0, 0, -int(window))
	inWindow := filterWindow(records.Transactions, start, asOf)

	avgExpense := averageMonthlyExpense(inWindow, records.Accounts, window)

	return &domain.WindowSignals{
		Window:        window,
		AsOf:          asOf,
		Subscriptions: e.extractSubscriptions(records.Transactions, inWindow, asOf),
		Savings:       e.extractSavings(inWindow, records.Accounts, window, avgExpense),
		Credit:        e.extractCredit(inWindow, records.Accounts, records.Liabilities),
		Income:        e.extractIncome(inWindow, records.Accounts, asOf, avgExpense),
	}
}

// ExtractSet computes the signals for every requested window and bundles them
// into one SignalSet.
func (e *Extractor) ExtractSet(records domain.RecordSet, windows []domain.Window, asOf time.Time) *domain.SignalSet {
	set := &domain.SignalSet{
		UserID:  records.UserID,
		Windows: make(map[domain.Window]*domain.WindowSignals, len(windows)),
	}
	for _, w := range windows {
		set.Windows[w] = e.Extract(records, w, asOf)
	}
	return set
}

// filterWindow returns settled transactions dated in (start, end].
func filterWindow(txs []domain.Transaction, start, end time.Time) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Pending {
			continue
		}
		if tx.Date.After(start) && !tx.Date.After(end) {
			out = append(out, tx)
		}
	}
	return out
}

// averageMonthlyExpense is the mean monthly outflow across non-savings
// accounts in the window. Returns 0 when there is no outflow.
func averageMonthlyExpense(inWindow []domain.Transaction, accounts []domain.Account, window domain.Window) float64 {
	savings := savingsAccountIDs(accounts)
	var outflow float64
	for _, tx := range inWindow {
		if tx.Amount < 0 && !savings[tx.AccountID] {
			outflow += -tx.Amount
		}
	}
	months := float64(window) / daysPerMonth
	if months <= 0 {
		return 0
	}
	return outflow / months
}

// savingsAccountIDs returns the set of savings-type account IDs. Money-market
// accounts count as savings for signal purposes.
func savingsAccountIDs(accounts []domain.Account) map[string]bool {
	ids := make(map[string]bool)
	for _, a := range accounts {
		if a.Type == domain.AccountTypeSavings || a.Type == domain.AccountTypeMoneyMarket {
			ids[a.AccountID] = true
		}
	}
	return ids
}
