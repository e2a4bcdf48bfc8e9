package signals

import (
	"math"
	"sort"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// Payroll frequency bucket targets, in days.
var frequencyBuckets = []struct {
	target float64
	freq   domain.PayFrequency
}{
	{7, domain.FrequencyWeekly},
	{14, domain.FrequencyBiweekly},
	{15, domain.FrequencySemimonthly},
	{30, domain.FrequencyMonthly},
}

// variableIncomeGapDays: a median payroll gap beyond this marks income as
// irregular enough to matter for classification.
const variableIncomeGapDays = 45.0

// depositAmountBand is how far (as a fraction of the merchant's mean deposit)
// an amount may stray while still counting as the same recurring deposit.
const depositAmountBand = 0.20

// extractIncome detects payroll deposits and derives frequency, variability
// and the cash-flow buffer.
func (e *Extractor) extractIncome(inWindow []domain.Transaction, accounts []domain.Account, asOf time.Time, avgMonthlyExpense float64) domain.IncomeSignals {
	deposits := detectPayrollDeposits(inWindow)

	sig := domain.IncomeSignals{
		Deposits:  deposits,
		Frequency: domain.FrequencyIrregular,
	}

	if len(deposits) >= 2 {
		gaps := make([]float64, 0, len(deposits)-1)
		for i := 1; i < len(deposits); i++ {
			gaps = append(gaps, deposits[i].Date.Sub(deposits[i-1].Date).Hours()/24)
		}
		gap := median(gaps)
		sig.MedianGapDays = ptr(round2(gap))
		sig.Frequency = e.classifyFrequency(gap)
	}

	if len(deposits) > 0 {
		amounts := make([]float64, len(deposits))
		for i, d := range deposits {
			amounts[i] = d.Amount
		}
		if cv := variationCoeff(amounts); cv != nil {
			sig.VariationCoeff = ptr(round2(*cv))
		}
	}

	if sig.MedianGapDays != nil && sig.VariationCoeff != nil {
		sig.VariableIncome = *sig.MedianGapDays > variableIncomeGapDays &&
			*sig.VariationCoeff > e.thresholds.IncomeVariationThreshold
	}

	sig.CashBufferMonths = cashBufferMonths(inWindow, accounts, avgMonthlyExpense)

	return sig
}

// detectPayrollDeposits returns candidate payroll deposits sorted by date.
// A deposit qualifies if it is an ACH inflow tagged payroll, or an ACH inflow
// from a merchant that deposits repeatedly at a stable amount.
func detectPayrollDeposits(inWindow []domain.Transaction) []domain.PayrollDeposit {
	achInflows := make([]domain.Transaction, 0)
	byMerchant := make(map[string][]float64)
	for _, tx := range inWindow {
		if tx.Channel != domain.ChannelACH || tx.Amount <= 0 {
			continue
		}
		achInflows = append(achInflows, tx)
		if tx.MerchantID != "" {
			byMerchant[tx.MerchantID] = append(byMerchant[tx.MerchantID], tx.Amount)
		}
	}

	recurringSources := make(map[string]bool)
	for id, amounts := range byMerchant {
		if len(amounts) < 3 {
			continue
		}
		m := mean(amounts)
		stable := true
		for _, a := range amounts {
			if math.Abs(a-m) > m*depositAmountBand {
				stable = false
				break
			}
		}
		if stable {
			recurringSources[id] = true
		}
	}

	var deposits []domain.PayrollDeposit
	for _, tx := range achInflows {
		if tx.Category != CategoryPayroll && !recurringSources[tx.MerchantID] {
			continue
		}
		deposits = append(deposits, domain.PayrollDeposit{
			AccountID: tx.AccountID,
			Date:      tx.Date,
			Amount:    tx.Amount,
		})
	}
	sort.Slice(deposits, func(i, j int) bool { return deposits[i].Date.Before(deposits[j].Date) })
	return deposits
}

// classifyFrequency maps a median gap to the nearest frequency bucket within
// tolerance, or IRREGULAR when nothing is close enough.
func (e *Extractor) classifyFrequency(gapDays float64) domain.PayFrequency {
	best := domain.FrequencyIrregular
	bestDist := math.MaxFloat64
	for _, b := range frequencyBuckets {
		dist := math.Abs(gapDays - b.target)
		if dist <= e.thresholds.CadenceToleranceDays && dist < bestDist {
			best = b.freq
			bestDist = dist
		}
	}
	return best
}

// cashBufferMonths reconstructs the checking-balance series over the window
// from the current balance and the settled transactions, then compares the
// current balance against the observed minimum.
func cashBufferMonths(inWindow []domain.Transaction, accounts []domain.Account, avgMonthlyExpense float64) *float64 {
	if avgMonthlyExpense <= 0 {
		return nil
	}

	checking := make(map[string]bool)
	var current float64
	for _, a := range accounts {
		if a.Type == domain.AccountTypeChecking {
			checking[a.AccountID] = true
			current += a.Balance
		}
	}
	if len(checking) == 0 {
		return nil
	}

	txs := make([]domain.Transaction, 0)
	for _, tx := range inWindow {
		if checking[tx.AccountID] {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })

	// Walk backwards from the current balance: undoing each transaction gives
	// the balance just before it posted.
	minBalance := current
	balance := current
	for _, tx := range txs {
		balance -= tx.Amount
		if balance < minBalance {
			minBalance = balance
		}
	}

	return ptr(round2((current - minBalance) / avgMonthlyExpense))
}
