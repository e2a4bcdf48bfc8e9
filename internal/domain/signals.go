package domain

import (
	"time"
)

// Window is a trailing signal window length in days.
type Window int

const (
	Window30  Window = 30
	Window180 Window = 180
)

// PayFrequency buckets the observed payroll deposit cadence.
type PayFrequency string

const (
	FrequencyWeekly      PayFrequency = "WEEKLY"
	FrequencyBiweekly    PayFrequency = "BIWEEKLY"
	FrequencySemimonthly PayFrequency = "SEMIMONTHLY"
	FrequencyMonthly     PayFrequency = "MONTHLY"
	FrequencyIrregular   PayFrequency = "IRREGULAR"
)

// RecurringMerchant is one merchant flagged as a subscription.
type RecurringMerchant struct {
	MerchantID   string  `json:"merchant_id"`
	MerchantName string  `json:"merchant_name"`
	Occurrences  int     `json:"occurrences"`
	CadenceDays  float64 `json:"cadence_days"`
	MonthlyCost  float64 `json:"monthly_cost"`
}

// SubscriptionSignals covers recurring-merchant detection for one window.
type SubscriptionSignals struct {
	Recurring     []RecurringMerchant `json:"recurring"`
	MonthlySpend  float64             `json:"monthly_spend"`
	SpendSharePct *float64            `json:"spend_share_pct"`
}

// SavingsSignals covers savings-account behavior for one window.
// GrowthRatePct is nil when the start-of-window balance is zero.
type SavingsSignals struct {
	NetInflow           float64  `json:"net_inflow"`
	GrowthRatePct       *float64 `json:"growth_rate_pct"`
	EmergencyFundMonths *float64 `json:"emergency_fund_months"`
}

// CardUtilization is one credit card's utilization reading.
type CardUtilization struct {
	AccountID      string   `json:"account_id"`
	UtilizationPct *float64 `json:"utilization_pct"`
	Above30        bool     `json:"above_30"`
	Above50        bool     `json:"above_50"`
	Above80        bool     `json:"above_80"`
}

// CreditSignals covers credit-card behavior for one window.
type CreditSignals struct {
	Cards              []CardUtilization `json:"cards"`
	MinimumPaymentOnly bool              `json:"minimum_payment_only"`
	InterestCharges    float64           `json:"interest_charges"`
	HasInterestCharge  bool              `json:"has_interest_charge"`
	HasOverdue         bool              `json:"has_overdue"`
}

// PayrollDeposit is one detected income deposit.
type PayrollDeposit struct {
	AccountID string    `json:"account_id"`
	Date      time.Time `json:"date"`
	Amount    float64   `json:"amount"`
}

// IncomeSignals covers income detection for one window.
type IncomeSignals struct {
	Deposits         []PayrollDeposit `json:"deposits"`
	MedianGapDays    *float64         `json:"median_gap_days"`
	Frequency        PayFrequency     `json:"frequency"`
	VariationCoeff   *float64         `json:"variation_coeff"`
	VariableIncome   bool             `json:"variable_income"`
	CashBufferMonths *float64         `json:"cash_buffer_months"`
}

// WindowSignals is the full signal group computed over one window.
type WindowSignals struct {
	Window        Window              `json:"window"`
	AsOf          time.Time           `json:"as_of"`
	Subscriptions SubscriptionSignals `json:"subscriptions"`
	Savings       SavingsSignals      `json:"savings"`
	Credit        CreditSignals       `json:"credit"`
	Income        IncomeSignals       `json:"income"`
}

// SignalSet holds signals keyed by window for one user.
type SignalSet struct {
	UserID  string                    `json:"user_id"`
	Windows map[Window]*WindowSignals `json:"windows"`
}

// ForWindow returns the signals for the given window, or nil.
func (s *SignalSet) ForWindow(w Window) *WindowSignals {
	if s == nil || s.Windows == nil {
		return nil
	}
	return s.Windows[w]
}
