package domain

import (
	"time"
)

// AccountType classifies a normalized account.
type AccountType string

const (
	AccountTypeChecking    AccountType = "CHECKING"
	AccountTypeSavings     AccountType = "SAVINGS"
	AccountTypeCredit      AccountType = "CREDIT"
	AccountTypeMoneyMarket AccountType = "MONEY_MARKET"
	AccountTypeHSA         AccountType = "HSA"
)

// PaymentChannel is how a transaction was executed.
type PaymentChannel string

const (
	ChannelACH      PaymentChannel = "ACH"
	ChannelCard     PaymentChannel = "CARD"
	ChannelTransfer PaymentChannel = "TRANSFER"
	ChannelOther    PaymentChannel = "OTHER"
)

// Transaction is one normalized transaction as delivered by the ingestion
// service. Amounts are signed: positive for money IN, negative for money OUT.
// Records arrive validated and deduplicated; nothing here re-checks schema.
type Transaction struct {
	AccountID    string         `json:"account_id"`
	Date         time.Time      `json:"date"`
	Amount       float64        `json:"amount"`
	MerchantID   string         `json:"merchant_id"`
	MerchantName string         `json:"merchant_name"`
	Category     string         `json:"category"`
	Pending      bool           `json:"pending"`
	Channel      PaymentChannel `json:"channel"`
}

// Account is one normalized account snapshot. CreditLimit is only meaningful
// for credit accounts and is nil otherwise.
type Account struct {
	AccountID   string      `json:"account_id"`
	Type        AccountType `json:"type"`
	Subtype     string      `json:"subtype"`
	Balance     float64     `json:"balance"`
	CreditLimit *float64    `json:"credit_limit,omitempty"`
}

// Liability is the liability detail attached to a credit account.
type Liability struct {
	AccountID      string  `json:"account_id"`
	APR            float64 `json:"apr"`
	MinimumPayment float64 `json:"minimum_payment"`
	LastPayment    float64 `json:"last_payment"`
	// RecentPayments holds the most recent payment amounts, newest first.
	RecentPayments []float64 `json:"recent_payments,omitempty"`
	IsOverdue      bool      `json:"is_overdue"`
	NextDueDate    time.Time `json:"next_due_date"`
}

// RecordSet bundles everything the ingestion collaborator hands over for one
// user.
type RecordSet struct {
	UserID       string        `json:"user_id"`
	Transactions []Transaction `json:"transactions"`
	Accounts     []Account     `json:"accounts"`
	Liabilities  []Liability   `json:"liabilities"`
}
