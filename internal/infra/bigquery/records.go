package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-insights/internal/domain"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED
	AccountID     string `bigquery:"account_id"`     // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Amount   float64 `bigquery:"amount"`   // REQUIRED, signed: positive IN, negative OUT
	Currency string  `bigquery:"currency"` // REQUIRED

	MerchantID   string              `bigquery:"merchant_id"`   // NULLABLE
	MerchantName bigquery.NullString `bigquery:"merchant_name"` // NULLABLE
	CategoryName bigquery.NullString `bigquery:"category_name"` // NULLABLE

	IsPending bigquery.NullBool   `bigquery:"is_pending"` // NULLABLE
	Channel   bigquery.NullString `bigquery:"channel"`    // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

type AccountRow struct {
	AccountID   string               `bigquery:"account_id"`   // REQUIRED
	UserID      string               `bigquery:"user_id"`      // REQUIRED
	AccountType string               `bigquery:"account_type"` // REQUIRED
	Subtype     bigquery.NullString  `bigquery:"subtype"`      // NULLABLE
	Balance     float64              `bigquery:"balance"`      // REQUIRED
	CreditLimit bigquery.NullFloat64 `bigquery:"credit_limit"` // NULLABLE

	CreatedTS time.Time              `bigquery:"created_ts"` // REQUIRED
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"` // NULLABLE
}

type LiabilityRow struct {
	AccountID      string  `bigquery:"account_id"`      // REQUIRED
	UserID         string  `bigquery:"user_id"`         // REQUIRED
	APR            float64 `bigquery:"apr"`             // NULLABLE in practice, 0 when absent
	MinimumPayment float64 `bigquery:"minimum_payment"` // NULLABLE in practice, 0 when absent
	LastPayment    float64 `bigquery:"last_payment"`    // NULLABLE in practice, 0 when absent

	RecentPayments []float64 `bigquery:"recent_payments"` // REPEATED, newest first

	IsOverdue   bigquery.NullBool `bigquery:"is_overdue"`    // NULLABLE
	NextDueDate bigquery.NullDate `bigquery:"next_due_date"` // NULLABLE
}

type ProfileRow struct {
	UserID       string   `bigquery:"user_id"`       // REQUIRED
	AnnualIncome float64  `bigquery:"annual_income"` // NULLABLE in practice, 0 when absent
	CreditScore  int64    `bigquery:"credit_score"`  // NULLABLE in practice, 0 when absent
	HeldProducts []string `bigquery:"held_products"` // REPEATED

	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"` // NULLABLE
}

func (r *TransactionRow) toDomain() domain.Transaction {
	return domain.Transaction{
		AccountID:    r.AccountID,
		Date:         r.TransactionDate.In(time.UTC),
		Amount:       r.Amount,
		MerchantID:   r.MerchantID,
		MerchantName: r.MerchantName.StringVal,
		Category:     r.CategoryName.StringVal,
		Pending:      r.IsPending.Valid && r.IsPending.Bool,
		Channel:      domain.PaymentChannel(r.Channel.StringVal),
	}
}

func (r *AccountRow) toDomain() domain.Account {
	a := domain.Account{
		AccountID: r.AccountID,
		Type:      domain.AccountType(r.AccountType),
		Subtype:   r.Subtype.StringVal,
		Balance:   r.Balance,
	}
	if r.CreditLimit.Valid {
		limit := r.CreditLimit.Float64
		a.CreditLimit = &limit
	}
	return a
}

func (r *LiabilityRow) toDomain() domain.Liability {
	l := domain.Liability{
		AccountID:      r.AccountID,
		APR:            r.APR,
		MinimumPayment: r.MinimumPayment,
		LastPayment:    r.LastPayment,
		RecentPayments: r.RecentPayments,
		IsOverdue:      r.IsOverdue.Valid && r.IsOverdue.Bool,
	}
	if r.NextDueDate.Valid {
		l.NextDueDate = r.NextDueDate.Date.In(time.UTC)
	}
	return l
}

func (r *ProfileRow) toDomain() domain.UserProfile {
	return domain.UserProfile{
		UserID:       r.UserID,
		AnnualIncome: r.AnnualIncome,
		CreditScore:  int(r.CreditScore),
		HeldProducts: r.HeldProducts,
	}
}
