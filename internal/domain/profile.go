package domain

// UserProfile carries the self-reported and bureau-sourced facts used when
// screening partner offers. Consent is not stored here; it is re-read from
// the consent service at review time.
type UserProfile struct {
	UserID       string   `json:"user_id"`
	AnnualIncome float64  `json:"annual_income"`
	CreditScore  int      `json:"credit_score"`
	HeldProducts []string `json:"held_products"`
}
