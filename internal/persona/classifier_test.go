package persona

import (
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

// signalSet builds a SignalSet with identical data in both windows, then
// applies overrides.
func signalSet(mutate func(short, long *domain.WindowSignals)) *domain.SignalSet {
	short := &domain.WindowSignals{Window: domain.Window30}
	long := &domain.WindowSignals{Window: domain.Window180}
	if mutate != nil {
		mutate(short, long)
	}
	return &domain.SignalSet{
		UserID: "u1",
		Windows: map[domain.Window]*domain.WindowSignals{
			domain.Window30:  short,
			domain.Window180: long,
		},
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name   string
		mutate func(short, long *domain.WindowSignals)
		want   domain.PersonaID
	}{
		{
			name: "high utilization wins on 50 percent card",
			mutate: func(short, long *domain.WindowSignals) {
				short.Credit.Cards = []domain.CardUtilization{{AccountID: "card-1", UtilizationPct: ptr(55)}}
			},
			want: domain.PersonaHighUtilization,
		},
		{
			name: "overdue alone triggers high utilization",
			mutate: func(short, long *domain.WindowSignals) {
				short.Credit.HasOverdue = true
			},
			want: domain.PersonaHighUtilization,
		},
		{
			name: "variable income",
			mutate: func(short, long *domain.WindowSignals) {
				long.Income.MedianGapDays = ptr(60)
				short.Income.CashBufferMonths = ptr(0.5)
			},
			want: domain.PersonaVariableIncome,
		},
		{
			name: "subscription heavy on spend floor",
			mutate: func(short, long *domain.WindowSignals) {
				short.Subscriptions.Recurring = make([]domain.RecurringMerchant, 4)
				short.Subscriptions.MonthlySpend = 80
			},
			want: domain.PersonaSubscriptionHeavy,
		},
		{
			name: "subscription heavy on share alone",
			mutate: func(short, long *domain.WindowSignals) {
				short.Subscriptions.Recurring = make([]domain.RecurringMerchant, 3)
				short.Subscriptions.MonthlySpend = 20
				short.Subscriptions.SpendSharePct = ptr(14)
			},
			want: domain.PersonaSubscriptionHeavy,
		},
		{
			name: "savings builder",
			mutate: func(short, long *domain.WindowSignals) {
				short.Savings.GrowthRatePct = ptr(3)
				short.Credit.Cards = []domain.CardUtilization{{AccountID: "card-1", UtilizationPct: ptr(12)}}
			},
			want: domain.PersonaSavingsBuilder,
		},
		{
			name:   "default when nothing matches",
			mutate: nil,
			want:   domain.PersonaDefault,
		},
		{
			name: "high utilization beats subscription heavy",
			mutate: func(short, long *domain.WindowSignals) {
				short.Credit.MinimumPaymentOnly = true
				short.Subscriptions.Recurring = make([]domain.RecurringMerchant, 5)
				short.Subscriptions.MonthlySpend = 120
			},
			want: domain.PersonaHighUtilization,
		},
		{
			name: "savings builder beats default even when subscriptions almost match",
			mutate: func(short, long *domain.WindowSignals) {
				short.Savings.GrowthRatePct = ptr(3)
				short.Subscriptions.Recurring = make([]domain.RecurringMerchant, 2)
			},
			want: domain.PersonaSavingsBuilder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify("u1", signalSet(tt.mutate), now)
			if got.PersonaID != tt.want {
				t.Errorf("persona = %d (%s), want %d", got.PersonaID, got.PersonaName, tt.want)
			}
			if len(got.MatchedCriteria) == 0 {
				t.Error("expected matched criteria")
			}
			if got.Rationale == "" {
				t.Error("expected rationale")
			}
		})
	}
}

func TestClassify_RationaleCitesValues(t *testing.T) {
	c := NewClassifier()

	set := signalSet(func(short, long *domain.WindowSignals) {
		short.Credit.Cards = []domain.CardUtilization{{AccountID: "card-1", UtilizationPct: ptr(68)}}
		short.Credit.InterestCharges = 87.50
		short.Credit.HasInterestCharge = true
	})

	got := c.Classify("u1", set, now)

	if got.PersonaID != domain.PersonaHighUtilization {
		t.Fatalf("persona = %d, want 1", got.PersonaID)
	}
	if !strings.Contains(got.Rationale, "68%") {
		t.Errorf("rationale missing utilization value: %q", got.Rationale)
	}
	if !strings.Contains(got.Rationale, "$87.50") {
		t.Errorf("rationale missing interest value: %q", got.Rationale)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier()

	set := signalSet(func(short, long *domain.WindowSignals) {
		short.Subscriptions.Recurring = make([]domain.RecurringMerchant, 3)
		short.Subscriptions.MonthlySpend = 60
	})

	first := c.Classify("u1", set, now)
	second := c.Classify("u1", set, now)

	if first.PersonaID != second.PersonaID {
		t.Errorf("personas differ across runs: %d vs %d", first.PersonaID, second.PersonaID)
	}
	if first.Rationale != second.Rationale {
		t.Errorf("rationales differ across runs")
	}
}

func TestClassify_SubscriptionCountFloor(t *testing.T) {
	c := NewClassifier()

	set := signalSet(func(short, long *domain.WindowSignals) {
		short.Subscriptions.Recurring = make([]domain.RecurringMerchant, 2)
		short.Subscriptions.MonthlySpend = 500
	})

	got := c.Classify("u1", set, now)
	if got.PersonaID == domain.PersonaSubscriptionHeavy {
		t.Error("two subscriptions must not classify as Subscription-Heavy")
	}
}
