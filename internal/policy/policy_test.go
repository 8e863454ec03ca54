package policy_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ecomarket/support-agent/internal/policy"
	"github.com/ecomarket/support-agent/internal/store"
)

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func standardRules() policy.RuleSet {
	return policy.RuleSet{
		WindowDays:         30,
		ExcludedCategories: []string{"hygiene", "software", "gift cards"},
		ReviewCategories:   []string{"personalized"},
		ReviewPayments:     []string{store.PaymentCash},
	}
}

func order(mutate func(*store.OrderRecord)) store.OrderRecord {
	o := store.OrderRecord{
		ID:            "A100",
		CustomerID:    "C001",
		Product:       "solar charger",
		Category:      "electronics",
		Price:         185000,
		Quantity:      1,
		OrderDate:     now.AddDate(0, 0, -10),
		PaymentMethod: store.PaymentCreditCard,
		Status:        store.StatusDelivered,
	}
	if mutate != nil {
		mutate(&o)
	}
	return o
}

// ─── RulesFromPassages ────────────────────────────────────────────────────────

func TestRulesFromPassages(t *testing.T) {
	passages := []policy.Passage{
		{Rule: policy.RuleTimeWindow, WindowDays: 30, Text: "Returns are accepted within 30 days of purchase."},
		{Rule: policy.RuleCategoryExclusion, Categories: []string{"Hygiene", " Software "}},
		{Rule: policy.RulePaymentReview, PaymentMethods: []string{"CASH"}},
		{Text: "general intro passage without rule metadata"},
	}
	rs, err := policy.RulesFromPassages(passages)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if rs.WindowDays != 30 {
		t.Errorf("WindowDays = %d, want 30", rs.WindowDays)
	}
	if len(rs.ExcludedCategories) != 2 || rs.ExcludedCategories[0] != "hygiene" || rs.ExcludedCategories[1] != "software" {
		t.Errorf("ExcludedCategories = %v", rs.ExcludedCategories)
	}
	if len(rs.ReviewPayments) != 1 || rs.ReviewPayments[0] != "cash" {
		t.Errorf("ReviewPayments = %v", rs.ReviewPayments)
	}
}

func TestRulesFromPassagesNoMetadata(t *testing.T) {
	_, err := policy.RulesFromPassages([]policy.Passage{{Text: "plain prose"}})
	if !errors.Is(err, policy.ErrNoRules) {
		t.Errorf("err = %v, want ErrNoRules", err)
	}
}

// ─── Evaluate ─────────────────────────────────────────────────────────────────

func TestEvaluateWindowExceeded(t *testing.T) {
	// 40-day-old electronics order against a 30-day window
	o := order(func(o *store.OrderRecord) { o.OrderDate = now.AddDate(0, 0, -40) })
	d := policy.Evaluate(o, standardRules(), now)

	if d.Eligible {
		t.Error("40-day-old order should not be eligible")
	}
	if d.Basis != policy.BasisWindow {
		t.Errorf("Basis = %q, want %q", d.Basis, policy.BasisWindow)
	}
	if d.DaysSinceOrder != 40 {
		t.Errorf("DaysSinceOrder = %d, want 40", d.DaysSinceOrder)
	}
}

func TestEvaluateStatuses(t *testing.T) {
	tests := []struct {
		status       string
		wantEligible bool
	}{
		{store.StatusReturned, false},
		{store.StatusReturnInProgress, false},
		{store.StatusPending, false},
		{store.StatusShipped, false},
		{store.StatusDelivered, true},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			o := order(func(o *store.OrderRecord) { o.Status = tt.status })
			d := policy.Evaluate(o, standardRules(), now)
			if d.Eligible != tt.wantEligible {
				t.Errorf("Eligible = %v, want %v (reason: %s)", d.Eligible, tt.wantEligible, d.Reason)
			}
			if !tt.wantEligible && tt.status != store.StatusDelivered && d.Basis != policy.BasisStatus {
				t.Errorf("Basis = %q, want %q", d.Basis, policy.BasisStatus)
			}
		})
	}
}

func TestEvaluateExcludedCategory(t *testing.T) {
	o := order(func(o *store.OrderRecord) { o.Category = "software" })
	d := policy.Evaluate(o, standardRules(), now)
	if d.Eligible {
		t.Error("excluded category should not be eligible")
	}
	if d.Basis != policy.BasisCategory {
		t.Errorf("Basis = %q, want %q", d.Basis, policy.BasisCategory)
	}
}

func TestEvaluateManualReview(t *testing.T) {
	cash := order(func(o *store.OrderRecord) { o.PaymentMethod = store.PaymentCash })
	d := policy.Evaluate(cash, standardRules(), now)
	if !d.Eligible || !d.NeedsReview {
		t.Errorf("cash payment: Eligible=%v NeedsReview=%v, want true/true", d.Eligible, d.NeedsReview)
	}
	if d.Basis != policy.BasisPaymentReview {
		t.Errorf("Basis = %q, want %q", d.Basis, policy.BasisPaymentReview)
	}

	custom := order(func(o *store.OrderRecord) { o.Category = "personalized" })
	d = policy.Evaluate(custom, standardRules(), now)
	if !d.Eligible || !d.NeedsReview {
		t.Errorf("personalized category: Eligible=%v NeedsReview=%v, want true/true", d.Eligible, d.NeedsReview)
	}
}

func TestEvaluateEligible(t *testing.T) {
	d := policy.Evaluate(order(nil), standardRules(), now)
	if !d.Eligible || d.NeedsReview {
		t.Fatalf("Eligible=%v NeedsReview=%v, want true/false (reason: %s)", d.Eligible, d.NeedsReview, d.Reason)
	}
	if d.Basis != policy.BasisEligible {
		t.Errorf("Basis = %q, want %q", d.Basis, policy.BasisEligible)
	}
	if d.RefundAmount != 185000 {
		t.Errorf("RefundAmount = %v, want 185000", d.RefundAmount)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	o := order(nil)
	rules := standardRules()
	first := policy.Evaluate(o, rules, now)
	for i := 0; i < 5; i++ {
		if got := policy.Evaluate(o, rules, now); got != first {
			t.Fatalf("evaluation not deterministic: %+v vs %+v", got, first)
		}
	}
}
