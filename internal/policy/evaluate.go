package policy

import (
	"fmt"
	"time"

	"github.com/ecomarket/support-agent/internal/store"
)

// Decision bases, naming which rule produced the verdict.
const (
	BasisStatus         = "order_status"
	BasisCategory       = "category_exclusion"
	BasisWindow         = "window_exceeded"
	BasisCategoryReview = "category_review"
	BasisPaymentReview  = "payment_review"
	BasisEligible       = "within_policy"
)

// Decision is the structured outcome of an eligibility evaluation.
type Decision struct {
	OrderID        string  `json:"order_id"`
	Eligible       bool    `json:"eligible"`
	NeedsReview    bool    `json:"needs_review"`
	Basis          string  `json:"basis"`
	Reason         string  `json:"reason"`
	DaysSinceOrder int     `json:"days_since_order"`
	RefundAmount   float64 `json:"refund_amount,omitempty"`
}

// Evaluate applies the rule set to an order. Checks run in the order the
// store's manual prescribes: order state first, then category exclusions,
// then the return window, then manual-review flags.
func Evaluate(o store.OrderRecord, rules RuleSet, now time.Time) Decision {
	days := daysSince(o.OrderDate, now)
	d := Decision{OrderID: o.ID, DaysSinceOrder: days}

	switch o.Status {
	case store.StatusReturned:
		d.Basis = BasisStatus
		d.Reason = fmt.Sprintf("order %s was already returned", o.ID)
		return d
	case store.StatusReturnInProgress:
		d.Basis = BasisStatus
		d.Reason = fmt.Sprintf("a return for order %s is already in progress", o.ID)
		return d
	case store.StatusPending:
		d.Basis = BasisStatus
		d.Reason = fmt.Sprintf("order %s has not shipped yet; it can be cancelled instead of returned", o.ID)
		return d
	case store.StatusShipped:
		d.Basis = BasisStatus
		d.Reason = fmt.Sprintf("order %s is in transit; wait until it is delivered before starting a return", o.ID)
		return d
	}

	if rules.categoryExcluded(o.Category) {
		d.Basis = BasisCategory
		d.Reason = fmt.Sprintf("product %q belongs to category %q, which is non-returnable under store policy",
			o.Product, o.Category)
		return d
	}

	if rules.WindowDays > 0 && days > rules.WindowDays {
		d.Basis = BasisWindow
		d.Reason = fmt.Sprintf("%d days have passed since the order date (%s); days elapsed exceeds policy window of %d days",
			days, o.OrderDate.Format("2006-01-02"), rules.WindowDays)
		return d
	}

	if rules.categoryNeedsReview(o.Category) {
		d.Eligible = true
		d.NeedsReview = true
		d.Basis = BasisCategoryReview
		d.RefundAmount = o.Total()
		d.Reason = fmt.Sprintf("product %q is in category %q, which requires manual review before the return is approved (%d days since order)",
			o.Product, o.Category, days)
		return d
	}

	if rules.paymentNeedsReview(o.PaymentMethod) {
		d.Eligible = true
		d.NeedsReview = true
		d.Basis = BasisPaymentReview
		d.RefundAmount = o.Total()
		d.Reason = fmt.Sprintf("order %s is eligible but needs manual review because it was paid with %s (%d days since order)",
			o.ID, o.PaymentMethod, days)
		return d
	}

	d.Eligible = true
	d.Basis = BasisEligible
	d.RefundAmount = o.Total()
	d.Reason = fmt.Sprintf("order %s (%s) is eligible for return: %d days since order, paid with %s, refund total %.0f",
		o.ID, o.Product, days, o.PaymentMethod, o.Total())
	return d
}

func daysSince(orderDate, now time.Time) int {
	d := int(now.Sub(orderDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
