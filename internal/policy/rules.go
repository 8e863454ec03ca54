// Package policy turns retrieved policy-manual passages into a rule set
// and evaluates orders against it. Evaluation is deterministic: the same
// order and rule set always yield the same decision.
package policy

import (
	"errors"
	"slices"
	"strings"
)

// Rule types carried as metadata on indexed policy passages.
const (
	RuleTimeWindow        = "time_window"
	RuleCategoryExclusion = "category_exclusion"
	RuleCategoryReview    = "category_review"
	RulePaymentReview     = "payment_review"
)

// ErrNoRules means the knowledge base answered but none of the retrieved
// passages carried rule metadata. Callers must treat this as a retrieval
// failure, never as an eligibility outcome.
var ErrNoRules = errors.New("no policy rules in retrieved passages")

// Passage is one policy-manual passage as returned by the knowledge base.
type Passage struct {
	Text           string   `json:"text"`
	Rule           string   `json:"rule_type,omitempty"`
	WindowDays     int      `json:"window_days,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
	Score          float64  `json:"score,omitempty"`
}

// RuleSet is the flattened view of the passages the evaluator applies.
type RuleSet struct {
	WindowDays         int
	ExcludedCategories []string
	ReviewCategories   []string
	ReviewPayments     []string
}

// RulesFromPassages flattens passage metadata into a RuleSet.
func RulesFromPassages(passages []Passage) (RuleSet, error) {
	var rs RuleSet
	found := false
	for _, p := range passages {
		switch p.Rule {
		case RuleTimeWindow:
			if p.WindowDays > 0 {
				rs.WindowDays = p.WindowDays
				found = true
			}
		case RuleCategoryExclusion:
			rs.ExcludedCategories = append(rs.ExcludedCategories, lower(p.Categories)...)
			found = true
		case RuleCategoryReview:
			rs.ReviewCategories = append(rs.ReviewCategories, lower(p.Categories)...)
			found = true
		case RulePaymentReview:
			rs.ReviewPayments = append(rs.ReviewPayments, lower(p.PaymentMethods)...)
			found = true
		}
	}
	if !found {
		return RuleSet{}, ErrNoRules
	}
	return rs, nil
}

func lower(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

func (rs RuleSet) categoryExcluded(category string) bool {
	return slices.Contains(rs.ExcludedCategories, category)
}

func (rs RuleSet) categoryNeedsReview(category string) bool {
	return slices.Contains(rs.ReviewCategories, category)
}

func (rs RuleSet) paymentNeedsReview(method string) bool {
	return slices.Contains(rs.ReviewPayments, method)
}
