package service

import "strings"

// Agent names the intent router can dispatch to.
const (
	AgentReturns = "returns"
	AgentOrders  = "orders"
	AgentFAQ     = "faq"
)

var returnsKeywords = []string{
	"return", "refund", "send back", "give back", "money back",
	"exchange", "defective", "broken", "damaged", "wrong item",
	"eligib", "devol", "reembolso", "cambiar",
}

var ordersKeywords = []string{
	"order", "pedido", "track", "tracking", "where is", "delivery",
	"delivered", "shipped", "shipping status", "purchase history",
	"my orders", "status of",
}

var faqKeywords = []string{
	"how do", "how can", "what is", "what are", "when", "hours",
	"shipping cost", "payment method", "discount", "coupon",
	"warranty", "contact", "store", "policy", "faq",
}

// RoutingResult says which agent should answer and why.
type RoutingResult struct {
	Agent        string
	Confidence   float64
	ReturnsScore int
	OrdersScore  int
	FAQScore     int
	Reasoning    string
}

// IntentRouter routes a chat message to the returns, orders or FAQ agent
// by keyword scoring. An explicit agent choice in the request bypasses it.
type IntentRouter struct{}

func NewIntentRouter() *IntentRouter {
	return &IntentRouter{}
}

func (r *IntentRouter) Route(message string) RoutingResult {
	lower := strings.ToLower(message)

	res := RoutingResult{}
	for _, kw := range returnsKeywords {
		if strings.Contains(lower, kw) {
			res.ReturnsScore++
		}
	}
	for _, kw := range ordersKeywords {
		if strings.Contains(lower, kw) {
			res.OrdersScore++
		}
	}
	for _, kw := range faqKeywords {
		if strings.Contains(lower, kw) {
			res.FAQScore++
		}
	}

	total := res.ReturnsScore + res.OrdersScore + res.FAQScore
	if total == 0 {
		res.Agent = AgentFAQ
		res.Confidence = 0.5
		res.Reasoning = "no strong keywords, defaulting to FAQ agent"
		return res
	}

	switch {
	case res.ReturnsScore >= res.OrdersScore && res.ReturnsScore >= res.FAQScore:
		res.Agent = AgentReturns
		res.Confidence = float64(res.ReturnsScore) / float64(total)
		res.Reasoning = "message contains return/refund keywords"
	case res.OrdersScore >= res.FAQScore:
		res.Agent = AgentOrders
		res.Confidence = float64(res.OrdersScore) / float64(total)
		res.Reasoning = "message contains order-tracking keywords"
	default:
		res.Agent = AgentFAQ
		res.Confidence = float64(res.FAQScore) / float64(total)
		res.Reasoning = "message contains general store-question keywords"
	}
	return res
}
