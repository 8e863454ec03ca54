package service_test

import (
	"testing"

	"github.com/ecomarket/support-agent/internal/service"
)

func TestIntentRouterReturns(t *testing.T) {
	r := service.NewIntentRouter()

	prompts := []string{
		"I want to return my order",
		"can I get a refund for O0001?",
		"the item arrived broken, I need to send it back",
		"is order O0002 eligible for a return?",
	}
	for _, p := range prompts {
		res := r.Route(p)
		if res.Agent != service.AgentReturns {
			t.Errorf("expected returns agent for %q, got %q (%.2f: %s)",
				p, res.Agent, res.Confidence, res.Reasoning)
		}
	}
}

func TestIntentRouterOrders(t *testing.T) {
	r := service.NewIntentRouter()

	prompts := []string{
		"where is my order O0005?",
		"track my delivery please",
		"status of the package shipped last week",
	}
	for _, p := range prompts {
		res := r.Route(p)
		if res.Agent != service.AgentOrders {
			t.Errorf("expected orders agent for %q, got %q (%.2f: %s)",
				p, res.Agent, res.Confidence, res.Reasoning)
		}
	}
}

func TestIntentRouterFAQ(t *testing.T) {
	r := service.NewIntentRouter()

	prompts := []string{
		"what are your store hours?",
		"how do I contact customer support?",
		"do you offer any discount coupons?",
	}
	for _, p := range prompts {
		res := r.Route(p)
		if res.Agent != service.AgentFAQ {
			t.Errorf("expected faq agent for %q, got %q (%.2f: %s)",
				p, res.Agent, res.Confidence, res.Reasoning)
		}
	}
}

func TestIntentRouterDefault(t *testing.T) {
	r := service.NewIntentRouter()
	res := r.Route("hello there")
	if res.Agent != service.AgentFAQ {
		t.Errorf("default should be faq, got %q", res.Agent)
	}
	if res.Confidence <= 0 {
		t.Errorf("confidence should be > 0, got %.2f", res.Confidence)
	}
	if res.Reasoning == "" {
		t.Error("reasoning should not be empty")
	}
}
