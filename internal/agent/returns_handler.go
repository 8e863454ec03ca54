package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/ecomarket/support-agent/internal/models"
	"github.com/ecomarket/support-agent/internal/notify"
	"github.com/ecomarket/support-agent/internal/service"
	"github.com/ecomarket/support-agent/internal/store"
	"github.com/ecomarket/support-agent/internal/tools"
)

const returnsSystemPrompt = `You are the EcoMarket returns assistant, helping customers with
return and refund requests for an eco-friendly online store.

RULES:
1. If the customer does not know their order_id, use search_customer_orders with their customer_id first.
2. Before starting any return, ALWAYS check the order with evaluate_return_eligibility.
3. Only call initiate_return_request after eligibility was confirmed, and only with the
   customer's explicit confirmation, their email address and a return reason.
4. If a tool reports an error (order not found, policy unavailable, invalid email), explain
   it to the customer in plain language and ask for corrected information.
5. Never invent order data; only state what the tools returned.
6. Match the customer's language and keep replies short and friendly.`

// ReturnsHandler drives the returns agent: it wires the three support
// tools and runs the tool-calling loop.
type ReturnsHandler struct {
	agent  *SupportAgent
	orders store.OrderStore
	rules  tools.PolicySource
	mailer notify.Mailer
}

func NewReturnsHandler(agent *SupportAgent, orders store.OrderStore, rules tools.PolicySource, mailer notify.Mailer) *ReturnsHandler {
	return &ReturnsHandler{agent: agent, orders: orders, rules: rules, mailer: mailer}
}

func (h *ReturnsHandler) Handle(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	start := time.Now()

	agentTools := []tools.Tool{
		tools.EligibilityTool(h.orders, h.rules),
		tools.SearchOrdersTool(h.orders),
		tools.InitiateReturnTool(h.orders, h.mailer),
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Second)
	defer cancel()

	reply, toolsUsed, err := h.agent.Run(runCtx, returnsSystemPrompt, req.Message, agentTools)
	if err != nil {
		return nil, fmt.Errorf("returns agent: %w", err)
	}

	return &models.ChatResponse{
		Status:    "success",
		Agent:     service.AgentReturns,
		Reply:     reply,
		ToolsUsed: toolsUsed,
		AgentMetadata: map[string]interface{}{
			"model":       h.agent.Model(),
			"method":      "tool_calling",
			"duration_ms": time.Since(start).Milliseconds(),
		},
	}, nil
}
