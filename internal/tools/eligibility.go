package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ecomarket/support-agent/internal/policy"
	"github.com/ecomarket/support-agent/internal/store"
)

// EligibilityTool evaluates whether an order can be returned. The rule
// set comes from the policy knowledge base; a retrieval failure is
// reported as an error, never turned into a verdict.
func EligibilityTool(orders store.OrderStore, rules PolicySource) Tool {
	return Tool{
		Name: "evaluate_return_eligibility",
		Description: "Evaluate whether an order is eligible for return using its order_id. " +
			"Checks order status, category exclusions, the return time window and payment-method " +
			"restrictions from the store's return policy. Use this when the user asks whether a " +
			"specific order can be returned.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"order_id": map[string]interface{}{
					"type":        "string",
					"description": "The order identifier (e.g. 'O0001')",
				},
			},
			"required": []string{"order_id"},
		},
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			orderID, _ := input["order_id"].(string)
			if orderID == "" {
				return "", fmt.Errorf("order_id is required")
			}

			order, err := orders.Get(ctx, orderID)
			if err != nil {
				return "", err
			}

			ruleSet, err := rules.Rules(ctx)
			if err != nil {
				return "", fmt.Errorf("could not retrieve return policy: %w", err)
			}

			decision := policy.Evaluate(order, ruleSet, time.Now().UTC())
			b, err := json.Marshal(decision)
			if err != nil {
				return "", fmt.Errorf("marshal decision: %w", err)
			}
			return string(b), nil
		},
	}
}
