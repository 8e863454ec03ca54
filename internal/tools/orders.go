package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ecomarket/support-agent/internal/models"
	"github.com/ecomarket/support-agent/internal/store"
)

// SearchOrdersTool lists all orders of a customer, in the order they
// were recorded. An unknown customer yields an empty list, not an error.
func SearchOrdersTool(orders store.OrderStore) Tool {
	return Tool{
		Name: "search_customer_orders",
		Description: "List all orders for a customer using their customer_id. Useful when the " +
			"user does not know their order_id but knows their customer_id, or wants to see " +
			"their purchase history.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"customer_id": map[string]interface{}{
					"type":        "string",
					"description": "The customer identifier (e.g. 'C001')",
				},
			},
			"required": []string{"customer_id"},
		},
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			customerID, _ := input["customer_id"].(string)
			if customerID == "" {
				return "", fmt.Errorf("customer_id is required")
			}

			recs, err := orders.ByCustomer(ctx, customerID)
			if err != nil {
				return "", fmt.Errorf("search orders: %w", err)
			}

			out := models.OrderSearchResponse{
				Status:     "success",
				CustomerID: store.NormalizeID(customerID),
				Count:      len(recs),
				Orders:     Summarize(recs, time.Now().UTC()),
			}
			b, err := json.Marshal(out)
			if err != nil {
				return "", fmt.Errorf("marshal order list: %w", err)
			}
			return string(b), nil
		},
	}
}

// Summarize converts order records to the summary shape shared by the
// search tool and the REST endpoint.
func Summarize(recs []store.OrderRecord, now time.Time) []models.OrderSummary {
	out := make([]models.OrderSummary, 0, len(recs))
	for _, o := range recs {
		days := int(now.Sub(o.OrderDate).Hours() / 24)
		if days < 0 {
			days = 0
		}
		out = append(out, models.OrderSummary{
			OrderID:   o.ID,
			Product:   o.Product,
			Status:    o.Status,
			OrderDate: o.OrderDate.Format("2006-01-02"),
			DaysAgo:   days,
			Total:     o.Total(),
		})
	}
	return out
}
