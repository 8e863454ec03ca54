package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/ecomarket/support-agent/internal/models"
	"github.com/ecomarket/support-agent/internal/notify"
	"github.com/ecomarket/support-agent/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InitiateReturnTool starts a return: it issues a tracking token, moves
// the order to return_in_progress and dispatches a (simulated)
// confirmation email. This is the only tool that mutates the store.
// All inputs are validated before any mutation happens.
func InitiateReturnTool(orders store.OrderStore, mailer notify.Mailer) Tool {
	return Tool{
		Name: "initiate_return_request",
		Description: "ONLY use this tool after evaluate_return_eligibility confirmed the order " +
			"can be returned. Starts a return request: issues a tracking token, marks the order " +
			"as return in progress and sends a confirmation email to the customer. Requires " +
			"order_id, customer_email and the return reason.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"order_id": map[string]interface{}{
					"type":        "string",
					"description": "The order identifier (e.g. 'O0001')",
				},
				"customer_email": map[string]interface{}{
					"type":        "string",
					"description": "The customer's email address for the confirmation",
				},
				"reason": map[string]interface{}{
					"type":        "string",
					"description": "Why the customer wants to return the order",
				},
			},
			"required": []string{"order_id", "customer_email", "reason"},
		},
		Execute: func(ctx context.Context, input map[string]interface{}) (string, error) {
			orderID, _ := input["order_id"].(string)
			email, _ := input["customer_email"].(string)
			reason, _ := input["reason"].(string)

			conf, err := InitiateReturn(ctx, orders, mailer, orderID, email, reason)
			if err != nil {
				return "", err
			}
			b, err := json.Marshal(conf)
			if err != nil {
				return "", fmt.Errorf("marshal confirmation: %w", err)
			}
			return string(b), nil
		},
	}
}

// InitiateReturn is the tool body, shared with the REST endpoint.
func InitiateReturn(ctx context.Context, orders store.OrderStore, mailer notify.Mailer, orderID, email, reason string) (models.ReturnConfirmation, error) {
	var zero models.ReturnConfirmation

	if strings.TrimSpace(orderID) == "" {
		return zero, fmt.Errorf("order_id is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return zero, fmt.Errorf("invalid customer_email %q", email)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return zero, fmt.Errorf("reason must not be empty")
	}

	order, err := orders.Get(ctx, orderID)
	if err != nil {
		return zero, err
	}

	// The full policy evaluation belongs to the eligibility tool; here
	// only the state transition itself is guarded.
	if order.Status != store.StatusDelivered && order.Status != store.StatusPending {
		return zero, fmt.Errorf("cannot start a return for order %s in status %q", order.ID, order.Status)
	}

	token := uuid.NewString()
	createdAt := time.Now().UTC()

	if err := orders.UpdateStatus(ctx, order.ID, store.StatusReturnInProgress); err != nil {
		return zero, fmt.Errorf("update order status: %w", err)
	}

	notice := "a confirmation email was sent (simulated) to " + addr.Address
	mailErr := mailer.SendReturnConfirmation(ctx, notify.ReturnNotice{
		To:            addr.Address,
		OrderID:       order.ID,
		Product:       order.Product,
		Quantity:      order.Quantity,
		RefundAmount:  order.Total(),
		Reason:        reason,
		TrackingToken: token,
	})
	if mailErr != nil {
		// The return is already registered; a failed notification must
		// not roll it back.
		log.Warn().Err(mailErr).Str("order_id", order.ID).Msg("confirmation email failed")
		notice = "the return was registered but the confirmation email could not be sent; our team will contact " + addr.Address
	}

	return models.ReturnConfirmation{
		Status:        "success",
		OrderID:       order.ID,
		TrackingToken: token,
		Notice:        notice,
		CreatedAt:     createdAt.Format(time.RFC3339),
	}, nil
}
