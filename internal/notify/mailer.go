// Package notify dispatches return-confirmation emails. Dispatch is
// simulated: the rendered message is logged, never sent over the wire.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ReturnNotice carries everything the confirmation email mentions.
type ReturnNotice struct {
	To            string
	OrderID       string
	Product       string
	Quantity      int
	RefundAmount  float64
	Reason        string
	TrackingToken string
}

// Mailer sends return confirmations to customers.
type Mailer interface {
	SendReturnConfirmation(ctx context.Context, notice ReturnNotice) error
}

// SimulatedMailer renders the confirmation and logs it instead of
// speaking SMTP.
type SimulatedMailer struct{}

func NewSimulatedMailer() *SimulatedMailer {
	return &SimulatedMailer{}
}

func (m *SimulatedMailer) SendReturnConfirmation(_ context.Context, n ReturnNotice) error {
	body := fmt.Sprintf(
		"Return request received for order %s (%s, qty %d). "+
			"Reason: %s. Refund total: %.0f. Tracking token: %s. "+
			"Our team will review the request within 24-48 hours and send shipping instructions.",
		n.OrderID, n.Product, n.Quantity, n.Reason, n.RefundAmount, n.TrackingToken)

	log.Info().
		Str("to", n.To).
		Str("order_id", n.OrderID).
		Str("tracking_token", n.TrackingToken).
		Str("subject", "Return Request - Order "+n.OrderID).
		Str("body", body).
		Msg("simulated email dispatch")
	return nil
}

// RecordingMailer captures notices for tests.
type RecordingMailer struct {
	Sent []ReturnNotice
}

func (m *RecordingMailer) SendReturnConfirmation(_ context.Context, n ReturnNotice) error {
	m.Sent = append(m.Sent, n)
	return nil
}
