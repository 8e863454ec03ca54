// Package store holds the order records the support tools operate on.
// Orders live either in process memory (the default) or in Postgres,
// behind the same OrderStore interface.
package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Order statuses. A return moves delivered/pending orders to
// StatusReturnInProgress; that is the only transition the tools perform.
const (
	StatusPending          = "pending"
	StatusShipped          = "shipped"
	StatusDelivered        = "delivered"
	StatusReturned         = "returned"
	StatusReturnInProgress = "return_in_progress"
)

// Payment methods as they appear in the order data.
const (
	PaymentCreditCard = "credit_card"
	PaymentDebitCard  = "debit_card"
	PaymentPaypal     = "paypal"
	PaymentCash       = "cash"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrDuplicateID   = errors.New("duplicate order id")
)

// OrderRecord is a single row of the order table.
type OrderRecord struct {
	ID            string    `json:"order_id"`
	CustomerID    string    `json:"customer_id"`
	Product       string    `json:"product"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	Quantity      int       `json:"quantity"`
	OrderDate     time.Time `json:"order_date"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
}

// Total is the order value: price times quantity.
func (o OrderRecord) Total() float64 {
	return o.Price * float64(o.Quantity)
}

// OrderStore is the keyed order collection the tools read and mutate.
type OrderStore interface {
	Get(ctx context.Context, orderID string) (OrderRecord, error)
	ByCustomer(ctx context.Context, customerID string) ([]OrderRecord, error)
	Insert(ctx context.Context, rec OrderRecord) error
	UpdateStatus(ctx context.Context, orderID, status string) error
	All(ctx context.Context) ([]OrderRecord, error)
	Count(ctx context.Context) (int, error)
}

// NormalizeID canonicalizes order and customer identifiers the way the
// order data is keyed: upper-cased, surrounding whitespace stripped.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Normalize canonicalizes the free-text fields of a record so lookups
// and rule matching are case-insensitive.
func (o OrderRecord) Normalize() OrderRecord {
	o.ID = NormalizeID(o.ID)
	o.CustomerID = NormalizeID(o.CustomerID)
	o.Product = strings.ToLower(strings.TrimSpace(o.Product))
	o.Category = strings.ToLower(strings.TrimSpace(o.Category))
	o.PaymentMethod = strings.ToLower(strings.TrimSpace(o.PaymentMethod))
	o.Status = strings.ToLower(strings.TrimSpace(o.Status))
	return o
}
