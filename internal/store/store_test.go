package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecomarket/support-agent/internal/store"
)

func testOrder(id, customer string) store.OrderRecord {
	return store.OrderRecord{
		ID:            id,
		CustomerID:    customer,
		Product:       "Bamboo Toothbrush",
		Category:      "personal care",
		Price:         12000,
		Quantity:      2,
		OrderDate:     time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		PaymentMethod: store.PaymentCreditCard,
		Status:        store.StatusDelivered,
	}
}

// ─── MemoryStore ──────────────────────────────────────────────────────────────

func TestMemoryStoreGetNormalizesID(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	if err := s.Insert(ctx, testOrder("o0001", "c001")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rec, err := s.Get(ctx, "  O0001 ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ID != "O0001" {
		t.Errorf("ID = %q, want O0001", rec.ID)
	}
	if rec.CustomerID != "C001" {
		t.Errorf("CustomerID = %q, want C001", rec.CustomerID)
	}
	if rec.Status != store.StatusDelivered {
		t.Errorf("Status = %q, want %q", rec.Status, store.StatusDelivered)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	s := store.NewMemoryStore()
	_, err := s.Get(context.Background(), "O9999")
	if !errors.Is(err, store.ErrOrderNotFound) {
		t.Errorf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestMemoryStoreDuplicateInsert(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	if err := s.Insert(ctx, testOrder("O0001", "C001")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := s.Insert(ctx, testOrder("O0001", "C002"))
	if !errors.Is(err, store.ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

func TestMemoryStoreByCustomerInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	for _, id := range []string{"O0003", "O0001", "O0002"} {
		o := testOrder(id, "C55")
		if err := s.Insert(ctx, o); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	// A record from another customer must not appear
	if err := s.Insert(ctx, testOrder("O0004", "C56")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.ByCustomer(ctx, "c55")
	if err != nil {
		t.Fatalf("by customer: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []string{"O0003", "O0001", "O0002"}
	for i, rec := range got {
		if rec.ID != want[i] {
			t.Errorf("orders[%d] = %s, want %s (insertion order)", i, rec.ID, want[i])
		}
	}
}

func TestMemoryStoreByCustomerEmpty(t *testing.T) {
	s := store.NewMemoryStore()
	got, err := s.ByCustomer(context.Background(), "C404")
	if err != nil {
		t.Fatalf("expected no error for unknown customer, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestMemoryStoreUpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	if err := s.Insert(ctx, testOrder("O0001", "C001")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.UpdateStatus(ctx, "O0001", store.StatusReturnInProgress); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, _ := s.Get(ctx, "O0001")
	if rec.Status != store.StatusReturnInProgress {
		t.Errorf("Status = %q, want %q", rec.Status, store.StatusReturnInProgress)
	}

	err := s.UpdateStatus(ctx, "O9999", store.StatusReturned)
	if !errors.Is(err, store.ErrOrderNotFound) {
		t.Errorf("err = %v, want ErrOrderNotFound", err)
	}
}

// ─── LoadCSV ──────────────────────────────────────────────────────────────────

const sampleCSV = `order_id,customer_id,product,category,price,quantity,order_date,payment_method,status
O0001,C001,Bamboo Toothbrush,personal care,12000,2,2026-07-01,credit_card,delivered
O0002,C002,Solar Charger,electronics,185000,1,2026-06-15,paypal,shipped
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	n, err := store.LoadCSV(ctx, s, writeTempCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 2 {
		t.Errorf("loaded = %d, want 2", n)
	}

	rec, err := s.Get(ctx, "O0002")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Category != "electronics" {
		t.Errorf("Category = %q, want electronics", rec.Category)
	}
	if rec.Total() != 185000 {
		t.Errorf("Total = %v, want 185000", rec.Total())
	}
	if !rec.OrderDate.Equal(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("OrderDate = %v", rec.OrderDate)
	}
}

func TestLoadCSVRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "missing column",
			csv:  "order_id,customer_id\nO0001,C001\n",
		},
		{
			name: "bad price",
			csv:  "order_id,customer_id,product,category,price,quantity,order_date,payment_method,status\nO0001,C001,x,y,abc,1,2026-07-01,cash,delivered\n",
		},
		{
			name: "zero quantity",
			csv:  "order_id,customer_id,product,category,price,quantity,order_date,payment_method,status\nO0001,C001,x,y,10,0,2026-07-01,cash,delivered\n",
		},
		{
			name: "bad date",
			csv:  "order_id,customer_id,product,category,price,quantity,order_date,payment_method,status\nO0001,C001,x,y,10,1,01/07/2026,cash,delivered\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore()
			if _, err := store.LoadCSV(context.Background(), s, writeTempCSV(t, tt.csv)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
