package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps orders in a map keyed by order ID. Insertion order
// is tracked separately so customer searches come back in the order the
// records were loaded.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]OrderRecord
	seq    []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]OrderRecord)}
}

func (s *MemoryStore) Get(_ context.Context, orderID string) (OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.orders[NormalizeID(orderID)]
	if !ok {
		return OrderRecord{}, fmt.Errorf("order %q: %w", NormalizeID(orderID), ErrOrderNotFound)
	}
	return rec, nil
}

func (s *MemoryStore) ByCustomer(_ context.Context, customerID string) ([]OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := NormalizeID(customerID)
	var out []OrderRecord
	for _, oid := range s.seq {
		if rec := s.orders[oid]; rec.CustomerID == id {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, rec OrderRecord) error {
	rec = rec.Normalize()
	if rec.ID == "" {
		return fmt.Errorf("insert: empty order id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[rec.ID]; exists {
		return fmt.Errorf("insert %q: %w", rec.ID, ErrDuplicateID)
	}
	s.orders[rec.ID] = rec
	s.seq = append(s.seq, rec.ID)
	return nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, orderID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := NormalizeID(orderID)
	rec, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %q: %w", id, ErrOrderNotFound)
	}
	rec.Status = status
	s.orders[id] = rec
	return nil
}

func (s *MemoryStore) All(_ context.Context) ([]OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]OrderRecord, 0, len(s.seq))
	for _, oid := range s.seq {
		out = append(out, s.orders[oid])
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders), nil
}
