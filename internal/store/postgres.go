package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ordersSchema = `
CREATE TABLE IF NOT EXISTS orders (
	seq            BIGSERIAL PRIMARY KEY,
	order_id       TEXT UNIQUE NOT NULL,
	customer_id    TEXT NOT NULL,
	product        TEXT NOT NULL,
	category       TEXT NOT NULL,
	price          DOUBLE PRECISION NOT NULL CHECK (price >= 0),
	quantity       INTEGER NOT NULL CHECK (quantity > 0),
	order_date     DATE NOT NULL,
	payment_method TEXT NOT NULL,
	status         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS orders_customer_idx ON orders (customer_id);
`

const orderCols = "order_id, customer_id, product, category, price, quantity, order_date, payment_method, status"

// PostgresStore keeps orders in a Postgres table. The seq column
// preserves insertion order so customer searches match the memory
// store's ordering contract.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if _, err := pool.Exec(ctx, ordersSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure orders schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Get(ctx context.Context, orderID string) (OrderRecord, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+orderCols+" FROM orders WHERE order_id = $1", NormalizeID(orderID))
	rec, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return OrderRecord{}, fmt.Errorf("order %q: %w", NormalizeID(orderID), ErrOrderNotFound)
	}
	return rec, err
}

func (s *PostgresStore) ByCustomer(ctx context.Context, customerID string) ([]OrderRecord, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+orderCols+" FROM orders WHERE customer_id = $1 ORDER BY seq", NormalizeID(customerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *PostgresStore) Insert(ctx context.Context, rec OrderRecord) error {
	rec = rec.Normalize()
	if rec.ID == "" {
		return fmt.Errorf("insert: empty order id")
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO orders (`+orderCols+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (order_id) DO NOTHING`,
		rec.ID, rec.CustomerID, rec.Product, rec.Category,
		rec.Price, rec.Quantity, rec.OrderDate, rec.PaymentMethod, rec.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("insert %q: %w", rec.ID, ErrDuplicateID)
	}
	return nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, orderID, status string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE orders SET status = $1 WHERE order_id = $2", status, NormalizeID(orderID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %q: %w", NormalizeID(orderID), ErrOrderNotFound)
	}
	return nil
}

func (s *PostgresStore) All(ctx context.Context) ([]OrderRecord, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+orderCols+" FROM orders ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&n)
	return n, err
}

func scanOrder(row pgx.Row) (OrderRecord, error) {
	var rec OrderRecord
	err := row.Scan(&rec.ID, &rec.CustomerID, &rec.Product, &rec.Category,
		&rec.Price, &rec.Quantity, &rec.OrderDate, &rec.PaymentMethod, &rec.Status)
	return rec, err
}

func collectOrders(rows pgx.Rows) ([]OrderRecord, error) {
	var out []OrderRecord
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
