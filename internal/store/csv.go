package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Expected CSV header columns, any order. Column names are matched
// case-insensitively.
var csvColumns = []string{
	"order_id", "customer_id", "product", "category",
	"price", "quantity", "order_date", "payment_method", "status",
}

// LoadCSV reads order records from path into dst. Dates accept
// YYYY-MM-DD or RFC 3339.
func LoadCSV(ctx context.Context, dst OrderStore, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open orders csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range csvColumns {
		if _, ok := col[want]; !ok {
			return 0, fmt.Errorf("orders csv missing column %q", want)
		}
	}

	n := 0
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, fmt.Errorf("read csv line %d: %w", line, err)
		}

		rec, err := recordFromRow(row, col)
		if err != nil {
			return n, fmt.Errorf("csv line %d: %w", line, err)
		}
		if err := dst.Insert(ctx, rec); err != nil {
			return n, fmt.Errorf("csv line %d: %w", line, err)
		}
		n++
	}
	return n, nil
}

func recordFromRow(row []string, col map[string]int) (OrderRecord, error) {
	field := func(name string) string { return strings.TrimSpace(row[col[name]]) }

	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return OrderRecord{}, fmt.Errorf("bad price %q", field("price"))
	}
	if price < 0 {
		return OrderRecord{}, fmt.Errorf("negative price %q", field("price"))
	}

	qty, err := strconv.Atoi(field("quantity"))
	if err != nil || qty <= 0 {
		return OrderRecord{}, fmt.Errorf("bad quantity %q", field("quantity"))
	}

	date, err := parseDate(field("order_date"))
	if err != nil {
		return OrderRecord{}, err
	}

	return OrderRecord{
		ID:            field("order_id"),
		CustomerID:    field("customer_id"),
		Product:       field("product"),
		Category:      field("category"),
		Price:         price,
		Quantity:      qty,
		OrderDate:     date,
		PaymentMethod: field("payment_method"),
		Status:        field("status"),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad order_date %q", s)
}
