package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"workshop-manager/internal/core"
)

// EntryStore persists production entries.
type EntryStore struct {
	pool *pgxpool.Pool
}

func NewEntryStore(pool *pgxpool.Pool) *EntryStore {
	return &EntryStore{pool: pool}
}

const entryColumns = `id, product_id, date::text, quantity, paid, COALESCE(invoice_number, '')`

// List returns all production entries, newest first.
func (s *EntryStore) List(ctx context.Context) ([]core.ProductionEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM production_entries ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list production entries: %w", err)
	}
	defer rows.Close()

	var entries []core.ProductionEntry
	for rows.Next() {
		var e core.ProductionEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Date, &e.Quantity, &e.Paid, &e.InvoiceNumber); err != nil {
			return nil, fmt.Errorf("scan production entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Create inserts an entry and returns it with its assigned id. Quantity
// must be positive; the schema enforces the same invariant.
func (s *EntryStore) Create(ctx context.Context, e core.ProductionEntry) (*core.ProductionEntry, error) {
	if e.Quantity <= 0 {
		return nil, fmt.Errorf("create production entry: quantity must be positive, got %d", e.Quantity)
	}

	var invoiceNumber *string
	if e.InvoiceNumber != "" {
		invoiceNumber = &e.InvoiceNumber
	}

	created := &core.ProductionEntry{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO production_entries (product_id, date, quantity, paid, invoice_number)
		VALUES ($1, $2::date, $3, $4, $5)
		RETURNING `+entryColumns,
		e.ProductID, e.Date, e.Quantity, e.Paid, invoiceNumber,
	).Scan(&created.ID, &created.ProductID, &created.Date, &created.Quantity, &created.Paid, &created.InvoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("create production entry: %w", err)
	}
	return created, nil
}

// Update replaces an entry's product, date, quantity, and invoice number.
func (s *EntryStore) Update(ctx context.Context, e core.ProductionEntry) error {
	if e.Quantity <= 0 {
		return fmt.Errorf("update production entry %d: quantity must be positive, got %d", e.ID, e.Quantity)
	}

	var invoiceNumber *string
	if e.InvoiceNumber != "" {
		invoiceNumber = &e.InvoiceNumber
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE production_entries
		SET product_id = $2, date = $3::date, quantity = $4, invoice_number = $5
		WHERE id = $1`,
		e.ID, e.ProductID, e.Date, e.Quantity, invoiceNumber,
	)
	if err != nil {
		return fmt.Errorf("update production entry %d: %w", e.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update production entry %d: %w", e.ID, ErrNotFound)
	}
	return nil
}

// SetPaid toggles the payment flag independently of other fields.
func (s *EntryStore) SetPaid(ctx context.Context, id int, paid bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE production_entries SET paid = $2 WHERE id = $1`, id, paid)
	if err != nil {
		return fmt.Errorf("set paid on entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set paid on entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an entry.
func (s *EntryStore) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM production_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete production entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete production entry %d: %w", id, ErrNotFound)
	}
	return nil
}
