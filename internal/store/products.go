package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"workshop-manager/internal/core"
)

// ErrNotFound is returned when a targeted record does not exist.
var ErrNotFound = errors.New("record not found")

// DeletePolicy names what happens to a product's production entries when
// the product is deleted. The choice is explicit configuration, not a side
// effect: cascading loses production history, orphaning keeps it renderable
// through the removed-product sentinel.
type DeletePolicy string

const (
	CascadeEntries DeletePolicy = "cascade"
	OrphanEntries  DeletePolicy = "orphan"
)

// ParseDeletePolicy validates a configured policy string.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(s) {
	case CascadeEntries, OrphanEntries:
		return DeletePolicy(s), nil
	case "":
		return CascadeEntries, nil
	default:
		return "", fmt.Errorf("unknown product delete policy %q", s)
	}
}

// ProductStore persists the product catalog.
type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// List returns the full catalog ordered by name.
func (s *ProductStore) List(ctx context.Context) ([]core.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, sale_value, labor_cost, category_id
		FROM products
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		var p core.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SaleValue, &p.LaborCost, &p.CategoryID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Create inserts a product and returns it with its assigned id.
func (s *ProductStore) Create(ctx context.Context, p core.Product) (*core.Product, error) {
	created := &core.Product{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (name, sale_value, labor_cost, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, sale_value, labor_cost, category_id`,
		p.Name, p.SaleValue, p.LaborCost, p.CategoryID,
	).Scan(&created.ID, &created.Name, &created.SaleValue, &created.LaborCost, &created.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("create product %q: %w", p.Name, err)
	}
	return created, nil
}

// Update replaces a product's editable fields.
func (s *ProductStore) Update(ctx context.Context, p core.Product) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, sale_value = $3, labor_cost = $4, category_id = $5
		WHERE id = $1`,
		p.ID, p.Name, p.SaleValue, p.LaborCost, p.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a product under the given policy. Cascade deletes the
// product's production entries with it; orphan leaves them in place to
// render through the sentinel report line. Either way both statements run
// in one transaction so history and catalog cannot drift apart.
func (s *ProductStore) Delete(ctx context.Context, id int, policy DeletePolicy) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("delete product %d: begin: %w", id, err)
	}
	defer tx.Rollback(ctx)

	if policy == CascadeEntries {
		if _, err := tx.Exec(ctx,
			`DELETE FROM production_entries WHERE product_id = $1`, id,
		); err != nil {
			return fmt.Errorf("delete product %d: cascade entries: %w", id, err)
		}
	}
	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete product %d: %w", id, ErrNotFound)
	}
	return tx.Commit(ctx)
}
