// Package store is the persistence gateway: four pgx-backed resource stores
// over PostgreSQL. The aggregation engine never touches this package; it
// consumes the plain collections these stores return. Dates travel as ISO
// strings (date::text) so the engine can match periods without reparsing.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"workshop-manager/internal/core"
)

// CategoryStore persists product categories.
type CategoryStore struct {
	pool *pgxpool.Pool
}

func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]core.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Create inserts a category and returns it with its assigned id.
func (s *CategoryStore) Create(ctx context.Context, name string) (*core.Category, error) {
	c := &core.Category{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name`,
		name,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}
	return c, nil
}

// Rename updates a category's name.
func (s *CategoryStore) Rename(ctx context.Context, id int, name string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("rename category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rename category %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a category. Products referencing it are orphaned to
// uncategorized, never deleted; both statements run in one transaction.
func (s *CategoryStore) Delete(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("delete category %d: begin: %w", id, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE products SET category_id = NULL WHERE category_id = $1`, id,
	); err != nil {
		return fmt.Errorf("delete category %d: orphan products: %w", id, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete category %d: %w", id, ErrNotFound)
	}
	return tx.Commit(ctx)
}
