package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"workshop-manager/internal/core"
)

// ExpenseStore persists standalone expenses.
type ExpenseStore struct {
	pool *pgxpool.Pool
}

func NewExpenseStore(pool *pgxpool.Pool) *ExpenseStore {
	return &ExpenseStore{pool: pool}
}

// List returns all expenses, newest first.
func (s *ExpenseStore) List(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, description, value, date::text
		FROM expenses
		ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Value, &e.Date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// Create inserts an expense and returns it with its assigned id.
func (s *ExpenseStore) Create(ctx context.Context, e core.Expense) (*core.Expense, error) {
	if e.Value.IsNegative() {
		return nil, fmt.Errorf("create expense: value must not be negative, got %s", e.Value)
	}

	created := &core.Expense{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO expenses (description, value, date)
		VALUES ($1, $2, $3::date)
		RETURNING id, description, value, date::text`,
		e.Description, e.Value, e.Date,
	).Scan(&created.ID, &created.Description, &created.Value, &created.Date)
	if err != nil {
		return nil, fmt.Errorf("create expense %q: %w", e.Description, err)
	}
	return created, nil
}

// Delete removes an expense.
func (s *ExpenseStore) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete expense %d: %w", id, ErrNotFound)
	}
	return nil
}
