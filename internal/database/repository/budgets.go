package repository

import (
	"context"
	"database/sql"
)

// BudgetRepo persists per-category monthly spending targets.
type BudgetRepo struct {
	db *sql.DB
}

func NewBudgetRepo(db *sql.DB) *BudgetRepo { return &BudgetRepo{db: db} }

func (r *BudgetRepo) Upsert(ctx context.Context, b Budget) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO budgets(category, amount)
	VALUES (?, ?)
	ON CONFLICT(category) DO UPDATE SET amount=excluded.amount;
	`, b.Category, b.Amount)
	return err
}

func (r *BudgetRepo) Delete(ctx context.Context, category string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE category = ?`, category)
	return err
}

// Map returns the budgets keyed by category name.
func (r *BudgetRepo) Map(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, amount FROM budgets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var category string
		var amount int64
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, err
		}
		out[category] = amount
	}
	return out, rows.Err()
}
