package repository

import (
	"context"
	"database/sql"
)

// SettingsRepo persists the single Balances row.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Balances returns the stored starting balances. A missing row reads as
// all-zero defaults rather than an error.
func (r *SettingsRepo) Balances(ctx context.Context) (Balances, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT capital, savings, emergency_fund, emergency_goal, carry_over, updated_at
	FROM settings WHERE id = 1`)
	var b Balances
	if err := row.Scan(&b.Capital, &b.Savings, &b.EmergencyFund, &b.EmergencyGoal, &b.CarryOver, &b.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Balances{}, nil
		}
		return Balances{}, err
	}
	return b, nil
}

func (r *SettingsRepo) Save(ctx context.Context, b Balances) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO settings(id, capital, savings, emergency_fund, emergency_goal, carry_over, updated_at)
	VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 capital=excluded.capital,
	 savings=excluded.savings,
	 emergency_fund=excluded.emergency_fund,
	 emergency_goal=excluded.emergency_goal,
	 carry_over=excluded.carry_over,
	 updated_at=CURRENT_TIMESTAMP;
	`, b.Capital, b.Savings, b.EmergencyFund, b.EmergencyGoal, b.CarryOver)
	return err
}
